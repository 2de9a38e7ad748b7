package services

import (
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/database"
	"yamdb-backend/internal/dto"
	"yamdb-backend/internal/mailer"
	"yamdb-backend/internal/models"

	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)

// ErrEmailDelivery wraps mail transport failures. The user row is already
// committed when it occurs; callers report the failure without undoing
// the registration.
var ErrEmailDelivery = errors.New("failed to deliver confirmation email")

type AuthService struct {
	db        *database.DB
	mailer    mailer.Mailer
	jwtSecret string
	limits    config.Limits
}

func NewAuthService(db *database.DB, m mailer.Mailer, jwtSecret string, limits config.Limits) *AuthService {
	return &AuthService{db: db, mailer: m, jwtSecret: jwtSecret, limits: limits}
}

// Signup registers a user or re-registers an existing one. The operation
// is idempotent on the (username, email) pair: repeating it rotates the
// confirmation code and sends a fresh email. A username or email that
// already belongs to a different pairing is a validation failure.
func (s *AuthService) Signup(req *dto.SignupRequest) error {
	if err := s.validateSignup(req); err != nil {
		return err
	}

	var user models.User
	query := "select id, username, email, role from users where username = $1 and email = $2"
	err := s.db.Get(&user, query, req.Username, req.Email)
	if errors.Is(err, sql.ErrNoRows) {
		var taken bool
		check := "select exists(select 1 from users where username = $1 or email = $2)"
		if err := s.db.Get(&taken, check, req.Username, req.Email); err != nil {
			return fmt.Errorf("failed to check user existence: %w", err)
		}
		if taken {
			return validationf("username or email is already in use")
		}

		insert := `
			insert into users (username, email, role)
			values ($1, $2, $3)
			returning id, username, email, role
		`
		if err := s.db.Get(&user, insert, req.Username, req.Email, models.UserRoleUser); err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}

	code, err := s.issueConfirmationCode(user.ID)
	if err != nil {
		return err
	}

	subject := "Welcome to YaMDb"
	body := fmt.Sprintf("%s, welcome to YaMDb! Use this confirmation code to obtain a token: <%s>",
		user.Username, code)
	if err := s.mailer.Send(user.Email, subject, body); err != nil {
		if errors.Is(err, mailer.ErrBadHeader) {
			return fmt.Errorf("%w: %w", ErrEmailDelivery, mailer.ErrBadHeader)
		}
		return fmt.Errorf("%w: %w", ErrEmailDelivery, err)
	}

	return nil
}

// Token exchanges a confirmation code for a signed access token. The code
// stays valid afterwards; only another signup rotates it.
func (s *AuthService) Token(req *dto.TokenRequest) (string, error) {
	if req.Username == "" || req.ConfirmationCode == "" {
		return "", validationf("username and confirmation_code are required")
	}

	var user models.User
	query := `
		select id, username, email, role, confirmation_code_hash, is_superuser
		from users where username = $1
	`
	if err := s.db.Get(&user, query, req.Username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrUserNotFound
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if user.ConfirmationCodeHash == "" {
		return "", ErrInvalidCode
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.ConfirmationCodeHash), []byte(req.ConfirmationCode)); err != nil {
		return "", ErrInvalidCode
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userID":    user.ID,
		"username":  user.Username,
		"role":      user.Role,
		"superuser": user.IsSuperuser,
		"exp":       time.Now().Add(time.Hour * 24).Unix(),
	})

	tokenString, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}

func (s *AuthService) validateSignup(req *dto.SignupRequest) error {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" || req.Email == "" {
		return validationf("username and email are required")
	}
	if req.Username == s.limits.SelfIdentifier {
		return validationf("username %q is reserved", req.Username)
	}
	if !usernamePattern.MatchString(req.Username) {
		return validationf("username contains invalid characters")
	}
	if utf8.RuneCountInString(req.Username) > s.limits.UsernameMaxLen {
		return validationf("username must be at most %d characters", s.limits.UsernameMaxLen)
	}
	if utf8.RuneCountInString(req.Email) > s.limits.EmailMaxLen {
		return validationf("email must be at most %d characters", s.limits.EmailMaxLen)
	}
	if !strings.Contains(req.Email[1:], "@") || strings.HasSuffix(req.Email, "@") {
		return validationf("email is not a valid address")
	}
	return nil
}

// issueConfirmationCode generates a fresh code, stores its bcrypt hash
// and returns the plaintext for delivery.
func (s *AuthService) issueConfirmationCode(userID int64) (string, error) {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	code := hex[len(hex)-s.limits.ConfirmationCodeLen:]

	hash, err := bcrypt.GenerateFromPassword([]byte(code), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash confirmation code: %w", err)
	}

	query := "update users set confirmation_code_hash = $1, updated_at = now() where id = $2"
	if _, err := s.db.Exec(query, string(hash), userID); err != nil {
		return "", fmt.Errorf("failed to store confirmation code: %w", err)
	}

	return code, nil
}
