package services

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/database"
	"yamdb-backend/internal/dto"
	"yamdb-backend/internal/models"
)

type UsersService struct {
	db     *database.DB
	limits config.Limits
}

func NewUsersService(db *database.DB, limits config.Limits) *UsersService {
	return &UsersService{db: db, limits: limits}
}

const userColumns = "id, username, email, first_name, last_name, bio, role, is_superuser"

// List returns one page of users ordered by username, optionally narrowed
// by a case-insensitive username substring search.
func (s *UsersService) List(search string, page Page) ([]models.User, int, error) {
	where := ""
	args := []interface{}{}
	if search != "" {
		where = "where username ilike $1"
		args = append(args, "%"+search+"%")
	}

	var count int
	if err := s.db.Get(&count, "select count(*) from users "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := fmt.Sprintf(
		"select %s from users %s order by username, id limit $%d offset $%d",
		userColumns, where, len(args)+1, len(args)+2,
	)
	args = append(args, page.limit(), page.offset())

	users := []models.User{}
	if err := s.db.Select(&users, query, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, count, nil
}

func (s *UsersService) GetByUsername(username string) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf("select %s from users where username = $1", userColumns)
	if err := s.db.Get(&user, query, username); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (s *UsersService) GetByID(id int64) (*models.User, error) {
	var user models.User
	query := fmt.Sprintf("select %s from users where id = $1", userColumns)
	if err := s.db.Get(&user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

// Create is the admin path for adding users directly, bypassing the
// signup flow.
func (s *UsersService) Create(req *dto.CreateUserRequest) (*models.User, error) {
	if err := s.validateUsername(req.Username); err != nil {
		return nil, err
	}
	if req.Email == "" {
		return nil, validationf("email is required")
	}
	role := models.UserRole(req.Role)
	if req.Role == "" {
		role = models.UserRoleUser
	} else if !role.Valid() {
		return nil, validationf("unknown role %q", req.Role)
	}

	var taken bool
	check := "select exists(select 1 from users where username = $1 or email = $2)"
	if err := s.db.Get(&taken, check, req.Username, req.Email); err != nil {
		return nil, fmt.Errorf("failed to check user existence: %w", err)
	}
	if taken {
		return nil, validationf("username or email is already in use")
	}

	var user models.User
	query := fmt.Sprintf(`
		insert into users (username, email, first_name, last_name, bio, role)
		values ($1, $2, $3, $4, $5, $6)
		returning %s
	`, userColumns)
	err := s.db.Get(&user, query,
		req.Username, req.Email, req.FirstName, req.LastName, req.Bio, role)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

// Update applies a partial update to the user with the given username.
// allowRoleChange is false for self-service updates, where the role field
// is silently read-only.
func (s *UsersService) Update(username string, req *dto.UpdateUserRequest, allowRoleChange bool) (*models.User, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		if err := s.validateUsername(*req.Username); err != nil {
			return nil, err
		}
		user.Username = *req.Username
	}
	if req.Email != nil {
		if *req.Email == "" {
			return nil, validationf("email cannot be empty")
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		if utf8.RuneCountInString(*req.Bio) > s.limits.BioMaxLen {
			return nil, validationf("bio must be at most %d characters", s.limits.BioMaxLen)
		}
		user.Bio = *req.Bio
	}
	if req.Role != nil && allowRoleChange {
		role := models.UserRole(*req.Role)
		if !role.Valid() {
			return nil, validationf("unknown role %q", *req.Role)
		}
		user.Role = role
	}

	query := `
		update users
		set username = $1, email = $2, first_name = $3, last_name = $4,
		    bio = $5, role = $6, updated_at = now()
		where id = $7
	`
	if _, err := s.db.Exec(query,
		user.Username, user.Email, user.FirstName, user.LastName,
		user.Bio, user.Role, user.ID); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

func (s *UsersService) Delete(username string) error {
	result, err := s.db.Exec("delete from users where username = $1", username)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *UsersService) validateUsername(username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return validationf("username is required")
	}
	if username == s.limits.SelfIdentifier {
		return validationf("username %q is reserved", username)
	}
	if !usernamePattern.MatchString(username) {
		return validationf("username contains invalid characters")
	}
	if utf8.RuneCountInString(username) > s.limits.UsernameMaxLen {
		return validationf("username must be at most %d characters", s.limits.UsernameMaxLen)
	}
	return nil
}
