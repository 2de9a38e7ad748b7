package services

import (
	"errors"
	"strings"
	"testing"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/dto"
	"yamdb-backend/internal/mailer"
	"yamdb-backend/internal/testutil"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type captureMailer struct {
	to      string
	subject string
	body    string
	sends   int
	fail    error
}

func (m *captureMailer) Send(to, subject, body string) error {
	if m.fail != nil {
		return m.fail
	}
	m.to, m.subject, m.body = to, subject, body
	m.sends++
	return nil
}

// code pulls the confirmation code out of the delivered message body.
func (m *captureMailer) code(t *testing.T) string {
	t.Helper()
	start := strings.Index(m.body, "<")
	end := strings.Index(m.body, ">")
	require.True(t, start >= 0 && end > start, "no code in mail body: %q", m.body)
	return m.body[start+1 : end]
}

const testJWTSecret = "test-secret"

func newAuthService(t *testing.T) (*AuthService, *captureMailer) {
	db := testutil.SetupTestDB(t)
	mail := &captureMailer{}
	return NewAuthService(db, mail, testJWTSecret, config.DefaultLimits()), mail
}

func TestSignupAndToken(t *testing.T) {
	svc, mail := newAuthService(t)

	err := svc.Signup(&dto.SignupRequest{Username: "alice", Email: "alice@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", mail.to)

	token, err := svc.Token(&dto.TokenRequest{
		Username:         "alice",
		ConfirmationCode: mail.code(t),
	})
	require.NoError(t, err)

	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	claims := parsed.Claims.(jwt.MapClaims)
	assert.Equal(t, "alice", claims["username"])
	assert.Equal(t, "user", claims["role"])
}

func TestSignupIdempotentRotatesCode(t *testing.T) {
	svc, mail := newAuthService(t)

	req := &dto.SignupRequest{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, svc.Signup(req))
	firstCode := mail.code(t)

	require.NoError(t, svc.Signup(req))
	secondCode := mail.code(t)
	assert.Equal(t, 2, mail.sends)
	assert.NotEqual(t, firstCode, secondCode)

	// The rotated code replaces the old one.
	_, err := svc.Token(&dto.TokenRequest{Username: "alice", ConfirmationCode: firstCode})
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = svc.Token(&dto.TokenRequest{Username: "alice", ConfirmationCode: secondCode})
	assert.NoError(t, err)
}

func TestTokenDoesNotInvalidateCode(t *testing.T) {
	svc, mail := newAuthService(t)

	require.NoError(t, svc.Signup(&dto.SignupRequest{Username: "alice", Email: "alice@example.com"}))
	code := mail.code(t)

	_, err := svc.Token(&dto.TokenRequest{Username: "alice", ConfirmationCode: code})
	require.NoError(t, err)

	// Exchanging again with the same code still works.
	_, err = svc.Token(&dto.TokenRequest{Username: "alice", ConfirmationCode: code})
	assert.NoError(t, err)
}

func TestSignupValidation(t *testing.T) {
	svc, _ := newAuthService(t)

	tests := []struct {
		name string
		req  dto.SignupRequest
	}{
		{"reserved username", dto.SignupRequest{Username: "me", Email: "me@example.com"}},
		{"empty username", dto.SignupRequest{Username: "", Email: "a@example.com"}},
		{"empty email", dto.SignupRequest{Username: "alice", Email: ""}},
		{"invalid username characters", dto.SignupRequest{Username: "al ice", Email: "a@example.com"}},
		{"invalid email", dto.SignupRequest{Username: "alice", Email: "not-an-email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Signup(&tt.req)
			var validation *ValidationError
			assert.ErrorAs(t, err, &validation)
		})
	}
}

func TestSignupConflictingPair(t *testing.T) {
	svc, _ := newAuthService(t)

	require.NoError(t, svc.Signup(&dto.SignupRequest{Username: "alice", Email: "alice@example.com"}))

	var validation *ValidationError

	err := svc.Signup(&dto.SignupRequest{Username: "alice", Email: "other@example.com"})
	assert.ErrorAs(t, err, &validation)

	err = svc.Signup(&dto.SignupRequest{Username: "bob", Email: "alice@example.com"})
	assert.ErrorAs(t, err, &validation)
}

func TestSignupEmailFailureKeepsUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mail := &captureMailer{fail: errors.New("connection refused")}
	svc := NewAuthService(db, mail, testJWTSecret, config.DefaultLimits())

	err := svc.Signup(&dto.SignupRequest{Username: "alice", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrEmailDelivery)

	// The registration itself is not rolled back.
	var exists bool
	require.NoError(t, db.Get(&exists, "select exists(select 1 from users where username = 'alice')"))
	assert.True(t, exists)
}

func TestSignupBadHeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	mail := &captureMailer{fail: mailer.ErrBadHeader}
	svc := NewAuthService(db, mail, testJWTSecret, config.DefaultLimits())

	err := svc.Signup(&dto.SignupRequest{Username: "alice", Email: "alice@example.com"})
	assert.ErrorIs(t, err, ErrEmailDelivery)
	assert.ErrorIs(t, err, mailer.ErrBadHeader)
}

func TestTokenErrors(t *testing.T) {
	svc, mail := newAuthService(t)

	require.NoError(t, svc.Signup(&dto.SignupRequest{Username: "alice", Email: "alice@example.com"}))

	_, err := svc.Token(&dto.TokenRequest{Username: "nobody", ConfirmationCode: mail.code(t)})
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, err = svc.Token(&dto.TokenRequest{Username: "alice", ConfirmationCode: "0000000000000000"})
	assert.ErrorIs(t, err, ErrInvalidCode)
}
