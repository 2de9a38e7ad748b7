package middleware

import (
	"context"
	"net/http"
	"strings"

	"yamdb-backend/internal/models"
	"yamdb-backend/internal/permissions"
	"yamdb-backend/utils/response"

	"github.com/golang-jwt/jwt"
)

type contextKey string

const UserContextKey contextKey = "user"

type UserClaims struct {
	UserID    int64           `json:"userID"`
	Username  string          `json:"username"`
	Role      models.UserRole `json:"role"`
	Superuser bool            `json:"superuser"`
}

// Identity converts the claims into a permission-evaluator identity.
func (c *UserClaims) Identity() permissions.Identity {
	if c == nil {
		return permissions.Anonymous
	}
	return permissions.Identity{
		UserID:    c.UserID,
		Role:      c.Role,
		Superuser: c.Superuser,
	}
}

type AuthMiddleware struct {
	jwtSecret string
}

func NewAuthMiddleware(jwtSecret string) *AuthMiddleware {
	return &AuthMiddleware{jwtSecret: jwtSecret}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			response.Error(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := m.validateToken(token)
		if err != nil {
			response.Error(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// OptionalAuth attaches claims when a valid token is present but lets the
// request through anonymously otherwise. Content reads are open to
// anonymous clients, so their handlers cannot demand a token up front.
func (m *AuthMiddleware) OptionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token != "" {
			if claims, err := m.validateToken(token); err == nil {
				ctx := context.WithValue(r.Context(), UserContextKey, claims)
				r = r.WithContext(ctx)
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return m.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserFromContext(r.Context())
		if claims == nil || !(claims.Superuser || claims.Role.IsAdmin()) {
			response.Error(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	}))
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

func (m *AuthMiddleware) validateToken(tokenString string) (*UserClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(m.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		return nil, err
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, jwt.ErrInvalidKey
	}

	userID, ok := mapClaims["userID"].(float64)
	if !ok {
		return nil, jwt.ErrInvalidKey
	}
	username, ok := mapClaims["username"].(string)
	if !ok {
		return nil, jwt.ErrInvalidKey
	}
	role, ok := mapClaims["role"].(string)
	if !ok {
		return nil, jwt.ErrInvalidKey
	}
	superuser, _ := mapClaims["superuser"].(bool)

	return &UserClaims{
		UserID:    int64(userID),
		Username:  username,
		Role:      models.UserRole(role),
		Superuser: superuser,
	}, nil
}

func GetUserFromContext(ctx context.Context) *UserClaims {
	claims, ok := ctx.Value(UserContextKey).(*UserClaims)
	if !ok {
		return nil
	}
	return claims
}
