package handlers

import (
	"net/http"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/database"
	"yamdb-backend/internal/dto"
	"yamdb-backend/internal/middleware"
	"yamdb-backend/internal/permissions"
	"yamdb-backend/internal/services"
	"yamdb-backend/utils/response"
)

// UsersHandler serves admin user management plus the reserved self
// identifier, which addresses the authenticated caller's own record.
type UsersHandler struct {
	service *services.UsersService
	limits  config.Limits
}

func NewUsersHandler(db *database.DB, limits config.Limits) *UsersHandler {
	return &UsersHandler{
		service: services.NewUsersService(db, limits),
		limits:  limits,
	}
}

func (h *UsersHandler) List(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, h.limits)
	users, count, err := h.service.List(r.URL.Query().Get("search"), page)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Paginated(w, count, page.Number, page.Size, users)
}

func (h *UsersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	user, err := h.service.Create(&req)
	if err != nil {
		serviceError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SuccessResponse{
		Success: true,
		Data:    user,
	})
}

func (h *UsersHandler) Get(w http.ResponseWriter, r *http.Request) {
	_, username, ok := h.authorize(w, r, permissions.ActionRead)
	if !ok {
		return
	}

	user, err := h.service.GetByUsername(username)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Success(w, user, "")
}

func (h *UsersHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, username, ok := h.authorize(w, r, permissions.ActionUpdate)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if !decodeBody(w, r, &req) {
		return
	}

	// Non-privileged users may edit their own record but never their
	// role.
	allowRoleChange := claims.Superuser || claims.Role.IsAdmin()

	user, err := h.service.Update(username, &req, allowRoleChange)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Success(w, user, "")
}

func (h *UsersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if r.PathValue("username") == h.limits.SelfIdentifier {
		// Deleting one's own record through the self identifier is a
		// disallowed operation shape, whatever the role.
		MethodNotAllowed(w, r)
		return
	}

	_, username, ok := h.authorize(w, r, permissions.ActionDelete)
	if !ok {
		return
	}

	if err := h.service.Delete(username); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorize resolves the path's username, replacing the reserved self
// identifier with the caller's own username, and evaluates the request
// against the permission rules.
func (h *UsersHandler) authorize(w http.ResponseWriter, r *http.Request, action permissions.Action) (*middleware.UserClaims, string, bool) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		response.Error(w, http.StatusUnauthorized, "Not authenticated")
		return nil, "", false
	}

	username := r.PathValue("username")
	target := permissions.Target{Kind: permissions.KindUser}
	if username == h.limits.SelfIdentifier {
		target.Self = true
		target.AuthorID = claims.UserID
		username = claims.Username
	}

	if !permissions.Evaluate(claims.Identity(), action, target).Allowed() {
		response.Error(w, http.StatusForbidden, "Permission denied")
		return nil, "", false
	}
	return claims, username, true
}
