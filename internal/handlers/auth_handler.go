package handlers

import (
	"net/http"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/database"
	"yamdb-backend/internal/dto"
	"yamdb-backend/internal/mailer"
	"yamdb-backend/internal/services"
	"yamdb-backend/utils/response"
)

type AuthHandler struct {
	service *services.AuthService
}

func NewAuthHandler(db *database.DB, m mailer.Mailer, jwtSecret string, limits config.Limits) *AuthHandler {
	return &AuthHandler{
		service: services.NewAuthService(db, m, jwtSecret, limits),
	}
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := h.service.Signup(&req); err != nil {
		serviceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{
		Success: true,
		Data:    req,
		Message: "Confirmation code sent",
	})
}

func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req dto.TokenRequest
	if !decodeBody(w, r, &req) {
		return
	}

	token, err := h.service.Token(&req)
	if err != nil {
		serviceError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SuccessResponse{
		Success: true,
		Data:    dto.TokenResponse{Token: token},
	})
}
