package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/mailer"
	"yamdb-backend/internal/services"
	"yamdb-backend/utils/response"
)

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := r.PathValue(name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		response.Error(w, http.StatusNotFound, "Not found")
		return 0, false
	}
	return id, true
}

func parsePage(r *http.Request, limits config.Limits) services.Page {
	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page = n
		}
	}
	return services.Page{Number: page, Size: limits.PageSize}
}

// serviceError translates service failures into the response taxonomy:
// validation 400, missing entities 404, duplicate review 409, email
// delivery 400/500, anything else a logged 500.
func serviceError(w http.ResponseWriter, err error) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		response.Error(w, http.StatusBadRequest, validation.Message)
	case errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrCategoryNotFound),
		errors.Is(err, services.ErrGenreNotFound),
		errors.Is(err, services.ErrTitleNotFound),
		errors.Is(err, services.ErrReviewNotFound),
		errors.Is(err, services.ErrCommentNotFound):
		response.Error(w, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrReviewExists):
		response.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, services.ErrInvalidCode):
		response.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrEmailDelivery):
		if errors.Is(err, mailer.ErrBadHeader) {
			response.Error(w, http.StatusBadRequest, "Invalid header found")
			return
		}
		log.Printf("email delivery failed: %v", err)
		response.Error(w, http.StatusInternalServerError, "Failed to deliver confirmation email")
	default:
		log.Printf("internal error: %v", err)
		response.Error(w, http.StatusInternalServerError, "Internal server error")
	}
}

// MethodNotAllowed serves route shapes that exist but are deliberately
// disallowed, like detail GET on a category slug.
func MethodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
}
