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

type ReviewsHandler struct {
	service *services.ReviewsService
	limits  config.Limits
}

func NewReviewsHandler(db *database.DB, limits config.Limits) *ReviewsHandler {
	return &ReviewsHandler{
		service: services.NewReviewsService(db, limits),
		limits:  limits,
	}
}

func (h *ReviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}

	page := parsePage(r, h.limits)
	reviews, count, err := h.service.ListByTitle(titleID, page)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Paginated(w, count, page.Number, page.Size, reviews)
}

func (h *ReviewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}

	review, err := h.service.Get(titleID, reviewID)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Success(w, review, "")
}

func (h *ReviewsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		response.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}

	var req dto.ReviewRequest
	if !decodeBody(w, r, &req) {
		return
	}

	review, err := h.service.Create(titleID, claims.UserID, &req)
	if err != nil {
		serviceError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SuccessResponse{
		Success: true,
		Data:    review,
	})
}

func (h *ReviewsHandler) Update(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}

	if !h.authorizeWrite(w, r, titleID, reviewID, permissions.ActionUpdate) {
		return
	}

	var req dto.ReviewUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	review, err := h.service.Update(titleID, reviewID, &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Success(w, review, "")
}

func (h *ReviewsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return
	}
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return
	}

	if !h.authorizeWrite(w, r, titleID, reviewID, permissions.ActionDelete) {
		return
	}

	if err := h.service.Delete(titleID, reviewID); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authorizeWrite resolves the review first, then asks the evaluator
// whether the caller may modify it; authorship checks need the stored
// author, not anything the client sent.
func (h *ReviewsHandler) authorizeWrite(w http.ResponseWriter, r *http.Request, titleID, reviewID int64, action permissions.Action) bool {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		response.Error(w, http.StatusUnauthorized, "Not authenticated")
		return false
	}

	review, err := h.service.Get(titleID, reviewID)
	if err != nil {
		serviceError(w, err)
		return false
	}

	target := permissions.Target{Kind: permissions.KindReview, AuthorID: review.AuthorID}
	if !permissions.Evaluate(claims.Identity(), action, target).Allowed() {
		response.Error(w, http.StatusForbidden, "Permission denied")
		return false
	}
	return true
}
