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

type CommentsHandler struct {
	service *services.CommentsService
	limits  config.Limits
}

func NewCommentsHandler(db *database.DB, limits config.Limits) *CommentsHandler {
	reviews := services.NewReviewsService(db, limits)
	return &CommentsHandler{
		service: services.NewCommentsService(db, reviews, limits),
		limits:  limits,
	}
}

func (h *CommentsHandler) List(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	page := parsePage(r, h.limits)
	comments, count, err := h.service.ListByReview(titleID, reviewID, page)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Paginated(w, count, page.Number, page.Size, comments)
}

func (h *CommentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentID")
	if !ok {
		return
	}

	comment, err := h.service.Get(titleID, reviewID, commentID)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Success(w, comment, "")
}

func (h *CommentsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		response.Error(w, http.StatusUnauthorized, "Not authenticated")
		return
	}

	titleID, reviewID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}

	var req dto.CommentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	comment, err := h.service.Create(titleID, reviewID, claims.UserID, &req)
	if err != nil {
		serviceError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SuccessResponse{
		Success: true,
		Data:    comment,
	})
}

func (h *CommentsHandler) Update(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentID")
	if !ok {
		return
	}

	if !h.authorizeWrite(w, r, titleID, reviewID, commentID, permissions.ActionUpdate) {
		return
	}

	var req dto.CommentUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	comment, err := h.service.Update(titleID, reviewID, commentID, &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Success(w, comment, "")
}

func (h *CommentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	titleID, reviewID, ok := h.pathIDs(w, r)
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentID")
	if !ok {
		return
	}

	if !h.authorizeWrite(w, r, titleID, reviewID, commentID, permissions.ActionDelete) {
		return
	}

	if err := h.service.Delete(titleID, reviewID, commentID); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CommentsHandler) pathIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	titleID, ok := pathID(w, r, "titleID")
	if !ok {
		return 0, 0, false
	}
	reviewID, ok := pathID(w, r, "reviewID")
	if !ok {
		return 0, 0, false
	}
	return titleID, reviewID, true
}

func (h *CommentsHandler) authorizeWrite(w http.ResponseWriter, r *http.Request, titleID, reviewID, commentID int64, action permissions.Action) bool {
	claims := middleware.GetUserFromContext(r.Context())
	if claims == nil {
		response.Error(w, http.StatusUnauthorized, "Not authenticated")
		return false
	}

	comment, err := h.service.Get(titleID, reviewID, commentID)
	if err != nil {
		serviceError(w, err)
		return false
	}

	target := permissions.Target{Kind: permissions.KindComment, AuthorID: comment.AuthorID}
	if !permissions.Evaluate(claims.Identity(), action, target).Allowed() {
		response.Error(w, http.StatusForbidden, "Permission denied")
		return false
	}
	return true
}
