package handlers

import (
	"net/http"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/database"
	"yamdb-backend/internal/dto"
	"yamdb-backend/internal/services"
	"yamdb-backend/utils/response"
)

// CatalogHandler serves the category and genre reference data. Both
// expose list, create and delete-by-slug; retrieval by slug is not part
// of the surface and is routed to MethodNotAllowed.
type CatalogHandler struct {
	service *services.CatalogService
	limits  config.Limits
}

func NewCatalogHandler(db *database.DB, limits config.Limits) *CatalogHandler {
	return &CatalogHandler{
		service: services.NewCatalogService(db, limits),
		limits:  limits,
	}
}

func (h *CatalogHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, h.limits)
	categories, count, err := h.service.ListCategories(r.URL.Query().Get("search"), page)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Paginated(w, count, page.Number, page.Size, categories)
}

func (h *CatalogHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req dto.CategoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	category, err := h.service.CreateCategory(&req)
	if err != nil {
		serviceError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SuccessResponse{
		Success: true,
		Data:    category,
	})
}

func (h *CatalogHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCategory(r.PathValue("slug")); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *CatalogHandler) ListGenres(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r, h.limits)
	genres, count, err := h.service.ListGenres(r.URL.Query().Get("search"), page)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Paginated(w, count, page.Number, page.Size, genres)
}

func (h *CatalogHandler) CreateGenre(w http.ResponseWriter, r *http.Request) {
	var req dto.GenreRequest
	if !decodeBody(w, r, &req) {
		return
	}

	genre, err := h.service.CreateGenre(&req)
	if err != nil {
		serviceError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SuccessResponse{
		Success: true,
		Data:    genre,
	})
}

func (h *CatalogHandler) DeleteGenre(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteGenre(r.PathValue("slug")); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
