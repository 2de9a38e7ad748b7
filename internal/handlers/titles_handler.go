package handlers

import (
	"net/http"
	"strconv"

	"yamdb-backend/internal/config"
	"yamdb-backend/internal/database"
	"yamdb-backend/internal/dto"
	"yamdb-backend/internal/services"
	"yamdb-backend/utils/response"
)

type TitlesHandler struct {
	service *services.TitlesService
	limits  config.Limits
}

func NewTitlesHandler(db *database.DB, limits config.Limits) *TitlesHandler {
	return &TitlesHandler{
		service: services.NewTitlesService(db, limits),
		limits:  limits,
	}
}

func (h *TitlesHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := dto.TitleFilter{
		CategorySlug: query.Get("category"),
		GenreSlug:    query.Get("genre"),
		Name:         query.Get("name"),
	}
	if raw := query.Get("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(w, http.StatusBadRequest, "Invalid year filter")
			return
		}
		filter.Year = year
	}

	page := parsePage(r, h.limits)
	titles, count, err := h.service.List(filter, page)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Paginated(w, count, page.Number, page.Size, titles)
}

func (h *TitlesHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	title, err := h.service.Get(id)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Success(w, title, "")
}

func (h *TitlesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TitleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	title, err := h.service.Create(&req)
	if err != nil {
		serviceError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.SuccessResponse{
		Success: true,
		Data:    title,
	})
}

func (h *TitlesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.TitleUpdateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	title, err := h.service.Update(id, &req)
	if err != nil {
		serviceError(w, err)
		return
	}
	response.Success(w, title, "")
}

func (h *TitlesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(id); err != nil {
		serviceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
