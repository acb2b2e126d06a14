package handler

import (
	"net/http"

	"learn2learn/internal/technique/repository"
	"learn2learn/pkg/response"
)

// TechniqueHandler serves the learning-technique catalog. Pure reference
// data: no service layer, no ownership, the auth middleware is the only gate.
type TechniqueHandler struct {
	Repo *repository.TechniqueRepository
}

func NewTechniqueHandler(repo *repository.TechniqueRepository) *TechniqueHandler {
	return &TechniqueHandler{Repo: repo}
}

func (h *TechniqueHandler) GetTechniques(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	techniques, err := h.Repo.List()
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, techniques)
}

func (h *TechniqueHandler) GetTechnique(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	techniqueID := r.URL.Query().Get("techniqueId")
	if techniqueID == "" {
		http.Error(w, "Missing techniqueId parameter", http.StatusBadRequest)
		return
	}

	technique, err := h.Repo.GetByID(techniqueID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, technique)
}
