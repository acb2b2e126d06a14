package handler

import (
	"encoding/json"
	"net/http"

	"learn2learn/internal/tag/model"
	"learn2learn/internal/tag/service"
	"learn2learn/middleware"
	"learn2learn/pkg/apperr"
	"learn2learn/pkg/response"
)

type TagHandler struct {
	Service *service.TagService
}

func NewTagHandler(service *service.TagService) *TagHandler {
	return &TagHandler{Service: service}
}

func (h *TagHandler) CreateTag(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor := r.Context().Value(middleware.UserIDKey).(string)

	var req model.CreateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	tag, err := h.Service.Create(actor, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, tag)
}

func (h *TagHandler) GetTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor := r.Context().Value(middleware.UserIDKey).(string)
	withCounts := r.URL.Query().Get("withCounts") == "true"

	result, err := h.Service.List(actor, withCounts, r.URL.Query().Get("cursor"))
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (h *TagHandler) UpdateTag(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tagID := r.URL.Query().Get("tagId")
	if tagID == "" {
		http.Error(w, "Missing tagId parameter", http.StatusBadRequest)
		return
	}

	actor := r.Context().Value(middleware.UserIDKey).(string)

	var req model.UpdateTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	tag, err := h.Service.Update(actor, tagID, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tag)
}

func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tagID := r.URL.Query().Get("tagId")
	if tagID == "" {
		http.Error(w, "Missing tagId parameter", http.StatusBadRequest)
		return
	}

	actor := r.Context().Value(middleware.UserIDKey).(string)

	if err := h.Service.Delete(actor, tagID); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

func (h *TagHandler) PopularTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor := r.Context().Value(middleware.UserIDKey).(string)

	tags, err := h.Service.Popular(actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tags)
}

func (h *TagHandler) UnusedTags(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor := r.Context().Value(middleware.UserIDKey).(string)

	tags, err := h.Service.Unused(actor)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, tags)
}
