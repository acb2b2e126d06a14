package handler

import (
	"encoding/json"
	"net/http"

	"learn2learn/internal/note/model"
	"learn2learn/internal/note/service"
	"learn2learn/middleware"
	"learn2learn/pkg/apperr"
	"learn2learn/pkg/response"
)

type NoteHandler struct {
	Service *service.NoteService
}

func NewNoteHandler(service *service.NoteService) *NoteHandler {
	return &NoteHandler{Service: service}
}

func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor := r.Context().Value(middleware.UserIDKey).(string)

	var req model.CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	note, err := h.Service.Create(actor, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, note)
}

func (h *NoteHandler) GetNotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	actor := r.Context().Value(middleware.UserIDKey).(string)

	result, err := h.Service.List(actor, model.ListNotesRequest{
		Order:  r.URL.Query().Get("order"),
		TagID:  r.URL.Query().Get("tagId"),
		Cursor: r.URL.Query().Get("cursor"),
	})
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, result)
}

func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	noteID := r.URL.Query().Get("noteId")
	if noteID == "" {
		http.Error(w, "Missing noteId parameter", http.StatusBadRequest)
		return
	}

	actor := r.Context().Value(middleware.UserIDKey).(string)

	note, err := h.Service.Get(actor, noteID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, note)
}

func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	noteID := r.URL.Query().Get("noteId")
	if noteID == "" {
		http.Error(w, "Missing noteId parameter", http.StatusBadRequest)
		return
	}

	actor := r.Context().Value(middleware.UserIDKey).(string)

	var req model.UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, apperr.New(apperr.Validation, "invalid request body"))
		return
	}

	note, err := h.Service.Update(actor, noteID, req)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, note)
}

func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	noteID := r.URL.Query().Get("noteId")
	if noteID == "" {
		http.Error(w, "Missing noteId parameter", http.StatusBadRequest)
		return
	}

	actor := r.Context().Value(middleware.UserIDKey).(string)

	if err := h.Service.Delete(actor, noteID); err != nil {
		response.Error(w, err)
		return
	}
	response.NoContent(w)
}

func (h *NoteHandler) RateNote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	noteID := r.URL.Query().Get("noteId")
	if noteID == "" {
		http.Error(w, "Missing noteId parameter", http.StatusBadRequest)
		return
	}

	actor := r.Context().Value(middleware.UserIDKey).(string)

	rating, err := h.Service.Rate(r.Context(), actor, noteID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.JSON(w, http.StatusOK, rating)
}
