package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"learn2learn/internal/airating"
	"learn2learn/internal/authz"
	"learn2learn/internal/note/model"
	"learn2learn/internal/note/repository"
	"learn2learn/pkg/apperr"
	"learn2learn/pkg/pagination"
	"learn2learn/socket"

	"github.com/google/uuid"
)

const (
	maxTitleLen          = 255
	minRatableContentLen = 10
)

// Rater produces an AI verdict for a note's content.
type Rater interface {
	Rate(ctx context.Context, title, content string) (*airating.Rating, error)
}

type NoteService struct {
	Repo  *repository.NoteRepository
	Hub   *socket.Hub
	Rater Rater
}

func NewNoteService(repo *repository.NoteRepository, hub *socket.Hub, rater Rater) *NoteService {
	return &NoteService{Repo: repo, Hub: hub, Rater: rater}
}

// Create stores a new note owned by actor, with its tag set attached
// atomically, and returns it fully populated.
func (s *NoteService) Create(actor string, req model.CreateNoteRequest) (*model.Note, error) {
	if !authz.CanAccess(actor, authz.ActionCreate, authz.Note(actor)) {
		return nil, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if err := validateTitle(req.Title); err != nil {
		return nil, err
	}
	if err := validateContent(req.Content); err != nil {
		return nil, err
	}

	note := &model.Note{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Content:     req.Content,
		UserID:      actor,
		TechniqueID: req.TechniqueID,
	}
	if err := s.Repo.Create(note, req.Tags); err != nil {
		return nil, err
	}

	created, err := s.Repo.GetByID(note.ID)
	if err != nil {
		return nil, err
	}
	if s.Hub != nil {
		s.Hub.Publish(socket.NoteCreatedType, actor, created)
	}
	return created, nil
}

// List returns one page of the actor's own notes. Other users' notes are
// excluded by the owner-scoped query, not by per-row policy checks.
func (s *NoteService) List(actor string, req model.ListNotesRequest) (*model.NoteListResult, error) {
	if !authz.CanAccess(actor, authz.ActionViewAny, authz.Note(actor)) {
		return nil, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	order := req.Order
	if order == "" {
		order = model.OrderNewest
	}
	if order != model.OrderNewest && order != model.OrderOldest {
		return nil, apperr.WithField(apperr.Validation, "invalid order", "order", "must be newest or oldest")
	}

	var cursor *pagination.TimeCursor
	if req.Cursor != "" {
		c, err := pagination.DecodeTime(req.Cursor)
		if err != nil {
			return nil, err
		}
		cursor = &c
	}

	notes, err := s.Repo.List(actor, repository.ListQuery{
		Order:  order,
		TagID:  req.TagID,
		Cursor: cursor,
		Limit:  pagination.PageSize + 1,
	})
	if err != nil {
		return nil, err
	}

	result := &model.NoteListResult{Notes: notes}
	if len(notes) > pagination.PageSize {
		result.Notes = notes[:pagination.PageSize]
		last := result.Notes[len(result.Notes)-1]
		result.NextCursor = pagination.EncodeTime(pagination.TimeCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return result, nil
}

// Get returns the note if actor owns it. A note owned by someone else yields
// Forbidden, not NotFound: existence is not masked.
func (s *NoteService) Get(actor, noteID string) (*model.Note, error) {
	note, err := s.Repo.GetByID(noteID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccess(actor, authz.ActionView, authz.Note(note.UserID)) {
		return nil, apperr.New(apperr.Forbidden, "you do not own this note")
	}
	return note, nil
}

// Update applies the partial field set. A present tags field replaces the
// association set exactly, in the same transaction as the field update. The
// owner is not an updatable field.
func (s *NoteService) Update(actor, noteID string, req model.UpdateNoteRequest) (*model.Note, error) {
	note, err := s.Repo.GetByID(noteID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccess(actor, authz.ActionUpdate, authz.Note(note.UserID)) {
		return nil, apperr.New(apperr.Forbidden, "you do not own this note")
	}

	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return nil, err
		}
		note.Title = *req.Title
	}
	if req.Content != nil {
		if err := validateContent(*req.Content); err != nil {
			return nil, err
		}
		note.Content = *req.Content
	}
	if req.TechniqueSet {
		note.TechniqueID = req.TechniqueID
	}

	if err := s.Repo.Update(note, req.Tags); err != nil {
		return nil, err
	}

	updated, err := s.Repo.GetByID(noteID)
	if err != nil {
		return nil, err
	}
	if s.Hub != nil {
		s.Hub.Publish(socket.NoteUpdatedType, actor, updated)
	}
	return updated, nil
}

// Delete removes the note and its associations.
func (s *NoteService) Delete(actor, noteID string) error {
	note, err := s.Repo.GetByID(noteID)
	if err != nil {
		return err
	}
	if !authz.CanAccess(actor, authz.ActionDelete, authz.Note(note.UserID)) {
		return apperr.New(apperr.Forbidden, "you do not own this note")
	}
	if err := s.Repo.Delete(noteID); err != nil {
		return err
	}
	if s.Hub != nil {
		s.Hub.Publish(socket.NoteDeletedType, actor, map[string]string{"id": noteID})
	}
	return nil
}

// Rate asks the AI adapter for a verdict on the actor's note. The minimum
// content length is enforced here, on the caller's side of the adapter.
func (s *NoteService) Rate(ctx context.Context, actor, noteID string) (*airating.Rating, error) {
	note, err := s.Get(actor, noteID)
	if err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(note.Content) < minRatableContentLen {
		return nil, apperr.WithField(apperr.Validation, "note content is too short to rate", "content", "must be at least 10 characters")
	}
	if s.Rater == nil {
		return nil, apperr.New(apperr.Upstream, "rating service is not configured")
	}
	return s.Rater.Rate(ctx, note.Title, note.Content)
}

func validateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return apperr.WithField(apperr.Validation, "title is required", "title", "is required")
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return apperr.WithField(apperr.Validation, "title is too long", "title", "must be at most 255 characters")
	}
	return nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return apperr.WithField(apperr.Validation, "content is required", "content", "is required")
	}
	return nil
}
