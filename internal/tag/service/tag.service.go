package service

import (
	"strings"
	"unicode/utf8"

	"learn2learn/internal/authz"
	"learn2learn/internal/tag/model"
	"learn2learn/internal/tag/repository"
	"learn2learn/pkg/apperr"
	"learn2learn/pkg/pagination"
	"learn2learn/socket"

	"github.com/google/uuid"
)

const maxNameLen = 255

type TagService struct {
	Repo *repository.TagRepository
	Hub  *socket.Hub
}

func NewTagService(repo *repository.TagRepository, hub *socket.Hub) *TagService {
	return &TagService{Repo: repo, Hub: hub}
}

// Create adds a tag to the shared vocabulary. Duplicate names surface as a
// conflict from the unique index, case-sensitively.
func (s *TagService) Create(actor string, req model.CreateTagRequest) (*model.Tag, error) {
	if !authz.CanAccess(actor, authz.ActionCreate, authz.Tag()) {
		return nil, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if err := validateName(req.Name); err != nil {
		return nil, err
	}

	tag := &model.Tag{ID: uuid.NewString(), Name: req.Name}
	if err := s.Repo.Create(tag); err != nil {
		return nil, err
	}
	if s.Hub != nil {
		s.Hub.PublishAll(socket.TagCreatedType, tag)
	}
	return tag, nil
}

// List returns one page of the vocabulary, ordered by name.
func (s *TagService) List(actor string, withCounts bool, cursorToken string) (*model.TagListResult, error) {
	if !authz.CanAccess(actor, authz.ActionViewAny, authz.Tag()) {
		return nil, apperr.New(apperr.Unauthenticated, "authentication required")
	}

	var cursor *pagination.NameCursor
	if cursorToken != "" {
		c, err := pagination.DecodeName(cursorToken)
		if err != nil {
			return nil, err
		}
		cursor = &c
	}

	tags, err := s.Repo.List(withCounts, cursor, pagination.PageSize+1)
	if err != nil {
		return nil, err
	}

	result := &model.TagListResult{Tags: tags}
	if len(tags) > pagination.PageSize {
		result.Tags = tags[:pagination.PageSize]
		last := result.Tags[len(result.Tags)-1]
		result.NextCursor = pagination.EncodeName(pagination.NameCursor{Name: last.Name})
	}
	return result, nil
}

// Update renames a tag for everyone; tags being shared, any authenticated
// actor may do so.
func (s *TagService) Update(actor, tagID string, req model.UpdateTagRequest) (*model.Tag, error) {
	if !authz.CanAccess(actor, authz.ActionUpdate, authz.Tag()) {
		return nil, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if err := validateName(req.Name); err != nil {
		return nil, err
	}

	tag := &model.Tag{ID: tagID, Name: req.Name}
	if err := s.Repo.Update(tag); err != nil {
		return nil, err
	}
	if s.Hub != nil {
		s.Hub.PublishAll(socket.TagUpdatedType, tag)
	}
	return tag, nil
}

// Delete removes the tag. Notes that carried it keep their other tags; the
// associations are detached, never a reason to refuse.
func (s *TagService) Delete(actor, tagID string) error {
	if !authz.CanAccess(actor, authz.ActionDelete, authz.Tag()) {
		return apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if err := s.Repo.Delete(tagID); err != nil {
		return err
	}
	if s.Hub != nil {
		s.Hub.PublishAll(socket.TagDeletedType, map[string]string{"id": tagID})
	}
	return nil
}

// Popular returns all tags by descending note count, with counts populated.
func (s *TagService) Popular(actor string) ([]model.Tag, error) {
	if !authz.CanAccess(actor, authz.ActionViewAny, authz.Tag()) {
		return nil, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	return s.Repo.Popular()
}

// Unused returns tags no note refers to.
func (s *TagService) Unused(actor string) ([]model.Tag, error) {
	if !authz.CanAccess(actor, authz.ActionViewAny, authz.Tag()) {
		return nil, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	return s.Repo.Unused()
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return apperr.WithField(apperr.Validation, "name is required", "name", "is required")
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return apperr.WithField(apperr.Validation, "name is too long", "name", "must be at most 255 characters")
	}
	return nil
}
