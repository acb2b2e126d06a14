package model

import (
	"encoding/json"
	"time"

	tagmodel "learn2learn/internal/tag/model"
)

// Note is a user-owned study note. UserID is set at creation and never
// reassigned. TechniqueID optionally links a learning technique and may be
// cleared. Tags is the full association set, always populated on reads.
type Note struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Content     string         `json:"content"`
	UserID      string         `json:"user_id"`
	TechniqueID *string        `json:"technique_id"`
	Tags        []tagmodel.Tag `json:"tags"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

type CreateNoteRequest struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	TechniqueID *string  `json:"technique_id"`
	Tags        []string `json:"tags"`
}

// UpdateNoteRequest is a partial update: only fields present in the JSON body
// are applied. technique_id is tri-state (absent, null, value) — an explicit
// null clears the reference — and a present tags array (even empty) replaces
// the association set exactly.
type UpdateNoteRequest struct {
	Title        *string
	Content      *string
	TechniqueID  *string
	TechniqueSet bool
	Tags         *[]string
}

func (r *UpdateNoteRequest) UnmarshalJSON(data []byte) error {
	var raw struct {
		Title       *string         `json:"title"`
		Content     *string         `json:"content"`
		TechniqueID json.RawMessage `json:"technique_id"`
		Tags        *[]string       `json:"tags"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Title = raw.Title
	r.Content = raw.Content
	r.Tags = raw.Tags
	if raw.TechniqueID != nil {
		r.TechniqueSet = true
		if string(raw.TechniqueID) != "null" {
			var id string
			if err := json.Unmarshal(raw.TechniqueID, &id); err != nil {
				return err
			}
			r.TechniqueID = &id
		}
	}
	return nil
}

const (
	OrderNewest = "newest"
	OrderOldest = "oldest"
)

type ListNotesRequest struct {
	Order  string
	TagID  string
	Cursor string
}

type NoteListResult struct {
	Notes      []Note `json:"notes"`
	NextCursor string `json:"next_cursor,omitempty"`
}
