package model

import "time"

// Tag is a shared, globally unique label. Tags have no owner; any
// authenticated user may attach one to their notes. NotesCount is only
// populated by queries that compute it (listWithCounts, popular).
type Tag struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	NotesCount *int64    `json:"notes_count,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type CreateTagRequest struct {
	Name string `json:"name"`
}

type UpdateTagRequest struct {
	Name string `json:"name"`
}

type TagListResult struct {
	Tags       []Tag  `json:"tags"`
	NextCursor string `json:"next_cursor,omitempty"`
}
