package repository

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"learn2learn/internal/note/model"
	tagmodel "learn2learn/internal/tag/model"
	"learn2learn/pkg/apperr"
	"learn2learn/pkg/logger"
	"learn2learn/pkg/pagination"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

const noteColumns = "n.id, n.title, n.content, n.user_id, n.learning_technic_id, n.created_at, n.updated_at"

type NoteRepository struct {
	DB *sql.DB
}

func NewNoteRepository(db *sql.DB) *NoteRepository {
	return &NoteRepository{DB: db}
}

// ListQuery scopes a page of notes. Cursor is nil on the first page.
type ListQuery struct {
	Order  string
	TagID  string
	Cursor *pagination.TimeCursor
	Limit  int
}

// Create inserts the note and its tag associations in one transaction.
// Timestamps are assigned by the database and written back into note.
func (r *NoteRepository) Create(note *model.Note, tagIDs []string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(
		`INSERT INTO notes (id, title, content, user_id, learning_technic_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, NOW(), NOW()) RETURNING created_at, updated_at`,
		note.ID, note.Title, note.Content, note.UserID, note.TechniqueID,
	).Scan(&note.CreatedAt, &note.UpdatedAt)
	if err != nil {
		if apperr.IsForeignKeyViolation(err) {
			return apperr.WithField(apperr.Reference, "learning technique does not exist", "technique_id", "unknown learning technique")
		}
		logger.Sugar.Errorf("Failed to create note: %v", err)
		return err
	}

	if len(tagIDs) > 0 {
		if err := syncTagsTx(tx, note.ID, tagIDs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetByID returns the note with its tag set populated, regardless of owner.
// Ownership is the service's decision, not the repository's.
func (r *NoteRepository) GetByID(noteID string) (*model.Note, error) {
	var (
		note        model.Note
		techniqueID sql.NullString
	)
	err := r.DB.QueryRow(
		"SELECT "+noteColumns+" FROM notes n WHERE n.id = $1", noteID,
	).Scan(&note.ID, &note.Title, &note.Content, &note.UserID, &techniqueID, &note.CreatedAt, &note.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "note not found")
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get note %s: %v", noteID, err)
		return nil, err
	}
	if techniqueID.Valid {
		note.TechniqueID = &techniqueID.String
	}

	tagsByNote, err := r.loadTags([]string{note.ID})
	if err != nil {
		return nil, err
	}
	note.Tags = tagsByNote[note.ID]
	if note.Tags == nil {
		note.Tags = []tagmodel.Tag{}
	}
	return &note, nil
}

// List returns up to q.Limit notes owned by userID, keyset-paginated by
// (created_at, id) and optionally restricted to one tag.
func (r *NoteRepository) List(userID string, q ListQuery) ([]model.Note, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString("SELECT " + noteColumns + " FROM notes n")
	if q.TagID != "" {
		args = append(args, q.TagID)
		fmt.Fprintf(&sb, " JOIN tag_notes tn ON tn.note_id = n.id AND tn.tag_id = $%d", len(args))
	}
	args = append(args, userID)
	fmt.Fprintf(&sb, " WHERE n.user_id = $%d", len(args))

	cmp, dir := "<", "DESC"
	if q.Order == model.OrderOldest {
		cmp, dir = ">", "ASC"
	}
	if q.Cursor != nil {
		args = append(args, q.Cursor.CreatedAt, q.Cursor.ID)
		fmt.Fprintf(&sb, " AND (n.created_at, n.id) %s ($%d, $%d)", cmp, len(args)-1, len(args))
	}
	args = append(args, q.Limit)
	fmt.Fprintf(&sb, " ORDER BY n.created_at %s, n.id %s LIMIT $%d", dir, dir, len(args))

	rows, err := r.DB.Query(sb.String(), args...)
	if err != nil {
		logger.Sugar.Errorf("Failed to list notes for user %s: %v", userID, err)
		return nil, err
	}
	defer rows.Close()

	notes := []model.Note{}
	noteIDs := []string{}
	for rows.Next() {
		var (
			note        model.Note
			techniqueID sql.NullString
		)
		if err := rows.Scan(&note.ID, &note.Title, &note.Content, &note.UserID, &techniqueID, &note.CreatedAt, &note.UpdatedAt); err != nil {
			return nil, err
		}
		if techniqueID.Valid {
			note.TechniqueID = &techniqueID.String
		}
		note.Tags = []tagmodel.Tag{}
		notes = append(notes, note)
		noteIDs = append(noteIDs, note.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(noteIDs) > 0 {
		tagsByNote, err := r.loadTags(noteIDs)
		if err != nil {
			return nil, err
		}
		for i := range notes {
			if tags, ok := tagsByNote[notes[i].ID]; ok {
				notes[i].Tags = tags
			}
		}
	}
	return notes, nil
}

// Update rewrites the note's mutable fields and, when tagIDs is non-nil,
// replaces the tag set in the same transaction. user_id is deliberately
// absent from the statement: the owner cannot be reassigned.
func (r *NoteRepository) Update(note *model.Note, tagIDs *[]string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.QueryRow(
		`UPDATE notes SET title = $1, content = $2, learning_technic_id = $3, updated_at = NOW()
		 WHERE id = $4 RETURNING updated_at`,
		note.Title, note.Content, note.TechniqueID, note.ID,
	).Scan(&note.UpdatedAt)
	if err == sql.ErrNoRows {
		return apperr.New(apperr.NotFound, "note not found")
	}
	if err != nil {
		if apperr.IsForeignKeyViolation(err) {
			return apperr.WithField(apperr.Reference, "learning technique does not exist", "technique_id", "unknown learning technique")
		}
		logger.Sugar.Errorf("Failed to update note %s: %v", note.ID, err)
		return err
	}

	if tagIDs != nil {
		if err := syncTagsTx(tx, note.ID, *tagIDs); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Delete removes the note and its tag associations in one transaction.
func (r *NoteRepository) Delete(noteID string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tag_notes WHERE note_id = $1", noteID); err != nil {
		logger.Sugar.Errorf("Failed to detach tags of note %s: %v", noteID, err)
		return err
	}
	if _, err := tx.Exec("DELETE FROM notes WHERE id = $1", noteID); err != nil {
		logger.Sugar.Errorf("Failed to delete note %s: %v", noteID, err)
		return err
	}
	return tx.Commit()
}

// syncTagsTx diffs the note's current associations against the target set and
// applies additions and removals inside the caller's transaction, so readers
// never observe a half-synced tag set.
func syncTagsTx(tx *sql.Tx, noteID string, target []string) error {
	rows, err := tx.Query("SELECT tag_id FROM tag_notes WHERE note_id = $1", noteID)
	if err != nil {
		logger.Sugar.Errorf("Failed to read tag set of note %s: %v", noteID, err)
		return err
	}
	current := make(map[string]bool)
	for rows.Next() {
		var tagID string
		if err := rows.Scan(&tagID); err != nil {
			rows.Close()
			return err
		}
		current[tagID] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	wanted := make(map[string]bool, len(target))
	var toAdd []string
	for _, tagID := range target {
		if wanted[tagID] {
			continue // duplicate ids in the request collapse to one association
		}
		wanted[tagID] = true
		if !current[tagID] {
			toAdd = append(toAdd, tagID)
		}
	}
	var toRemove []string
	for tagID := range current {
		if !wanted[tagID] {
			toRemove = append(toRemove, tagID)
		}
	}
	sort.Strings(toAdd)
	sort.Strings(toRemove)

	if len(toRemove) > 0 {
		if _, err := tx.Exec("DELETE FROM tag_notes WHERE note_id = $1 AND tag_id = ANY($2)", noteID, pq.Array(toRemove)); err != nil {
			logger.Sugar.Errorf("Failed to detach tags from note %s: %v", noteID, err)
			return err
		}
	}
	for _, tagID := range toAdd {
		_, err := tx.Exec(
			`INSERT INTO tag_notes (id, tag_id, note_id, created_at, updated_at) VALUES ($1, $2, $3, NOW(), NOW())`,
			uuid.NewString(), tagID, noteID,
		)
		if err != nil {
			if apperr.IsForeignKeyViolation(err) {
				return apperr.WithField(apperr.Reference, "tag does not exist", "tags", "unknown tag: "+tagID)
			}
			logger.Sugar.Errorf("Failed to attach tag %s to note %s: %v", tagID, noteID, err)
			return err
		}
	}
	return nil
}

func (r *NoteRepository) loadTags(noteIDs []string) (map[string][]tagmodel.Tag, error) {
	rows, err := r.DB.Query(
		`SELECT tn.note_id, t.id, t.name, t.created_at, t.updated_at
		 FROM tag_notes tn JOIN tags t ON t.id = tn.tag_id
		 WHERE tn.note_id = ANY($1) ORDER BY t.name ASC`,
		pq.Array(noteIDs),
	)
	if err != nil {
		logger.Sugar.Errorf("Failed to load tags for notes: %v", err)
		return nil, err
	}
	defer rows.Close()

	byNote := make(map[string][]tagmodel.Tag)
	for rows.Next() {
		var (
			noteID string
			tag    tagmodel.Tag
		)
		if err := rows.Scan(&noteID, &tag.ID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
			return nil, err
		}
		byNote[noteID] = append(byNote[noteID], tag)
	}
	return byNote, rows.Err()
}
