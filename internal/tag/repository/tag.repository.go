package repository

import (
	"database/sql"

	"learn2learn/internal/tag/model"
	"learn2learn/pkg/apperr"
	"learn2learn/pkg/logger"
	"learn2learn/pkg/pagination"
)

type TagRepository struct {
	DB *sql.DB
}

func NewTagRepository(db *sql.DB) *TagRepository {
	return &TagRepository{DB: db}
}

// Create inserts the tag. Name uniqueness is the unique index's job; the
// constraint violation is translated here rather than pre-checked, so two
// concurrent creates of the same name race cleanly.
func (r *TagRepository) Create(tag *model.Tag) error {
	err := r.DB.QueryRow(
		`INSERT INTO tags (id, name, created_at, updated_at) VALUES ($1, $2, NOW(), NOW())
		 RETURNING created_at, updated_at`,
		tag.ID, tag.Name,
	).Scan(&tag.CreatedAt, &tag.UpdatedAt)
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return apperr.WithField(apperr.Conflict, "tag name is already taken", "name", "has already been taken")
		}
		logger.Sugar.Errorf("Failed to create tag: %v", err)
		return err
	}
	return nil
}

// GetByID returns one tag without its count.
func (r *TagRepository) GetByID(tagID string) (*model.Tag, error) {
	var tag model.Tag
	err := r.DB.QueryRow(
		"SELECT id, name, created_at, updated_at FROM tags WHERE id = $1", tagID,
	).Scan(&tag.ID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "tag not found")
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get tag %s: %v", tagID, err)
		return nil, err
	}
	return &tag, nil
}

// List returns up to limit tags ordered by name, optionally with live
// association counts, keyset-paginated on the unique name.
func (r *TagRepository) List(withCounts bool, cursor *pagination.NameCursor, limit int) ([]model.Tag, error) {
	query := "SELECT t.id, t.name, t.created_at, t.updated_at FROM tags t"
	if withCounts {
		query = `SELECT t.id, t.name, t.created_at, t.updated_at, COUNT(tn.id) AS notes_count
		 FROM tags t LEFT JOIN tag_notes tn ON tn.tag_id = t.id`
	}
	args := []any{}
	if cursor != nil {
		args = append(args, cursor.Name)
		query += " WHERE t.name > $1"
	}
	if withCounts {
		query += " GROUP BY t.id, t.name, t.created_at, t.updated_at"
	}
	if cursor != nil {
		query += " ORDER BY t.name ASC LIMIT $2"
	} else {
		query += " ORDER BY t.name ASC LIMIT $1"
	}
	args = append(args, limit)

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		logger.Sugar.Errorf("Failed to list tags: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows, withCounts)
}

// Update renames the tag. The unique index ignores the row's own current
// name, so renaming a tag to itself is not a conflict.
func (r *TagRepository) Update(tag *model.Tag) error {
	err := r.DB.QueryRow(
		"UPDATE tags SET name = $1, updated_at = NOW() WHERE id = $2 RETURNING created_at, updated_at",
		tag.Name, tag.ID,
	).Scan(&tag.CreatedAt, &tag.UpdatedAt)
	if err == sql.ErrNoRows {
		return apperr.New(apperr.NotFound, "tag not found")
	}
	if err != nil {
		if apperr.IsUniqueViolation(err) {
			return apperr.WithField(apperr.Conflict, "tag name is already taken", "name", "has already been taken")
		}
		logger.Sugar.Errorf("Failed to update tag %s: %v", tag.ID, err)
		return err
	}
	return nil
}

// Delete detaches every association and then removes the tag, in one
// transaction. Attached notes never block deletion; they just lose the label.
func (r *TagRepository) Delete(tagID string) error {
	tx, err := r.DB.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM tag_notes WHERE tag_id = $1", tagID); err != nil {
		logger.Sugar.Errorf("Failed to detach notes from tag %s: %v", tagID, err)
		return err
	}
	res, err := tx.Exec("DELETE FROM tags WHERE id = $1", tagID)
	if err != nil {
		logger.Sugar.Errorf("Failed to delete tag %s: %v", tagID, err)
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperr.New(apperr.NotFound, "tag not found")
	}
	return tx.Commit()
}

// Popular returns every tag ordered by descending association count, ties
// broken by tag id so the order is deterministic.
func (r *TagRepository) Popular() ([]model.Tag, error) {
	rows, err := r.DB.Query(
		`SELECT t.id, t.name, t.created_at, t.updated_at, COUNT(tn.id) AS notes_count
		 FROM tags t LEFT JOIN tag_notes tn ON tn.tag_id = t.id
		 GROUP BY t.id, t.name, t.created_at, t.updated_at
		 ORDER BY notes_count DESC, t.id ASC`,
	)
	if err != nil {
		logger.Sugar.Errorf("Failed to list popular tags: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows, true)
}

// Unused returns tags with no associated notes.
func (r *TagRepository) Unused() ([]model.Tag, error) {
	rows, err := r.DB.Query(
		`SELECT t.id, t.name, t.created_at, t.updated_at FROM tags t
		 LEFT JOIN tag_notes tn ON tn.tag_id = t.id
		 WHERE tn.id IS NULL ORDER BY t.name ASC`,
	)
	if err != nil {
		logger.Sugar.Errorf("Failed to list unused tags: %v", err)
		return nil, err
	}
	defer rows.Close()
	return scanTags(rows, false)
}

func scanTags(rows *sql.Rows, withCounts bool) ([]model.Tag, error) {
	tags := []model.Tag{}
	for rows.Next() {
		var tag model.Tag
		if withCounts {
			var count int64
			if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt, &count); err != nil {
				return nil, err
			}
			tag.NotesCount = &count
		} else {
			if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt, &tag.UpdatedAt); err != nil {
				return nil, err
			}
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}
