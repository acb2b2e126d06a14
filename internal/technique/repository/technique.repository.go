package repository

import (
	"database/sql"

	"learn2learn/internal/technique/model"
	"learn2learn/pkg/apperr"
	"learn2learn/pkg/logger"
)

type TechniqueRepository struct {
	DB *sql.DB
}

func NewTechniqueRepository(db *sql.DB) *TechniqueRepository {
	return &TechniqueRepository{DB: db}
}

func (r *TechniqueRepository) List() ([]model.Technique, error) {
	rows, err := r.DB.Query(
		"SELECT id, name, short_desc, detailed_desc, created_at, updated_at FROM learning_technics ORDER BY name ASC",
	)
	if err != nil {
		logger.Sugar.Errorf("Failed to list learning techniques: %v", err)
		return nil, err
	}
	defer rows.Close()

	techniques := []model.Technique{}
	for rows.Next() {
		var t model.Technique
		if err := rows.Scan(&t.ID, &t.Name, &t.ShortDesc, &t.DetailedDesc, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		techniques = append(techniques, t)
	}
	return techniques, rows.Err()
}

func (r *TechniqueRepository) GetByID(techniqueID string) (*model.Technique, error) {
	var t model.Technique
	err := r.DB.QueryRow(
		"SELECT id, name, short_desc, detailed_desc, created_at, updated_at FROM learning_technics WHERE id = $1",
		techniqueID,
	).Scan(&t.ID, &t.Name, &t.ShortDesc, &t.DetailedDesc, &t.CreatedAt, &t.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, apperr.New(apperr.NotFound, "learning technique not found")
	}
	if err != nil {
		logger.Sugar.Errorf("Failed to get learning technique %s: %v", techniqueID, err)
		return nil, err
	}
	return &t, nil
}
