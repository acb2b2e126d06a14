package model

import "time"

// Technique is a catalog entry describing a study method. Reference data:
// read-only from the API's perspective, maintained through migrations.
type Technique struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ShortDesc    string    `json:"short_desc"`
	DetailedDesc string    `json:"detailed_desc"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
