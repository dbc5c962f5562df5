package domain

import "time"

// Note represents a single note in the system. Attachments are not
// modeled relationally; they live in the note's object storage
// namespace keyed by file name.
type Note struct {
	ID        string    `gorm:"type:text;primaryKey" json:"id"`
	Title     string    `gorm:"type:text;not null" json:"title"`
	Body      string    `gorm:"type:text" json:"body"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Note.
// Parameters: none.
// Returns:
//   - string: table name for GORM mapping.
func (Note) TableName() string {
	return "notes"
}
