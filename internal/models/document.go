package models

import "time"

// Document is one row of the SQL-backed state store: a JSON body per key.
type Document struct {
	Key       string    `gorm:"primaryKey;size:64"`
	Body      string    `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

// TableName overrides the default pluralization
func (Document) TableName() string {
	return "state_documents"
}
