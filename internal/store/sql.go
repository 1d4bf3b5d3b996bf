package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"myradio/internal/models"
)

// SQLBackend stores documents as rows of the state_documents table.
// Each Save is a single upsert statement, so readers see whole bodies.
type SQLBackend struct {
	db *gorm.DB
}

func NewSQLBackend(db *gorm.DB) *SQLBackend {
	return &SQLBackend{db: db}
}

func (b *SQLBackend) Load(ctx context.Context, doc Document) ([]byte, error) {
	var row models.Document
	err := b.db.WithContext(ctx).Where(&models.Document{Key: string(doc)}).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(row.Body), nil
}

func (b *SQLBackend) Save(ctx context.Context, doc Document, body []byte) error {
	row := models.Document{Key: string(doc), Body: string(body)}
	return b.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"body", "updated_at"}),
	}).Create(&row).Error
}
