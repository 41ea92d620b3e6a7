package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"taskquest/internal/model"
)

// DefaultSlotName is the row that holds the document in the slots table.
const DefaultSlotName = "document"

// SlotRepository keeps the document as one row of the slots table.
type SlotRepository struct {
	db   *gorm.DB
	name string
}

func NewSlotRepository(db *gorm.DB, name string) *SlotRepository {
	if name == "" {
		name = DefaultSlotName
	}
	return &SlotRepository{db: db, name: name}
}

func (r *SlotRepository) Load(ctx context.Context) (*model.Document, error) {
	var slot model.Slot
	err := r.db.WithContext(ctx).Where("name = ?", r.name).First(&slot).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("find slot: %w", err)
	}
	return decodeBlob([]byte(slot.Blob))
}

func (r *SlotRepository) Save(ctx context.Context, doc *model.Document) error {
	data, err := model.Encode(doc)
	if err != nil {
		return err
	}
	slot := model.Slot{Name: r.name, Blob: string(data)}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(&slot).Error; err != nil {
		return fmt.Errorf("save slot: %w", err)
	}
	return nil
}

func (r *SlotRepository) Clear(ctx context.Context) error {
	if err := r.db.WithContext(ctx).Where("name = ?", r.name).Delete(&model.Slot{}).Error; err != nil {
		return fmt.Errorf("clear slot: %w", err)
	}
	return nil
}
