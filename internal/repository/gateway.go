package repository

import (
	"context"
	"errors"
	"fmt"

	"taskquest/internal/model"
)

// ErrCorruptDocument is returned by Load when the stored blob cannot be parsed
// or breaks a document invariant.
var ErrCorruptDocument = errors.New("corrupt document")

// Gateway loads and saves the whole document in a single durable slot.
// Writes are last-write-wins; there is no versioning.
type Gateway interface {
	// Load returns (nil, nil) when nothing is stored.
	Load(ctx context.Context) (*model.Document, error)
	Save(ctx context.Context, doc *model.Document) error
	Clear(ctx context.Context) error
}

func decodeBlob(data []byte) (*model.Document, error) {
	doc, err := model.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptDocument, err)
	}
	return doc, nil
}
