package model

import (
	"fmt"

	"github.com/bytedance/sonic"
)

// Encode serializes doc into the persisted JSON layout.
func Encode(doc *Document) ([]byte, error) {
	if doc == nil {
		doc = New()
	}
	data, err := sonic.ConfigStd.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}
	return data, nil
}

// Decode parses and validates a persisted document. Null collections decode
// as empty ones.
func Decode(data []byte) (*Document, error) {
	var doc Document
	if err := sonic.ConfigStd.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	doc.normalize()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}
