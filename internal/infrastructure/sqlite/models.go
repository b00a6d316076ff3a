package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/foliohq/folio/internal/document"
)

// documentModel is the flat database representation of a document row.
// Content is stored as a JSON blob; dependency edges live in their own
// table and are attached during hydration.
type documentModel struct {
	ID         string
	DocType    string
	Title      string
	Content    string
	BundleHash string
	State      string
	CreatedAt  int64
	UpdatedAt  int64
}

func toModel(doc *document.Document) (*documentModel, error) {
	content := doc.Content()
	if content == nil {
		content = map[string]any{}
	}
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, fmt.Errorf("encode document content: %w", err)
	}
	return &documentModel{
		ID:         doc.ID(),
		DocType:    doc.Type(),
		Title:      doc.Title(),
		Content:    string(raw),
		BundleHash: doc.BundleHash(),
		State:      string(doc.State()),
		CreatedAt:  doc.CreatedAt().Unix(),
		UpdatedAt:  doc.UpdatedAt().Unix(),
	}, nil
}

func (m *documentModel) toDomain(dependsOn []string) (*document.Document, error) {
	var content map[string]any
	if m.Content != "" {
		if err := json.Unmarshal([]byte(m.Content), &content); err != nil {
			return nil, fmt.Errorf("decode content for document %s: %w", m.ID, err)
		}
	}
	return document.Reconstitute(
		m.ID,
		m.DocType,
		m.Title,
		content,
		m.BundleHash,
		document.State(m.State),
		dependsOn,
		time.Unix(m.CreatedAt, 0),
		time.Unix(m.UpdatedAt, 0),
	), nil
}
