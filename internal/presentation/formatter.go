package presentation

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/foliohq/folio/internal/composer"
	"github.com/foliohq/folio/internal/document"
)

// DocumentDTO is the externally visible shape of a document.
type DocumentDTO struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	State      string    `json:"state"`
	BundleHash string    `json:"schema_bundle_hash,omitempty"`
	DependsOn  []string  `json:"depends_on,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToDocumentDTO converts a domain document into its DTO.
func ToDocumentDTO(doc *document.Document) DocumentDTO {
	return DocumentDTO{
		ID:         doc.ID(),
		Type:       doc.Type(),
		Title:      doc.Title(),
		State:      doc.State().String(),
		BundleHash: doc.BundleHash(),
		DependsOn:  doc.DependsOn(),
		CreatedAt:  doc.CreatedAt(),
		UpdatedAt:  doc.UpdatedAt(),
	}
}

// Formatter writes CLI output as indented JSON.
type Formatter struct {
	out io.Writer
}

// NewFormatter creates a formatter writing to out.
func NewFormatter(out io.Writer) *Formatter {
	return &Formatter{out: out}
}

// WriteDocuments emits a document list.
func (f *Formatter) WriteDocuments(docs []*document.Document) error {
	dtos := make([]DocumentDTO, 0, len(docs))
	for _, doc := range docs {
		dtos = append(dtos, ToDocumentDTO(doc))
	}
	return f.writeJSON(dtos)
}

// WriteDocument emits a single document.
func (f *Formatter) WriteDocument(doc *document.Document) error {
	return f.writeJSON(ToDocumentDTO(doc))
}

// WriteResult emits a render result: model, markup, and degradation banner.
func (f *Formatter) WriteResult(result *composer.Result) error {
	return f.writeJSON(result)
}

func (f *Formatter) writeJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = fmt.Fprintln(f.out, string(b))
	return err
}
