package presentation

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio/internal/document"
)

func TestToDocumentDTO(t *testing.T) {
	doc := document.New("doc-1", "EpicSummaryView", "Payments", map[string]any{"title": "Payments"})
	doc.StampBundleHash("sha256:abc")
	doc.SetDependsOn([]string{"doc-0"})

	dto := ToDocumentDTO(doc)
	assert.Equal(t, "doc-1", dto.ID)
	assert.Equal(t, "EpicSummaryView", dto.Type)
	assert.Equal(t, "Payments", dto.Title)
	assert.Equal(t, "missing", dto.State)
	assert.Equal(t, "sha256:abc", dto.BundleHash)
	assert.Equal(t, []string{"doc-0"}, dto.DependsOn)
	assert.False(t, dto.CreatedAt.IsZero())
}

func TestWriteDocument(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)

	doc := document.New("doc-1", "EpicSummaryView", "Payments", nil)
	require.NoError(t, f.WriteDocument(doc))

	var dto DocumentDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &dto))
	assert.Equal(t, "doc-1", dto.ID)
	assert.Equal(t, "missing", dto.State)
}

func TestWriteDocumentsEmptyListIsArray(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)

	require.NoError(t, f.WriteDocuments(nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestWriteDocuments(t *testing.T) {
	var buf bytes.Buffer
	f := NewFormatter(&buf)

	docs := []*document.Document{
		document.New("a", "EpicSummaryView", "A", nil),
		document.New("b", "EpicSummaryView", "B", nil),
	}
	require.NoError(t, f.WriteDocuments(docs))

	var dtos []DocumentDTO
	require.NoError(t, json.Unmarshal(buf.Bytes(), &dtos))
	require.Len(t, dtos, 2)
	assert.Equal(t, "a", dtos[0].ID)
	assert.Equal(t, "b", dtos[1].ID)
}
