// Package testutil provides shared fixtures: an in-memory document store
// and a small catalog (schemas, components, fragments, docdefs) used
// across package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio/internal/document"
	"github.com/foliohq/folio/internal/infrastructure/sqlite"
)

// NewTestDB creates an in-memory document database with migrations applied.
// It is closed automatically when the test finishes.
func NewTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	db, err := sqlite.NewMemoryDB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// NewTestRepo creates a document repository over a fresh in-memory database.
func NewTestRepo(t *testing.T) document.Repository {
	t.Helper()
	return NewTestDB(t).DocumentRepository()
}

// SaveDocument persists a document, failing the test on error.
func SaveDocument(t *testing.T, repo document.Repository, doc *document.Document) {
	t.Helper()
	require.NoError(t, repo.Save(doc))
}

// NewDocumentInState creates and saves a document forced into the given
// state, bypassing transition validation the way hydration does.
func NewDocumentInState(t *testing.T, repo document.Repository, id, docType string, state document.State) *document.Document {
	t.Helper()
	doc := document.New(id, docType, id, map[string]any{})
	doc.SetState(state)
	SaveDocument(t, repo, doc)
	return doc
}
