package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foliohq/folio/internal/document"
	"github.com/foliohq/folio/internal/log"
)

// documentRepository is the SQLite implementation of document.Repository.
type documentRepository struct {
	conn *sql.DB
}

func newDocumentRepository(conn *sql.DB) *documentRepository {
	return &documentRepository{conn: conn}
}

const documentColumns = `id, doc_type, title, content, bundle_hash, state, created_at, updated_at`

// Save upserts the document row and replaces its dependency edges in a
// single transaction.
func (r *documentRepository) Save(doc *document.Document) error {
	model, err := toModel(doc)
	if err != nil {
		return err
	}

	tx, err := r.conn.Begin()
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO documents (`+documentColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			doc_type = excluded.doc_type,
			title = excluded.title,
			content = excluded.content,
			bundle_hash = excluded.bundle_hash,
			state = excluded.state,
			updated_at = excluded.updated_at`,
		model.ID, model.DocType, model.Title, model.Content,
		model.BundleHash, model.State, model.CreatedAt, model.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save document %s: %w", model.ID, err)
	}

	if _, err := tx.Exec(
		`DELETE FROM document_dependencies WHERE document_id = ?`, model.ID); err != nil {
		return fmt.Errorf("clear dependencies for %s: %w", model.ID, err)
	}
	for _, dep := range doc.DependsOn() {
		if _, err := tx.Exec(
			`INSERT INTO document_dependencies (document_id, depends_on_id) VALUES (?, ?)`,
			model.ID, dep); err != nil {
			return fmt.Errorf("save dependency %s -> %s: %w", model.ID, dep, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	log.Debug(log.CatDB, "document saved", "doc_id", model.ID, "state", model.State)
	return nil
}

func (r *documentRepository) FindByID(id string) (*document.Document, error) {
	row := r.conn.QueryRow(
		`SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)

	var m documentModel
	err := row.Scan(&m.ID, &m.DocType, &m.Title, &m.Content,
		&m.BundleHash, &m.State, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &document.NotFoundError{ID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("find document %s: %w", id, err)
	}

	deps, err := r.dependsOn(id)
	if err != nil {
		return nil, err
	}
	return m.toDomain(deps)
}

func (r *documentRepository) List(filter document.ListFilter) ([]*document.Document, error) {
	var conditions []string
	var args []any
	if filter.Type != "" {
		conditions = append(conditions, "doc_type = ?")
		args = append(args, filter.Type)
	}
	if filter.State != "" {
		conditions = append(conditions, "state = ?")
		args = append(args, string(filter.State))
	}

	query := `SELECT ` + documentColumns + ` FROM documents`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	query += ` ORDER BY updated_at DESC, id ASC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var docs []*document.Document
	for rows.Next() {
		var m documentModel
		if err := rows.Scan(&m.ID, &m.DocType, &m.Title, &m.Content,
			&m.BundleHash, &m.State, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document row: %w", err)
		}
		deps, err := r.dependsOn(m.ID)
		if err != nil {
			return nil, err
		}
		doc, err := m.toDomain(deps)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// CompareAndSwapState performs the transition as a single conditional
// UPDATE so concurrent writers cannot both observe the same precondition.
func (r *documentRepository) CompareAndSwapState(id string, from, to document.State) error {
	res, err := r.conn.Exec(
		`UPDATE documents SET state = ?, updated_at = ? WHERE id = ? AND state = ?`,
		string(to), time.Now().Unix(), id, string(from))
	if err != nil {
		return fmt.Errorf("transition document %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition document %s: %w", id, err)
	}
	if affected > 0 {
		return nil
	}

	// Precondition failed: distinguish a missing row from a raced state.
	var current string
	err = r.conn.QueryRow(`SELECT state FROM documents WHERE id = ?`, id).Scan(&current)
	if errors.Is(err, sql.ErrNoRows) {
		return &document.NotFoundError{ID: id}
	}
	if err != nil {
		return fmt.Errorf("read state of document %s: %w", id, err)
	}
	return &document.InvalidTransitionError{
		ID:      id,
		From:    from,
		To:      to,
		Current: document.State(current),
	}
}

func (r *documentRepository) Dependents(id string) ([]string, error) {
	rows, err := r.conn.Query(
		`SELECT document_id FROM document_dependencies WHERE depends_on_id = ? ORDER BY document_id`,
		id)
	if err != nil {
		return nil, fmt.Errorf("list dependents of %s: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var dep string
		if err := rows.Scan(&dep); err != nil {
			return nil, fmt.Errorf("scan dependent row: %w", err)
		}
		ids = append(ids, dep)
	}
	return ids, rows.Err()
}

func (r *documentRepository) Delete(id string) error {
	res, err := r.conn.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	if affected == 0 {
		return &document.NotFoundError{ID: id}
	}
	return nil
}

// Close is a no-op; the connection is owned by DB.
func (r *documentRepository) Close() error {
	return nil
}

func (r *documentRepository) dependsOn(id string) ([]string, error) {
	rows, err := r.conn.Query(
		`SELECT depends_on_id FROM document_dependencies WHERE document_id = ? ORDER BY depends_on_id`,
		id)
	if err != nil {
		return nil, fmt.Errorf("list dependencies of %s: %w", id, err)
	}
	defer func() { _ = rows.Close() }()

	var ids []string
	for rows.Next() {
		var dep string
		if err := rows.Scan(&dep); err != nil {
			return nil, fmt.Errorf("scan dependency row: %w", err)
		}
		ids = append(ids, dep)
	}
	return ids, rows.Err()
}
