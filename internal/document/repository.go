package document

// ListFilter narrows List results.
type ListFilter struct {
	Type  string // filter by document type, empty for all
	State State  // filter by lifecycle state, empty for all
	Limit int    // 0 for no limit
}

// Repository abstracts document persistence. Implementations must make
// CompareAndSwapState atomic with respect to concurrent transitions on the
// same document id (single-writer-per-document discipline).
type Repository interface {
	// Save persists a document, inserting or replacing by id.
	Save(doc *Document) error

	// FindByID retrieves a document by id.
	// Returns NotFoundError if no matching document exists.
	FindByID(id string) (*Document, error)

	// List retrieves documents matching the filter, newest first.
	List(filter ListFilter) ([]*Document, error)

	// CompareAndSwapState transitions a document's state only if its
	// stored state equals from. Returns InvalidTransitionError carrying
	// the stored state when the precondition fails, NotFoundError when
	// the document does not exist.
	CompareAndSwapState(id string, from, to State) error

	// Dependents returns the ids of documents whose declared dependency
	// set includes the given id.
	Dependents(id string) ([]string, error)

	// Delete removes a document and its dependency edges.
	Delete(id string) error

	// Close releases any resources held by the repository.
	Close() error
}
