package sqlite_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio/internal/document"
	"github.com/foliohq/folio/internal/testutil"
)

func TestSaveAndFindRoundTrip(t *testing.T) {
	repo := testutil.NewTestRepo(t)

	doc := document.New("doc-1", "EpicSummaryView", "Payments Epic", map[string]any{
		"title":   "Payments Epic",
		"stories": []any{map[string]any{"title": "Tokenize cards", "points": float64(5)}},
	})
	doc.StampBundleHash("sha256:abc")
	doc.SetDependsOn([]string{"doc-0"})
	testutil.SaveDocument(t, repo, doc)

	got, err := repo.FindByID("doc-1")
	require.NoError(t, err)

	assert.Equal(t, "doc-1", got.ID())
	assert.Equal(t, "EpicSummaryView", got.Type())
	assert.Equal(t, "Payments Epic", got.Title())
	assert.Equal(t, "sha256:abc", got.BundleHash())
	assert.Equal(t, document.StateMissing, got.State())
	assert.Equal(t, []string{"doc-0"}, got.DependsOn())
	assert.Equal(t, "Payments Epic", got.Content()["title"])

	stories, ok := got.Content()["stories"].([]any)
	require.True(t, ok)
	require.Len(t, stories, 1)
}

func TestSaveUpsertsByID(t *testing.T) {
	repo := testutil.NewTestRepo(t)

	doc := document.New("doc-1", "EpicSummaryView", "v1", nil)
	doc.SetDependsOn([]string{"a", "b"})
	testutil.SaveDocument(t, repo, doc)

	doc.SetTitle("v2")
	doc.SetDependsOn([]string{"c"})
	testutil.SaveDocument(t, repo, doc)

	got, err := repo.FindByID("doc-1")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title())
	assert.Equal(t, []string{"c"}, got.DependsOn())

	// The replaced edges are really gone.
	deps, err := repo.Dependents("a")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestFindByIDNotFound(t *testing.T) {
	repo := testutil.NewTestRepo(t)

	_, err := repo.FindByID("ghost")
	var nf *document.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "ghost", nf.ID)
}

func TestListFilters(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	testutil.NewDocumentInState(t, repo, "epic-1", "EpicSummaryView", document.StateComplete)
	testutil.NewDocumentInState(t, repo, "epic-2", "EpicSummaryView", document.StateStale)
	testutil.NewDocumentInState(t, repo, "story-1", "StoryBoardView", document.StateComplete)

	all, err := repo.List(document.ListFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	epics, err := repo.List(document.ListFilter{Type: "EpicSummaryView"})
	require.NoError(t, err)
	assert.Len(t, epics, 2)

	complete, err := repo.List(document.ListFilter{State: document.StateComplete})
	require.NoError(t, err)
	assert.Len(t, complete, 2)

	both, err := repo.List(document.ListFilter{Type: "EpicSummaryView", State: document.StateStale})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "epic-2", both[0].ID())

	limited, err := repo.List(document.ListFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestCompareAndSwapState(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	testutil.NewDocumentInState(t, repo, "doc-1", "EpicSummaryView", document.StateMissing)

	require.NoError(t, repo.CompareAndSwapState("doc-1", document.StateMissing, document.StateGenerating))

	got, err := repo.FindByID("doc-1")
	require.NoError(t, err)
	assert.Equal(t, document.StateGenerating, got.State())
}

func TestCompareAndSwapStatePreconditionFails(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	testutil.NewDocumentInState(t, repo, "doc-1", "EpicSummaryView", document.StateStale)

	err := repo.CompareAndSwapState("doc-1", document.StateComplete, document.StateStale)
	var inv *document.InvalidTransitionError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, document.StateComplete, inv.From)
	assert.Equal(t, document.StateStale, inv.Current)

	// Stored state is untouched.
	got, err := repo.FindByID("doc-1")
	require.NoError(t, err)
	assert.Equal(t, document.StateStale, got.State())
}

func TestCompareAndSwapStateNotFound(t *testing.T) {
	repo := testutil.NewTestRepo(t)

	err := repo.CompareAndSwapState("ghost", document.StateMissing, document.StateGenerating)
	var nf *document.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestCompareAndSwapStateBumpsUpdatedAt(t *testing.T) {
	repo := testutil.NewTestRepo(t)
	doc := testutil.NewDocumentInState(t, repo, "doc-1", "EpicSummaryView", document.StateComplete)
	before := doc.UpdatedAt().Truncate(time.Second)

	time.Sleep(1100 * time.Millisecond) // second-granularity timestamps

	require.NoError(t, repo.CompareAndSwapState("doc-1", document.StateComplete, document.StateStale))
	got, err := repo.FindByID("doc-1")
	require.NoError(t, err)
	assert.True(t, got.UpdatedAt().After(before))
}

func TestDependents(t *testing.T) {
	repo := testutil.NewTestRepo(t)

	root := document.New("root", "EpicSummaryView", "root", nil)
	testutil.SaveDocument(t, repo, root)

	childA := document.New("child-a", "StoryBoardView", "a", nil)
	childA.SetDependsOn([]string{"root"})
	testutil.SaveDocument(t, repo, childA)

	childB := document.New("child-b", "StoryBoardView", "b", nil)
	childB.SetDependsOn([]string{"root", "child-a"})
	testutil.SaveDocument(t, repo, childB)

	deps, err := repo.Dependents("root")
	require.NoError(t, err)
	assert.Equal(t, []string{"child-a", "child-b"}, deps)

	deps, err = repo.Dependents("child-b")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestDeleteRemovesDocumentAndEdges(t *testing.T) {
	repo := testutil.NewTestRepo(t)

	root := document.New("root", "EpicSummaryView", "root", nil)
	testutil.SaveDocument(t, repo, root)
	child := document.New("child", "StoryBoardView", "child", nil)
	child.SetDependsOn([]string{"root"})
	testutil.SaveDocument(t, repo, child)

	require.NoError(t, repo.Delete("child"))

	_, err := repo.FindByID("child")
	var nf *document.NotFoundError
	require.ErrorAs(t, err, &nf)

	deps, err := repo.Dependents("root")
	require.NoError(t, err)
	assert.Empty(t, deps)
}

func TestDeleteNotFound(t *testing.T) {
	repo := testutil.NewTestRepo(t)

	err := repo.Delete("ghost")
	var nf *document.NotFoundError
	require.ErrorAs(t, err, &nf)
}
