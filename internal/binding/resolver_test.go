package binding_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio/internal/binding"
	"github.com/foliohq/folio/internal/presentation"
	"github.com/foliohq/folio/internal/render"
	"github.com/foliohq/folio/internal/testutil"
)

func epicBlock() render.Block {
	return render.Block{
		Type: "schema:EpicV1",
		Key:  "overview:0",
		Data: map[string]any{"title": "Payments Epic"},
	}
}

func newResolver(t *testing.T) *binding.Resolver {
	t.Helper()
	return binding.NewResolver(
		testutil.ComponentRegistry(t),
		testutil.Fragments(),
		presentation.NewTemplateRenderer().Render,
	)
}

func TestResolveSuccess(t *testing.T) {
	m := newResolver(t).Resolve(epicBlock(), "web")

	assert.Equal(t, "overview:0", m.BlockKey)
	assert.Equal(t, "<epic>Payments Epic</epic>", m.Content)
	assert.False(t, m.Placeholder)
	assert.Equal(t, binding.FailureNone, m.Failure)
}

func TestResolveNoComponent(t *testing.T) {
	block := epicBlock()
	block.Type = "schema:UnknownV1"

	m := newResolver(t).Resolve(block, "web")
	assert.True(t, m.Placeholder)
	assert.Equal(t, binding.FailureNoComponent, m.Failure)
	assert.Equal(t, "Unsupported block schema:UnknownV1 (overview:0)", m.Content)
}

func TestResolveNoBindingForSurface(t *testing.T) {
	m := newResolver(t).Resolve(epicBlock(), "terminal")

	assert.True(t, m.Placeholder)
	assert.Equal(t, binding.FailureNoBinding, m.Failure)
	assert.Equal(t, "No binding for component:EpicSummary:1.0.0", m.Content)
}

func TestResolveFragmentNotFound(t *testing.T) {
	r := binding.NewResolver(
		testutil.ComponentRegistry(t),
		testutil.FragmentMap{}, // no fragments registered
		presentation.NewTemplateRenderer().Render,
	)

	m := r.Resolve(epicBlock(), "web")
	assert.True(t, m.Placeholder)
	assert.Equal(t, binding.FailureNoFragment, m.Failure)
	assert.Equal(t, "Binding not found: bind:epic-summary-web", m.Content)
}

func TestResolveRenderError(t *testing.T) {
	failing := func(string, map[string]any, map[string]any) (string, error) {
		return "", errors.New("boom")
	}
	r := binding.NewResolver(testutil.ComponentRegistry(t), testutil.Fragments(), failing)

	m := r.Resolve(epicBlock(), "web")
	assert.True(t, m.Placeholder)
	assert.Equal(t, binding.FailureRenderError, m.Failure)
	// The underlying error text never leaks into markup.
	assert.Equal(t, "Render error in bind:epic-summary-web", m.Content)
}

func TestResolveRecoversPanic(t *testing.T) {
	panicking := func(string, map[string]any, map[string]any) (string, error) {
		panic("template exploded")
	}
	r := binding.NewResolver(testutil.ComponentRegistry(t), testutil.Fragments(), panicking)

	m := r.Resolve(epicBlock(), "web")
	assert.True(t, m.Placeholder)
	assert.Equal(t, binding.FailureRenderError, m.Failure)
}

func TestResolveAllKeepsBlockOrder(t *testing.T) {
	b := render.NewBuilder(testutil.ComponentRegistry(t))
	model, err := b.Build(testutil.EpicSummaryDocDef(t), render.Input{
		DocumentID: "doc-1",
		Data:       testutil.EpicContent(),
	}, render.ModeStored)
	require.NoError(t, err)

	markups := newResolver(t).ResolveAll(model, "web")
	require.Len(t, markups, 3)

	assert.Equal(t, "overview:0", markups[0].BlockKey)
	assert.Equal(t, "stories:0", markups[1].BlockKey)
	assert.Equal(t, "stories:1", markups[2].BlockKey)
	assert.Equal(t, "<story>Tokenize cards</story>", markups[1].Content)
	assert.Equal(t, "<story>Retry failed charges</story>", markups[2].Content)
}

// A single failing block degrades alone; its neighbors still render.
func TestResolveAllIsolatesFailures(t *testing.T) {
	b := render.NewBuilder(testutil.ComponentRegistry(t))
	model, err := b.Build(testutil.EpicSummaryDocDef(t), render.Input{
		DocumentID: "doc-1",
		Data:       testutil.EpicContent(),
	}, render.ModeStored)
	require.NoError(t, err)

	fragments := testutil.Fragments()
	delete(fragments, "bind:story-card-web")
	r := binding.NewResolver(testutil.ComponentRegistry(t), fragments,
		presentation.NewTemplateRenderer().Render)

	markups := r.ResolveAll(model, "web")
	require.Len(t, markups, 3)
	assert.False(t, markups[0].Placeholder)
	assert.True(t, markups[1].Placeholder)
	assert.True(t, markups[2].Placeholder)
	assert.Equal(t, binding.FailureNoFragment, markups[1].Failure)
}
