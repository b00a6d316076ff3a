package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio/internal/component"
	"github.com/foliohq/folio/internal/docdef"
	"github.com/foliohq/folio/internal/schema"
)

// FragmentMap is an in-memory fragment store keyed by binding id.
type FragmentMap map[string]string

// Fragment returns the fragment registered under a binding id.
func (m FragmentMap) Fragment(bindingID string) (string, bool) {
	f, ok := m[bindingID]
	return f, ok
}

// Fragments returns the fragment store matching the fixture components.
// Templates surface a single field so tests can assert on rendered output.
func Fragments() FragmentMap {
	return FragmentMap{
		"bind:epic-summary-web": "<epic>{{.Data.title}}</epic>",
		"bind:story-card-web":   "<story>{{.Data.title}}</story>",
	}
}

// EpicSchema returns schema:EpicV1: four summary-safe fields plus the six
// heavy collections.
func EpicSchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New("schema:EpicV1", []schema.Field{
		{Name: "title", Type: "string", Required: true},
		{Name: "status", Type: "string", Required: true},
		{Name: "owner", Type: "string"},
		{Name: "summary", Type: "string"},
		{Name: "risks", Type: "list"},
		{Name: "dependencies", Type: "list"},
		{Name: "stories", Type: "list"},
		{Name: "open_questions", Type: "list"},
		{Name: "requirements", Type: "list"},
		{Name: "acceptance_criteria", Type: "list"},
	})
	require.NoError(t, err)
	return s
}

// StorySchema returns schema:StoryV1.
func StorySchema(t *testing.T) *schema.Schema {
	t.Helper()
	s, err := schema.New("schema:StoryV1", []schema.Field{
		{Name: "title", Type: "string", Required: true},
		{Name: "status", Type: "string"},
		{Name: "points", Type: "number"},
	})
	require.NoError(t, err)
	return s
}

// SchemaRegistry returns a registry holding the Epic and Story schemas.
func SchemaRegistry(t *testing.T) *schema.Registry {
	t.Helper()
	reg := schema.NewRegistry()
	require.NoError(t, reg.Add(EpicSchema(t)))
	require.NoError(t, reg.Add(StorySchema(t)))
	return reg
}

// EpicSummaryComponent returns the canonical component for schema:EpicV1.
func EpicSummaryComponent(t *testing.T) *component.Component {
	t.Helper()
	c, err := component.New(
		"component:EpicSummary:1.0.0",
		"schema:EpicV1",
		[]string{"Summarize the epic in one compact block."},
		map[string]string{"web": "bind:epic-summary-web"},
	)
	require.NoError(t, err)
	return c
}

// StoryCardComponent returns the canonical component for schema:StoryV1.
func StoryCardComponent(t *testing.T) *component.Component {
	t.Helper()
	c, err := component.New(
		"component:StoryCard:1.0.0",
		"schema:StoryV1",
		[]string{"Render one story as a card."},
		map[string]string{"web": "bind:story-card-web"},
	)
	require.NoError(t, err)
	return c
}

// ComponentRegistry returns a registry holding the fixture components.
func ComponentRegistry(t *testing.T) *component.Registry {
	t.Helper()
	reg := component.NewRegistry()
	require.NoError(t, reg.Add(EpicSummaryComponent(t)))
	require.NoError(t, reg.Add(StoryCardComponent(t)))
	return reg
}

// HeavyCollections lists the collection fields a summary must exclude.
var HeavyCollections = []string{
	"risks", "dependencies", "stories", "open_questions", "requirements", "acceptance_criteria",
}

// EpicSummaryDocDef returns an accepted docdef for the EpicSummaryView
// document type: a summary section with a derived risk level plus a
// repeating story section.
func EpicSummaryDocDef(t *testing.T) *docdef.DocDef {
	t.Helper()
	d, err := docdef.New("docdef:EpicSummaryView:1.0.0", "Epic Summary", docdef.StatusAccepted,
		[]docdef.SectionSpec{
			{
				ID:            "overview",
				Title:         "Overview",
				Order:         1,
				ComponentID:   "component:EpicSummary:1.0.0",
				Shape:         docdef.ShapeSingle,
				SourcePointer: "/",
				ExcludeFields: HeavyCollections,
				Derived:       []string{"risk_level"},
				DetailRef: &docdef.DetailRefTemplate{
					DocumentType: "EpicDetailView",
					Params:       map[string]string{"epic": "/title"},
				},
			},
			{
				ID:            "stories",
				Title:         "Stories",
				Order:         2,
				ComponentID:   "component:StoryCard:1.0.0",
				Shape:         docdef.ShapeRepeat,
				SourcePointer: "/stories",
			},
		})
	require.NoError(t, err)
	return d
}

// DocDefRegistry returns a registry holding the EpicSummaryView docdef.
func DocDefRegistry(t *testing.T) *docdef.Registry {
	t.Helper()
	reg := docdef.NewRegistry()
	require.NoError(t, reg.Add(EpicSummaryDocDef(t)))
	return reg
}

// EpicContent returns sample document content with one high-severity risk
// and two stories.
func EpicContent() map[string]any {
	return map[string]any{
		"title":   "Payments Epic",
		"status":  "active",
		"owner":   "dana",
		"summary": "Modernize the payments flow.",
		"risks": []any{
			map[string]any{"likelihood": "high", "note": "PCI scope grows"},
			map[string]any{"likelihood": "low", "note": "minor churn"},
		},
		"dependencies": []any{
			map[string]any{"on": "LedgerService"},
		},
		"stories": []any{
			map[string]any{"title": "Tokenize cards", "status": "open", "points": 5},
			map[string]any{"title": "Retry failed charges", "status": "open", "points": 3},
		},
		"open_questions":      []any{},
		"requirements":        []any{map[string]any{"text": "Support 3DS"}},
		"acceptance_criteria": []any{map[string]any{"text": "All charges idempotent"}},
	}
}
