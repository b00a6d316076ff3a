package render_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio/internal/docdef"
	"github.com/foliohq/folio/internal/render"
	"github.com/foliohq/folio/internal/testutil"
)

func buildEpic(t *testing.T, data map[string]any) *render.RenderModel {
	t.Helper()
	b := render.NewBuilder(testutil.ComponentRegistry(t))
	model, err := b.Build(testutil.EpicSummaryDocDef(t), render.Input{
		DocumentID: "doc-1",
		Data:       data,
		BundleHash: "sha256:abc",
	}, render.ModeStored)
	require.NoError(t, err)
	return model
}

func TestBuildEnvelope(t *testing.T) {
	model := buildEpic(t, testutil.EpicContent())

	assert.Equal(t, "doc-1", model.DocumentID)
	assert.Equal(t, "EpicSummaryView", model.DocumentType)
	assert.Equal(t, "Epic Summary", model.Title) // docdef title when input has none
	assert.Equal(t, "sha256:abc", model.SchemaBundleHash)
	require.Len(t, model.Sections, 2)
	assert.Equal(t, 3, model.BlockCount)
}

func TestBuildSummarySection(t *testing.T) {
	model := buildEpic(t, testutil.EpicContent())

	overview := model.Sections[0]
	assert.Equal(t, "overview", overview.ID)
	require.Len(t, overview.Blocks, 1)

	block := overview.Blocks[0]
	assert.Equal(t, "schema:EpicV1", block.Type)
	assert.Equal(t, "overview:0", block.Key)

	// Heavy collections are stripped from the payload.
	for _, field := range testutil.HeavyCollections {
		assert.NotContains(t, block.Data, field, "field %s should be excluded", field)
	}
	assert.Equal(t, "Payments Epic", block.Data["title"])

	// Derived fields see the collections before exclusion strips them.
	assert.Equal(t, "high", block.Data["risk_level"])

	ref, ok := block.Data[render.DetailRefKey].(render.DetailRef)
	require.True(t, ok)
	assert.Equal(t, "EpicDetailView", ref.DocumentType)
	assert.Equal(t, "/view/EpicDetailView?epic=Payments+Epic", ref.URL())
}

func TestBuildRepeatSection(t *testing.T) {
	model := buildEpic(t, testutil.EpicContent())

	stories := model.Sections[1]
	assert.Equal(t, "stories", stories.ID)
	require.Len(t, stories.Blocks, 2)

	assert.Equal(t, "stories:0", stories.Blocks[0].Key)
	assert.Equal(t, "stories:1", stories.Blocks[1].Key)
	assert.Equal(t, "schema:StoryV1", stories.Blocks[0].Type)
	assert.Equal(t, "Tokenize cards", stories.Blocks[0].Data["title"])
	assert.Equal(t, "Retry failed charges", stories.Blocks[1].Data["title"])
}

func TestRepeatSkipsNilElementsKeepingContiguousKeys(t *testing.T) {
	data := testutil.EpicContent()
	data["stories"] = []any{
		map[string]any{"title": "first"},
		nil,
		map[string]any{"title": "third"},
	}

	model := buildEpic(t, data)
	stories := model.Sections[1]
	require.Len(t, stories.Blocks, 2)
	assert.Equal(t, "stories:0", stories.Blocks[0].Key)
	assert.Equal(t, "stories:1", stories.Blocks[1].Key)
	assert.Equal(t, "third", stories.Blocks[1].Data["title"])
}

func TestSectionsWithNoDataAreOmitted(t *testing.T) {
	data := testutil.EpicContent()
	data["stories"] = []any{}

	model := buildEpic(t, data)
	require.Len(t, model.Sections, 1)
	assert.Equal(t, "overview", model.Sections[0].ID)

	delete(data, "stories")
	model = buildEpic(t, data)
	require.Len(t, model.Sections, 1)
}

func TestContainerShape(t *testing.T) {
	def, err := docdef.New("docdef:RiskBoard:1.0.0", "Risk Board", docdef.StatusAccepted,
		[]docdef.SectionSpec{{
			ID:            "risks",
			Title:         "Risks",
			Order:         1,
			ComponentID:   "component:EpicSummary:1.0.0",
			Shape:         docdef.ShapeContainer,
			SourcePointer: "/risks",
			ExcludeFields: []string{"note"},
		}})
	require.NoError(t, err)

	b := render.NewBuilder(testutil.ComponentRegistry(t))
	model, err := b.Build(def, render.Input{DocumentID: "doc-2", Data: testutil.EpicContent()}, render.ModeStored)
	require.NoError(t, err)

	require.Len(t, model.Sections, 1)
	require.Len(t, model.Sections[0].Blocks, 1)

	block := model.Sections[0].Blocks[0]
	assert.Equal(t, "risks:0", block.Key)
	items, ok := block.Data["items"].([]any)
	require.True(t, ok)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "high", first["likelihood"])
	assert.NotContains(t, first, "note")
}

func TestRepeatOverIndirection(t *testing.T) {
	def, err := docdef.New("docdef:StoryBoard:1.0.0", "Story Board", docdef.StatusAccepted,
		[]docdef.SectionSpec{{
			ID:            "cards",
			Title:         "Cards",
			Order:         1,
			ComponentID:   "component:StoryCard:1.0.0",
			Shape:         docdef.ShapeRepeat,
			SourcePointer: "/board",
			RepeatOver:    "/stories",
		}})
	require.NoError(t, err)

	data := map[string]any{
		"board": map[string]any{
			"stories": []any{map[string]any{"title": "only"}},
		},
	}

	b := render.NewBuilder(testutil.ComponentRegistry(t))
	model, err := b.Build(def, render.Input{DocumentID: "doc-3", Data: data}, render.ModeStored)
	require.NoError(t, err)
	require.Len(t, model.Sections, 1)
	require.Len(t, model.Sections[0].Blocks, 1)
	assert.Equal(t, "cards:0", model.Sections[0].Blocks[0].Key)
}

func TestBuildIsDeterministic(t *testing.T) {
	a := buildEpic(t, testutil.EpicContent())
	b := buildEpic(t, testutil.EpicContent())
	assert.Equal(t, a, b)
}

func TestPreviewModeDerivesDocumentID(t *testing.T) {
	b := render.NewBuilder(testutil.ComponentRegistry(t))
	params := map[string]any{"epic": "Payments Epic"}

	model, err := b.Build(testutil.EpicSummaryDocDef(t), render.Input{
		Params: params,
		Data:   testutil.EpicContent(),
	}, render.ModePreview)
	require.NoError(t, err)

	assert.Equal(t, render.PreviewID("EpicSummaryView", params), model.DocumentID)
}

func TestBuildUnknownComponent(t *testing.T) {
	def, err := docdef.New("docdef:Ghost:1.0.0", "Ghost", docdef.StatusAccepted,
		[]docdef.SectionSpec{{
			ID: "s", Order: 1, ComponentID: "component:Missing:1.0.0",
			Shape: docdef.ShapeSingle, SourcePointer: "/title",
		}})
	require.NoError(t, err)

	b := render.NewBuilder(testutil.ComponentRegistry(t))
	_, err = b.Build(def, render.Input{Data: testutil.EpicContent()}, render.ModeStored)
	require.Error(t, err)
}
