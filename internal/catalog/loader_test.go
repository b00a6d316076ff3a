package catalog_test

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foliohq/folio/internal/catalog"
)

const schemasYAML = `schemas:
  - id: "schema:EpicV1"
    fields:
      - name: title
        type: string
        required: true
      - name: status
        type: string
        required: true
      - name: owner
        type: string
      - name: summary
        type: string
      - name: risks
        type: list
      - name: stories
        type: list
  - id: "schema:StoryV1"
    fields:
      - name: title
        type: string
        required: true
      - name: points
        type: number
`

const componentsYAML = `components:
  - id: "component:EpicSummary:1.0.0"
    schema: "schema:EpicV1"
    guidance:
      - "Summarize the epic in one compact block."
    bindings:
      web: "bind:epic-summary-web"
  - id: "component:StoryCard:1.0.0"
    schema: "schema:StoryV1"
    guidance:
      - "Render one story as a card."
    bindings:
      web: "bind:story-card-web"
`

const fragmentsYAML = `fragments:
  - id: "bind:epic-summary-web"
    template: "<epic>{{.Data.title}}</epic>"
  - id: "bind:story-card-web"
    template: "<story>{{.Data.title}}</story>"
`

const docdefsYAML = `docdefs:
  - id: "docdef:EpicSummaryView:1.0.0"
    title: "Epic Summary"
    status: accepted
    sections:
      - id: overview
        title: Overview
        order: 1
        component: "component:EpicSummary:1.0.0"
        shape: single
        source: "/"
        exclude_fields: [risks, dependencies, stories, open_questions, requirements, acceptance_criteria]
        derived: [risk_level]
        detail_ref:
          document_type: EpicDetailView
          params:
            epic: "/title"
      - id: stories
        title: Stories
        order: 2
        component: "component:StoryCard:1.0.0"
        shape: container+repeat_over
        source: "/stories"
`

func catalogFS() fstest.MapFS {
	return fstest.MapFS{
		"schemas/core.yaml":       {Data: []byte(schemasYAML)},
		"components/core.yaml":    {Data: []byte(componentsYAML)},
		"fragments/web.yaml":      {Data: []byte(fragmentsYAML)},
		"docdefs/epic.yaml":       {Data: []byte(docdefsYAML)},
		"docdefs/notes.txt":       {Data: []byte("not yaml, skipped")},
		"schemas/nested/.gitkeep": {Data: nil},
	}
}

func TestLoadFS(t *testing.T) {
	cat, err := catalog.LoadFS(catalogFS())
	require.NoError(t, err)

	assert.Equal(t, []string{"schema:EpicV1", "schema:StoryV1"}, cat.Schemas.IDs())
	assert.Len(t, cat.Components.List(), 2)
	assert.Equal(t, 2, cat.FragmentCount())

	frag, ok := cat.Fragment("bind:epic-summary-web")
	require.True(t, ok)
	assert.Equal(t, "<epic>{{.Data.title}}</epic>", frag)

	d, err := cat.DocDefs.Resolve("EpicSummaryView")
	require.NoError(t, err)
	secs := d.Sections()
	require.Len(t, secs, 2)
	assert.Equal(t, "overview", secs[0].ID)
	require.NotNil(t, secs[0].DetailRef)
	assert.Equal(t, "EpicDetailView", secs[0].DetailRef.DocumentType)
}

func TestLoadFSEmptyCatalog(t *testing.T) {
	cat, err := catalog.LoadFS(fstest.MapFS{})
	require.NoError(t, err)
	assert.Empty(t, cat.Schemas.IDs())
	assert.Equal(t, 0, cat.FragmentCount())
}

func TestLoadFSUnknownSchemaReference(t *testing.T) {
	fsys := catalogFS()
	fsys["components/core.yaml"] = &fstest.MapFile{Data: []byte(`components:
  - id: "component:EpicSummary:1.0.0"
    schema: "schema:GhostV1"
    guidance: ["g"]
`)}
	delete(fsys, "docdefs/epic.yaml")

	_, err := catalog.LoadFS(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown schema")
}

func TestLoadFSUnknownComponentReference(t *testing.T) {
	fsys := catalogFS()
	delete(fsys, "components/core.yaml")

	_, err := catalog.LoadFS(fsys)
	require.Error(t, err)
}

func TestLoadFSSummaryFieldCap(t *testing.T) {
	fsys := catalogFS()
	// Even with every heavy collection excluded, a schema this wide leaves
	// six fields in the summary block and breaches the cap.
	fsys["schemas/core.yaml"] = &fstest.MapFile{Data: []byte(`schemas:
  - id: "schema:EpicV1"
    fields:
      - {name: title, type: string, required: true}
      - {name: status, type: string}
      - {name: owner, type: string}
      - {name: summary, type: string}
      - {name: created, type: string}
      - {name: updated, type: string}
  - id: "schema:StoryV1"
    fields:
      - {name: title, type: string, required: true}
`)}
	fsys["docdefs/epic.yaml"] = &fstest.MapFile{Data: []byte(`docdefs:
  - id: "docdef:EpicSummaryView:1.0.0"
    title: "Epic Summary"
    status: accepted
    sections:
      - id: overview
        title: Overview
        order: 1
        component: "component:EpicSummary:1.0.0"
        shape: single
        source: "/"
        exclude_fields: [risks, dependencies, stories, open_questions, requirements, acceptance_criteria]
        detail_ref:
          document_type: EpicDetailView
          params:
            epic: "/title"
`)}

	_, err := catalog.LoadFS(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cap")
}

func TestLoadFSMissingFragmentIsTolerated(t *testing.T) {
	fsys := catalogFS()
	delete(fsys, "fragments/web.yaml")

	cat, err := catalog.LoadFS(fsys)
	require.NoError(t, err)
	assert.Equal(t, 0, cat.FragmentCount())
}

func TestLoadFSDuplicateFragment(t *testing.T) {
	fsys := catalogFS()
	fsys["fragments/extra.yaml"] = &fstest.MapFile{Data: []byte(`fragments:
  - id: "bind:epic-summary-web"
    template: "<dupe/>"
`)}

	_, err := catalog.LoadFS(fsys)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate fragment")
}

func TestBundleFor(t *testing.T) {
	cat, err := catalog.LoadFS(catalogFS())
	require.NoError(t, err)

	d, err := cat.DocDefs.Resolve("EpicSummaryView")
	require.NoError(t, err)

	hash, err := cat.BundleFor(d)
	require.NoError(t, err)
	assert.Regexp(t, `^sha256:[0-9a-f]{64}$`, hash)

	// Stable across repeated registration, and resolvable afterwards.
	again, err := cat.BundleFor(d)
	require.NoError(t, err)
	assert.Equal(t, hash, again)

	snap, err := cat.Bundles.Resolve(hash)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"schema:EpicV1", "schema:StoryV1"}, snap.SchemaIDs())
}
