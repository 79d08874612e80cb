package output

import (
	"testing"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/stretchr/testify/assert"

	"github.com/gitops-tools/catalogctl/internal/domain"
)

func init() {
	// Deterministic plain-text output under test.
	text.DisableColors()
}

func TestRenderer_Render_Empty(t *testing.T) {
	r := NewRenderer()

	assert.Equal(t, "", r.Render(nil))
	assert.Equal(t, "", r.Render(&domain.ChangeSet{}))
}

func TestRenderer_Render_Added(t *testing.T) {
	r := NewRenderer()
	cs := &domain.ChangeSet{Entries: []domain.ChangeEntry{
		{Kind: domain.ChangeAdded, ToPath: "apps/web.yaml"},
	}}

	assert.Equal(t, "Added file apps/web.yaml", r.Render(cs))
}

func TestRenderer_Render_Deleted(t *testing.T) {
	r := NewRenderer()
	cs := &domain.ChangeSet{Entries: []domain.ChangeEntry{
		{Kind: domain.ChangeDeleted, FromPath: "apps/old.yaml"},
	}}

	assert.Equal(t, "Deleted file apps/old.yaml", r.Render(cs))
}

func TestRenderer_Render_Renamed(t *testing.T) {
	r := NewRenderer()
	cs := &domain.ChangeSet{Entries: []domain.ChangeEntry{
		{Kind: domain.ChangeRenamed, FromPath: "a.yaml", ToPath: "b.yaml", Similarity: 0.875},
	}}

	got := r.Render(cs)
	assert.Contains(t, got, "Renamed file a.yaml => b.yaml")
	assert.Contains(t, got, "Similarity index 87.50%")
}

func TestRenderer_Render_Modified(t *testing.T) {
	r := NewRenderer()
	diff := "--- a.yaml\n+++ a.yaml\n@@ -1 +1 @@\n-replicas: 1\n+replicas: 3"
	cs := &domain.ChangeSet{Entries: []domain.ChangeEntry{
		{Kind: domain.ChangeModified, FromPath: "a.yaml", ToPath: "a.yaml", Diff: diff},
	}}

	assert.Equal(t, diff, r.Render(cs))
}

func TestRenderer_Render_MultipleEntries(t *testing.T) {
	r := NewRenderer()
	cs := &domain.ChangeSet{Entries: []domain.ChangeEntry{
		{Kind: domain.ChangeAdded, ToPath: "a.yaml"},
		{Kind: domain.ChangeDeleted, FromPath: "b.yaml"},
	}}

	assert.Equal(t, "Added file a.yaml\n\nDeleted file b.yaml", r.Render(cs))
}
