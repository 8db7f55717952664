package funnels_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blakecrosley/941analytics/internal/funnels"
	"github.com/blakecrosley/941analytics/internal/testsupport"
)

func TestFunnelCRUD(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestSite(db, "example.com")

	steps := []funnels.FunnelStep{
		{Type: funnels.StepTypePage, Value: "/docs", Label: "Docs"},
		{Type: funnels.StepTypeEvent, Value: "trial_start"},
	}

	created, err := funnels.Create(db, site.ID, "Docs to Trial", "Readers who start a trial", steps)
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	loaded, err := funnels.Get(db, site.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Docs to Trial", loaded.Name)

	loadedSteps, err := loaded.Steps()
	require.NoError(t, err)
	assert.Equal(t, steps, loadedSteps)

	loaded.Name = "Docs Funnel"
	require.NoError(t, funnels.Update(db, loaded))

	reloaded, err := funnels.Get(db, site.ID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Docs Funnel", reloaded.Name)

	require.NoError(t, funnels.Delete(db, site.ID, created.ID))
	_, err = funnels.Get(db, site.ID, created.ID)
	assert.Error(t, err)
}

func TestGetScopedToSite(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestSite(db, "example.com")
	other := testsupport.CreateTestSite(db, "other.com")

	created, err := funnels.Create(db, site.ID, "Mine", "", []funnels.FunnelStep{
		{Type: funnels.StepTypePage, Value: "/"},
	})
	require.NoError(t, err)

	_, err = funnels.Get(db, other.ID, created.ID)
	assert.Error(t, err, "funnel must not be visible to another site")
}

func TestCreateRejectsInvalidSteps(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestSite(db, "example.com")

	_, err := funnels.Create(db, site.ID, "Empty", "", nil)
	assert.Error(t, err)
}

func TestEnsurePresets(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestSite(db, "example.com")

	require.NoError(t, funnels.EnsurePresets(db, site.ID))

	listed, err := funnels.List(db, site.ID)
	require.NoError(t, err)
	require.Len(t, listed, 3)

	names := make([]string, 0, len(listed))
	for _, funnel := range listed {
		assert.True(t, funnel.IsPreset)
		names = append(names, funnel.Name)
	}
	assert.ElementsMatch(t, []string{"Landing to Signup", "Blog to Conversion", "Product Journey"}, names)

	// Running again must not duplicate.
	require.NoError(t, funnels.EnsurePresets(db, site.ID))
	listed, err = funnels.List(db, site.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 3)
}

func TestPresetsCannotBeDeleted(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestSite(db, "example.com")

	require.NoError(t, funnels.EnsurePresets(db, site.ID))
	listed, err := funnels.List(db, site.ID)
	require.NoError(t, err)
	require.NotEmpty(t, listed)

	preset := listed[0]
	require.NoError(t, funnels.Delete(db, site.ID, preset.ID))

	// The delete is a no-op for presets.
	still, err := funnels.Get(db, site.ID, preset.ID)
	require.NoError(t, err)
	assert.Equal(t, preset.Name, still.Name)
}

func TestListPresetsFirst(t *testing.T) {
	db := testsupport.SetupTestDB(t)
	site := testsupport.CreateTestSite(db, "example.com")

	_, err := funnels.Create(db, site.ID, "AAA Custom", "", []funnels.FunnelStep{
		{Type: funnels.StepTypePage, Value: "/"},
	})
	require.NoError(t, err)
	require.NoError(t, funnels.EnsurePresets(db, site.ID))

	listed, err := funnels.List(db, site.ID)
	require.NoError(t, err)
	require.Len(t, listed, 4)

	assert.True(t, listed[0].IsPreset, "presets sort before custom funnels")
	assert.Equal(t, "AAA Custom", listed[3].Name)
}
