package session_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KaramelBytes/datamatic/internal/analysis"
	"github.com/KaramelBytes/datamatic/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleProfile(t *testing.T) *analysis.DatasetProfile {
	t.Helper()
	ds := &analysis.Dataset{
		Name:    "yield.csv",
		Columns: []string{"plot", "kg", "rain"},
		Rows: []analysis.Row{
			{"plot": "A1", "kg": "12", "rain": "3"},
			{"plot": "A2", "kg": "14", "rain": "4"},
			{"plot": "A1", "kg": "", "rain": "5"},
		},
	}
	prof, err := analysis.NewProfiler().Build(context.Background(), ds)
	require.NoError(t, err)
	return prof
}

func TestSaveLoadRoundTrip(t *testing.T) {
	st := session.NewStore(t.TempDir())
	s := session.New("data/yield.csv", sampleProfile(t))
	require.NoError(t, st.Save(s))

	_, err := os.Stat(filepath.Join(st.Dir, s.ID, "session.json"))
	require.NoError(t, err)

	got, err := st.Load(s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, "data/yield.csv", got.Source)
	require.NotNil(t, got.Profile)
	assert.Equal(t, s.Profile.Types(), got.Profile.Types())
	assert.Equal(t, s.Profile.Correlation, got.Profile.Correlation)

	kg, ok := got.Profile.Column("kg")
	require.True(t, ok)
	assert.Equal(t, 1, kg.Stats.Numeric.Missing)
	assert.InDelta(t, 13.0, kg.Stats.Numeric.Mean, 1e-9)
}

func TestLoadByPrefix(t *testing.T) {
	st := session.NewStore(t.TempDir())
	s := session.New("a.csv", sampleProfile(t))
	require.NoError(t, st.Save(s))

	got, err := st.Load(s.ID[:8])
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
}

func TestLoadMissingAndInvalid(t *testing.T) {
	st := session.NewStore(t.TempDir())
	_, err := st.Load("deadbeef")
	assert.ErrorIs(t, err, session.ErrNotFound)

	_, err = st.Load("../etc")
	assert.ErrorContains(t, err, "invalid session id")
}

func TestListNewestFirstAndDelete(t *testing.T) {
	st := session.NewStore(t.TempDir())
	empty, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, empty)

	first := session.New("first.csv", sampleProfile(t))
	require.NoError(t, st.Save(first))
	time.Sleep(10 * time.Millisecond)
	second := session.New("second.csv", sampleProfile(t))
	require.NoError(t, st.Save(second))

	require.NoError(t, os.MkdirAll(filepath.Join(st.Dir, "broken"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(st.Dir, "broken", "session.json"), []byte("{"), 0o644))

	list, err := st.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)

	require.NoError(t, st.Delete(first.ID))
	_, err = st.Load(first.ID)
	assert.ErrorIs(t, err, session.ErrNotFound)
}
