package corrections_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skino1337/PyPoE/internal/corrections"
)

func TestLookupByLanguage(t *testing.T) {
	s := corrections.Default()

	v, ok, err := s.Lookup(corrections.TwoStoneRings, "German", "Metadata/Items/Rings/Ring13")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Zweisteinring (Saphir und Topas)", v)

	_, ok, err = s.Lookup(corrections.UniqueItems, "English", "1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLookupMissingLanguage(t *testing.T) {
	s := corrections.Default()

	_, _, err := s.Lookup(corrections.UniqueItems, "German", "423")
	assert.ErrorIs(t, err, corrections.ErrNoTable)

	_, _, err = s.Lookup("nope", "English", "1")
	assert.ErrorIs(t, err, corrections.ErrNoTable)
}

func TestLookupAnyLanguage(t *testing.T) {
	s := corrections.Default()

	v, ok, err := s.Lookup(corrections.QuestStateFallback, "French", "385")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a6q4", v)
}

func TestLoadOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrections.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
unique_items:
  German:
    "423": "Überlebensinstinkt"
  English:
    "423": "Changed"
`), 0o644))

	s, err := corrections.Load(path)
	require.NoError(t, err)

	v, ok, err := s.Lookup(corrections.UniqueItems, "German", "423")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Überlebensinstinkt", v)

	v, _, _ = s.Lookup(corrections.UniqueItems, "English", "423")
	assert.Equal(t, "Changed", v)
	v, _, _ = s.Lookup(corrections.UniqueItems, "English", "424")
	assert.Equal(t, "Survival Skills", v)

	// Defaults are not shared between calls.
	assert.Equal(t, "Survival Instincts", corrections.Default()[corrections.UniqueItems]["English"]["423"])
}
