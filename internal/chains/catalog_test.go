package chains

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paths.yaml")
	content := `
GSM_FgEoR_-1e-3pp: v5d0/GSM_FgEoR_-1e-3pp/MN-run
GSM_FgOnly_-1e-3pp: v5d0/GSM_FgOnly_-1e-3pp/MN-run
GSM_FgEoR: v5d0/GSM_FgEoR/MN-run
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	assert.Len(t, catalog, 3)
	assert.Equal(t, "v5d0/GSM_FgEoR_-1e-3pp/MN-run", catalog["GSM_FgEoR_-1e-3pp"])
}

func TestLoadCatalogMissing(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadCatalogInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paths.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- just\n- a\n- list\n"), 0644))

	_, err := LoadCatalog(path)
	assert.Error(t, err)
}

func TestCatalogKeys(t *testing.T) {
	catalog := Catalog{"b": "2", "a": "1", "c": "3"}
	assert.Equal(t, []string{"a", "b", "c"}, catalog.Keys())
}

func TestCatalogWithPrefix(t *testing.T) {
	catalog := Catalog{
		"GSM_FgEoR_-1e-3pp":  "x",
		"GSM_FgEoR_+1e0pp":   "y",
		"GSM_FgOnly_-1e-3pp": "z",
	}

	keys := catalog.WithPrefix(FgEoRPrefix)
	assert.Equal(t, []string{"GSM_FgEoR_+1e0pp", "GSM_FgEoR_-1e-3pp"}, keys)
}
