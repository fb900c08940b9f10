package chains

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"valska/internal/logging"
)

// Catalog maps analysis keys (e.g. "GSM_FgEoR_-1e-3pp") to chain directories
// relative to the chains root.
type Catalog map[string]string

// LoadCatalog reads the analysis path catalog from a YAML file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("catalog file not found: %s", path)
		}
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	catalog := Catalog{}
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog %s: %w", path, err)
	}

	logging.ChainsDebug("Loaded catalog %s with %d entries", path, len(catalog))
	return catalog, nil
}

// Keys returns the catalog keys in sorted order.
func (c Catalog) Keys() []string {
	keys := make([]string, 0, len(c))
	for k := range c {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// WithPrefix returns the catalog keys sharing a prefix, sorted.
func (c Catalog) WithPrefix(prefix string) []string {
	var keys []string
	for k := range c {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}
