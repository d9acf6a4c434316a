package enrich

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// LoadBundle reads a STIX bundle from a local JSON cache file.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bundle cache %s: %w", path, err)
	}

	var bundle Bundle
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, fmt.Errorf("failed to parse bundle cache %s: %w", path, err)
	}
	return &bundle, nil
}

// SaveBundle writes a STIX bundle to a local JSON cache file, creating
// parent directories as needed. The file is written to a temporary name
// first and renamed into place so a crash cannot leave a truncated cache.
func SaveBundle(path string, bundle *Bundle) error {
	if bundle == nil {
		return ErrNoBundle
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create bundle cache directory %s: %w", dir, err)
		}
	}

	data, err := json.Marshal(bundle)
	if err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write bundle cache %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("failed to replace bundle cache %s: %w", path, err)
	}
	return nil
}
