package generate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"artforge/pkg/errors"
)

// manifestFile is the manifest's file name inside the build directory.
const manifestFile = "manifest.json"

// Manifest records the parameters and outcome of one generation run. It is
// written next to the images and json directories so later commands (stats,
// rank, serve) can recover the run's edition range.
type Manifest struct {
	RunID        string    `json:"run_id"`
	Seed         uint64    `json:"seed"`
	Amount       int       `json:"amount"`
	StartEdition int       `json:"start_edition"`
	Capacity     int       `json:"capacity"`
	Duplicates   int       `json:"duplicates_discarded"`
	CreatedAt    time.Time `json:"created_at"`
}

// WriteManifest persists the manifest into buildDir.
func WriteManifest(buildDir string, m Manifest) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "marshaling manifest")
	}
	path := filepath.Join(buildDir, manifestFile)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "writing %s", path)
	}
	return nil
}

// ReadManifest loads the manifest of a previous run from buildDir.
func ReadManifest(buildDir string) (Manifest, error) {
	path := filepath.Join(buildDir, manifestFile)
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, errors.Wrap(errors.ErrCodeMetadataNotFound, err, "reading %s", path)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return Manifest{}, errors.Wrap(errors.ErrCodeInternal, err, "parsing %s", path)
	}
	return m, nil
}
