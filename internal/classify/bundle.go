package classify

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hquach/intern-tracker/internal/feature"
)

// BundleVersion guards against loading artifacts written by an incompatible
// layout of the encoder or model structs.
const BundleVersion = 1

// Bundle is the single deployable training artifact: the fitted feature
// encoder together with the classifier trained against it. They are saved
// and loaded as one unit so feature widths can never drift apart.
type Bundle struct {
	Version   int              `json:"version"`
	CreatedAt time.Time        `json:"created_at"`
	Options   feature.Options  `json:"options"`
	Encoder   *feature.Encoder `json:"encoder"`
	Model     *Model           `json:"model"`
}

// SaveBundle writes the bundle to path through a temp file and rename, so a
// crash mid-write leaves the previous artifact intact instead of a truncated
// file.
func SaveBundle(path string, b *Bundle) error {
	b.Version = BundleVersion
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal bundle: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create model directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".model-*.json")
	if err != nil {
		return fmt.Errorf("create temp bundle: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write bundle: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close bundle: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace bundle: %w", err)
	}
	return nil
}

// LoadBundle reads and sanity-checks a bundle written by SaveBundle.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read bundle: %w", err)
	}
	var b Bundle
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse bundle: %w", err)
	}
	if b.Version != BundleVersion {
		return nil, fmt.Errorf("bundle version %d, want %d (run train to regenerate)", b.Version, BundleVersion)
	}
	if b.Encoder == nil || b.Model == nil {
		return nil, fmt.Errorf("bundle missing encoder or model")
	}
	if got, want := len(b.Model.Weights), b.Encoder.Width(); got != want {
		return nil, fmt.Errorf("bundle inconsistent: model width %d, encoder width %d", got, want)
	}
	return &b, nil
}
