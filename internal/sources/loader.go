package sources

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoSources indicates no sources were found in the catalog file.
	ErrNoSources = errors.New("no sources found in configuration")
	// ErrSourceNotFound indicates a named source is not in the catalog.
	ErrSourceNotFound = errors.New("source not found")
)

// fileSource mirrors Source for YAML decoding. Enabled is a pointer so
// that an omitted key defaults to true rather than false.
type fileSource struct {
	Name      string            `yaml:"name"`
	URL       string            `yaml:"url"`
	Backend   string            `yaml:"backend"`
	Enabled   *bool             `yaml:"enabled"`
	Selectors map[string]string `yaml:"selectors"`
	Settings  map[string]any    `yaml:"settings"`
}

// catalogFile is the top-level shape of the sources catalog.
type catalogFile struct {
	Sources []fileSource `yaml:"sources"`
}

// LoadFile reads and validates the sources catalog at path.
func LoadFile(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a sources catalog from raw YAML.
func Parse(data []byte) (*Sources, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	if len(file.Sources) == 0 {
		return nil, ErrNoSources
	}

	seen := make(map[string]struct{}, len(file.Sources))
	configs := make([]Source, 0, len(file.Sources))
	for i := range file.Sources {
		src := convertFileSource(&file.Sources[i])
		if err := src.Validate(); err != nil {
			return nil, fmt.Errorf("source %d (%s): %w", i, src.Name, err)
		}
		if _, dup := seen[src.Name]; dup {
			return nil, fmt.Errorf("duplicate source name %q", src.Name)
		}
		seen[src.Name] = struct{}{}
		configs = append(configs, src)
	}

	return &Sources{sources: configs}, nil
}

// convertFileSource maps the file shape onto the immutable Source.
func convertFileSource(fs *fileSource) Source {
	enabled := true
	if fs.Enabled != nil {
		enabled = *fs.Enabled
	}

	selectors := fs.Selectors
	if selectors == nil {
		selectors = map[string]string{}
	}
	settings := fs.Settings
	if settings == nil {
		settings = map[string]any{}
	}

	return Source{
		Name:      fs.Name,
		URL:       fs.URL,
		Backend:   Backend(fs.Backend),
		Enabled:   enabled,
		Selectors: selectors,
		Settings:  settings,
	}
}
