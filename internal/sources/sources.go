package sources

import (
	"fmt"
)

// Interface defines read access to the loaded source catalog.
type Interface interface {
	// All returns every configured source, enabled or not.
	All() []Source
	// Enabled returns the enabled sources in catalog order.
	Enabled() []Source
	// FindByName returns the source with the given name, or nil.
	FindByName(name string) *Source
	// ByBackend returns the enabled sources with the given backend.
	ByBackend(backend Backend) []Source
	// SelectSource resolves the named source and ensures it is enabled.
	SelectSource(name string) (*Source, error)
}

// Ensure Sources implements Interface.
var _ Interface = (*Sources)(nil)

// Sources holds the loaded source catalog. The catalog is immutable
// after loading, so reads need no synchronization.
type Sources struct {
	sources []Source
}

// All returns every configured source, enabled or not.
func (s *Sources) All() []Source {
	out := make([]Source, len(s.sources))
	copy(out, s.sources)
	return out
}

// Enabled returns the enabled sources in catalog order.
func (s *Sources) Enabled() []Source {
	out := make([]Source, 0, len(s.sources))
	for i := range s.sources {
		if s.sources[i].Enabled {
			out = append(out, s.sources[i])
		}
	}
	return out
}

// FindByName returns the source with the given name, or nil when the
// catalog does not contain it.
func (s *Sources) FindByName(name string) *Source {
	for i := range s.sources {
		if s.sources[i].Name == name {
			src := s.sources[i]
			return &src
		}
	}
	return nil
}

// ByBackend returns the enabled sources with the given backend.
func (s *Sources) ByBackend(backend Backend) []Source {
	out := make([]Source, 0, len(s.sources))
	for i := range s.sources {
		if s.sources[i].Enabled && s.sources[i].Backend == backend {
			out = append(out, s.sources[i])
		}
	}
	return out
}

// SelectSource resolves the named source and ensures it is enabled.
func (s *Sources) SelectSource(name string) (*Source, error) {
	src := s.FindByName(name)
	if src == nil {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, name)
	}
	if !src.Enabled {
		return nil, fmt.Errorf("source %s is disabled", name)
	}
	return src, nil
}
