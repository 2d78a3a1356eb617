// Package common provides shared wiring for command implementations.
package common

import (
	"github.com/greg-randall/job-finder/internal/config"
	"github.com/greg-randall/job-finder/internal/logger"
	"github.com/greg-randall/job-finder/internal/sources"
)

// CommandDeps holds the dependencies every command starts from.
// Use this instead of context.Value for type-safe dependency injection.
type CommandDeps struct {
	Logger  logger.Interface
	Config  config.Interface
	Catalog sources.Interface
}

// Validate ensures all required dependencies are present.
func (d CommandDeps) Validate() error {
	if d.Logger == nil {
		return ErrLoggerRequired
	}
	if d.Config == nil {
		return ErrConfigRequired
	}
	if d.Catalog == nil {
		return ErrCatalogRequired
	}
	return nil
}
