//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/thunder/internal/engine"
)

// Initialize builds an engine from the config file at path. An empty path
// uses the defaults.
func Initialize(path string) (*engine.Engine, func(), error) {
	wire.Build(Set)
	return nil, nil, nil
}
