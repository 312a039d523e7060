//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/navgraph/internal/config"
	"github.com/zeusync/navgraph/internal/core/connectivity"
	"github.com/zeusync/navgraph/internal/core/navigation"
)

func InitializeService(cfg config.Config, oracle connectivity.Oracle) (*navigation.Service, error) {
	wire.Build(ServiceSet)
	return nil, nil
}
