package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/navgraph/internal/config"
	"github.com/zeusync/navgraph/internal/core/events/bus"
	"github.com/zeusync/navgraph/internal/core/navigation"
	"github.com/zeusync/navgraph/internal/core/observability/log"
)

var ServiceSet = wire.NewSet(
	ProvideLogger,
	wire.Bind(new(log.Log), new(*log.Logger)),
	bus.New,
	navigation.New,
)

func ProvideLogger(cfg config.Config) *log.Logger {
	return log.NewWithOptions(log.Options{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		OutputPaths: cfg.Log.OutputPaths,
	})
}
