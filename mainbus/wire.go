//go:build wireinject
// +build wireinject

package mainbus

import (
	"log/slog"

	"github.com/google/wire"

	"github.com/next-trace/scg-logged-events/eventbus"
)

// InitializeBus loads configuration and builds the main bus.
func InitializeBus(logger *slog.Logger) (*eventbus.Bus, func(), error) {
	wire.Build(ProviderSet)

	return nil, nil, nil
}
