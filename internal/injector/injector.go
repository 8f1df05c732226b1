//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/arena/internal/app"
	"github.com/zeusync/arena/internal/config"
)

// InitializeApp assembles the arena service. The cleanup must run after
// App.Run returns.
func InitializeApp(cfg *config.Config) (*app.App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
