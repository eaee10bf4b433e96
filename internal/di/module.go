package di

import (
	"go.uber.org/fx"

	"github.com/bloodbridge/procurement/internal/adapter/directory"
	"github.com/bloodbridge/procurement/internal/app"
	"github.com/bloodbridge/procurement/internal/config"
	"github.com/bloodbridge/procurement/internal/logger"
	"github.com/bloodbridge/procurement/internal/pkg/auth"
	"github.com/bloodbridge/procurement/internal/server/http/handlers"
	"github.com/bloodbridge/procurement/internal/server/http/router"
	"github.com/bloodbridge/procurement/internal/storage/postgres"
	"github.com/bloodbridge/procurement/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		directory.Module,
		usecase.Module,
		fx.Provide(func(f *app.ProcurementFacade) handlers.ProcurementFacade { return f }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
