package usecase

import (
	"go.uber.org/fx"

	"github.com/bloodbridge/procurement/internal/config"
)

// Module provides core business use cases to the fx container.
var Module = fx.Options(
	fx.Provide(
		newTrackingGenerator,
		newAdminCredentials,
		NewAuthUseCase,
		NewOrderUseCase,
		NewStatsUseCase,
	),
)

func newTrackingGenerator(cfg *config.Config) *TrackingGenerator {
	return NewTrackingGenerator(cfg.TrackingPrefix)
}

func newAdminCredentials(cfg *config.Config) AdminCredentials {
	return AdminCredentials{Login: cfg.AdminLogin, PasswordHash: cfg.AdminPasswordHash}
}
