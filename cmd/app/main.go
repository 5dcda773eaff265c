package main

import (
	"consultation/config"
	"consultation/di"
	"consultation/helper"
	"consultation/shared/logger"
	"consultation/shared/timezone"

	"github.com/rs/zerolog/log"
)

func main() {
	cfg := config.MustLoad()

	logger.InitLogger(cfg)
	timezone.Init(cfg.App.Timezone)

	if cfg.DB.Postgres.AutoMigrate {
		if err := helper.Up(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to run database migrations")
		}
	}

	http, cleanup, err := di.InitializeService(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize service")
	}
	defer cleanup()

	http.Serve()
}
