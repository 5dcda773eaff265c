package handler

import (
	"net/http"
	"sync"

	"consultation/config"
	"consultation/di"
	"consultation/shared/logger"
	"consultation/shared/timezone"

	"github.com/rs/zerolog/log"
)

var (
	once    sync.Once
	handler http.Handler
)

// Handler is the serverless entrypoint. The service graph is built on the first request
// and reused by warm invocations.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		cfg := config.MustLoad()

		logger.InitLogger(cfg)
		timezone.Init(cfg.App.Timezone)

		service, _, err := di.InitializeService(cfg)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize service")
		}

		handler = service.Handler()
	})

	handler.ServeHTTP(w, r)
}
