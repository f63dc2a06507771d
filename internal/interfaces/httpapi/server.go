package httpapi

import (
	"net/http"

	"github.com/riskibarqy/scorekeeper/internal/platform/logging"
)

type RouterConfig struct {
	ServiceName        string
	CORSAllowedOrigins []string
	// MetricsHandler serves /metrics when set.
	MetricsHandler http.Handler
}

func NewRouter(handler *Handler, cfg RouterConfig, logger *logging.Logger) http.Handler {
	logger = logging.OrDefault(logger).Named("http")
	if cfg.ServiceName == "" {
		cfg.ServiceName = "scorekeeper"
	}

	mux := http.NewServeMux()
	registerSystemRoutes(mux, handler, cfg.MetricsHandler)
	registerMatchRoutes(mux, handler)
	registerHistoryRoutes(mux, handler)

	return RequestTracing(cfg.ServiceName, RequestLogging(logger, CORS(cfg.CORSAllowedOrigins, recoverPanic(logger, mux))))
}
