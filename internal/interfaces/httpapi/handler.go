package httpapi

import (
	"context"
	"fmt"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/scorekeeper/internal/platform/logging"
	"github.com/riskibarqy/scorekeeper/internal/usecase"
)

// maxRequestBodyBytes bounds every JSON request body.
const maxRequestBodyBytes = 64 << 10

type Handler struct {
	session        *usecase.MatchSession
	historyService *usecase.HistoryService
	hub            *StreamHub
	logger         *logging.Logger
	validator      *validator.Validate
}

func NewHandler(
	session *usecase.MatchSession,
	historyService *usecase.HistoryService,
	hub *StreamHub,
	logger *logging.Logger,
) *Handler {
	return &Handler{
		session:        session,
		historyService: historyService,
		hub:            hub,
		logger:         logging.OrDefault(logger).Named("httpapi"),
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

// decodeRequest reads a JSON body into dst and validates it.
func (h *Handler) decodeRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return h.validateRequest(ctx, dst)
}
