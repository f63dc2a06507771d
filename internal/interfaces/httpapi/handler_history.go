package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/scorekeeper/internal/usecase"
)

func (h *Handler) ListMatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatchHistory")
	defer span.End()

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: invalid limit %q", usecase.ErrInvalidInput, raw))
			return
		}
		limit = parsed
	}

	matches, err := h.historyService.ListMatches(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "list match history failed", "limit", limit, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]matchRecordDTO, 0, len(matches))
	for _, m := range matches {
		items = append(items, matchRecordToDTO(m, false))
	}
	writeSuccess(ctx, w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) GetMatchHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatchHistory")
	defer span.End()

	match, err := h.historyService.GetMatch(ctx, r.PathValue("matchID"))
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchRecordToDTO(match, true))
}
