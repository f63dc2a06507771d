package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/scorekeeper/internal/usecase"
)

func (h *Handler) StartMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartMatch")
	defer span.End()

	var req startMatchRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.StartMatchInput{
		Player1ID:            req.Player1ID,
		Player2ID:            req.Player2ID,
		Player1Name:          req.Player1Name,
		Player2Name:          req.Player2Name,
		ContinueFromPrevious: req.ContinueFromPrevious,
	}
	if req.Rules != nil {
		rules, err := req.Rules.apply(h.session.DefaultRules())
		if err != nil {
			writeError(ctx, w, fmt.Errorf("%w: %w", usecase.ErrInvalidInput, err))
			return
		}
		input.Rules = &rules
	}

	snapshot, err := h.session.Start(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "start match failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, snapshotToDTO(snapshot))
}

func (h *Handler) GetCurrentMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCurrentMatch")
	defer span.End()

	snapshot, err := h.session.Current(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(snapshot))
}

func (h *Handler) ScorePoint(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ScorePoint")
	defer span.End()

	var req playerActionRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	snapshot, err := h.session.ScorePoint(ctx, req.PlayerID)
	if err != nil {
		logActionError(h, r, "score point failed", req.PlayerID, err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(snapshot))
}

func (h *Handler) CorrectScore(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CorrectScore")
	defer span.End()

	var req playerActionRequest
	if err := h.decodeRequest(ctx, w, r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	snapshot, err := h.session.CorrectScore(ctx, req.PlayerID)
	if err != nil {
		logActionError(h, r, "correct score failed", req.PlayerID, err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(snapshot))
}

func (h *Handler) SwitchServe(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SwitchServe")
	defer span.End()

	snapshot, err := h.session.SwitchServe(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(snapshot))
}

func (h *Handler) Undo(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Undo")
	defer span.End()

	snapshot, err := h.session.Undo(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, snapshotToDTO(snapshot))
}

func (h *Handler) AbandonMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AbandonMatch")
	defer span.End()

	if err := h.session.Abandon(ctx); err != nil {
		writeError(ctx, w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func logActionError(h *Handler, r *http.Request, msg string, playerID int, err error) {
	if errors.Is(err, usecase.ErrNoActiveMatch) {
		return
	}
	h.logger.WarnContext(r.Context(), msg, "player_id", playerID, "error", err)
}

func (h *Handler) StreamMatch(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		writeError(r.Context(), w, fmt.Errorf("%w: match stream is disabled", usecase.ErrDependencyUnavailable))
		return
	}
	h.hub.ServeHTTP(w, r)
}
