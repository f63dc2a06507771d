package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, metrics http.Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if metrics != nil {
		mux.Handle("GET /metrics", metrics)
	}
}

func registerMatchRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/match", handler.StartMatch)
	mux.HandleFunc("GET /v1/match", handler.GetCurrentMatch)
	mux.HandleFunc("DELETE /v1/match", handler.AbandonMatch)
	mux.HandleFunc("POST /v1/match/points", handler.ScorePoint)
	mux.HandleFunc("POST /v1/match/corrections", handler.CorrectScore)
	mux.HandleFunc("POST /v1/match/serve/switch", handler.SwitchServe)
	mux.HandleFunc("POST /v1/match/undo", handler.Undo)
	mux.HandleFunc("GET /v1/match/stream", handler.StreamMatch)
}

func registerHistoryRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/history/matches", handler.ListMatchHistory)
	mux.HandleFunc("GET /v1/history/matches/{matchID}", handler.GetMatchHistory)
}
