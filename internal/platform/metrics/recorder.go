package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "scorekeeper"

// Recorder counts scoring activity on its own Prometheus registry.
// A nil *Recorder drops every observation.
type Recorder struct {
	registry       *prometheus.Registry
	matchesStarted prometheus.Counter
	points         *prometheus.CounterVec
	corrections    *prometheus.CounterVec
	setsWon        *prometheus.CounterVec
	matchesDone    prometheus.Counter
	serveSwitches  prometheus.Counter
	undos          prometheus.Counter
	recorderSaves  *prometheus.CounterVec
	streamClients  prometheus.Gauge
}

// NewRecorder builds a recorder. withRuntime adds Go runtime and process
// collectors to the registry.
func NewRecorder(withRuntime bool) *Recorder {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	r := &Recorder{
		registry: reg,
		matchesStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "matches_started_total",
			Help: "Matches started or reset.",
		}),
		points: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "points_scored_total",
			Help: "Points applied, by player slot.",
		}, []string{"slot"}),
		corrections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "score_corrections_total",
			Help: "Manual score decrements, by player slot.",
		}, []string{"slot"}),
		setsWon: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "sets_won_total",
			Help: "Sets won, by player slot.",
		}, []string{"slot"}),
		matchesDone: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "matches_finished_total",
			Help: "Matches that reached a winner.",
		}),
		serveSwitches: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "serve_switches_total",
			Help: "Manual serve switches.",
		}),
		undos: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "undo_total",
			Help: "Undo requests.",
		}),
		recorderSaves: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "match_record_saves_total",
			Help: "Finished match saves, by result.",
		}, []string{"result"}),
		streamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "stream_clients",
			Help: "Connected state stream clients.",
		}),
	}
	reg.MustRegister(
		r.matchesStarted, r.points, r.corrections, r.setsWon, r.matchesDone,
		r.serveSwitches, r.undos, r.recorderSaves, r.streamClients,
	)
	return r
}

// Handler serves the registry in the Prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) MatchStarted() {
	if r == nil {
		return
	}
	r.matchesStarted.Inc()
}

func (r *Recorder) PointScored(slot string) {
	if r == nil {
		return
	}
	r.points.WithLabelValues(slot).Inc()
}

func (r *Recorder) ScoreCorrected(slot string) {
	if r == nil {
		return
	}
	r.corrections.WithLabelValues(slot).Inc()
}

func (r *Recorder) SetWon(slot string) {
	if r == nil {
		return
	}
	r.setsWon.WithLabelValues(slot).Inc()
}

func (r *Recorder) MatchFinished() {
	if r == nil {
		return
	}
	r.matchesDone.Inc()
}

func (r *Recorder) ServeSwitched() {
	if r == nil {
		return
	}
	r.serveSwitches.Inc()
}

func (r *Recorder) Undone() {
	if r == nil {
		return
	}
	r.undos.Inc()
}

func (r *Recorder) RecordSaved(err error) {
	if r == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	r.recorderSaves.WithLabelValues(result).Inc()
}

func (r *Recorder) StreamClientsChanged(delta int) {
	if r == nil {
		return
	}
	r.streamClients.Add(float64(delta))
}
