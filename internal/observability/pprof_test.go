package observability

import (
	"net/http"
	"testing"
	"time"

	"github.com/riskibarqy/scorekeeper/internal/config"
	"github.com/riskibarqy/scorekeeper/internal/platform/logging"
)

func TestStartPprofServer_Disabled(t *testing.T) {
	srv, err := StartPprofServer(config.Config{}, logging.NewNop())
	if err != nil || srv != nil {
		t.Fatalf("expected nil server when disabled, got %v, %v", srv, err)
	}
	if err := StopPprofServer(nil, nil, time.Second); err != nil {
		t.Fatalf("stop nil server: %v", err)
	}
}

func TestStartPprofServer_ServesIndex(t *testing.T) {
	srv, err := StartPprofServer(config.Config{PprofEnabled: true, PprofAddr: "127.0.0.1:0"}, logging.NewNop())
	if err != nil {
		t.Fatalf("start pprof: %v", err)
	}
	t.Cleanup(func() {
		if err := StopPprofServer(srv, logging.NewNop(), time.Second); err != nil {
			t.Errorf("stop pprof: %v", err)
		}
	})

	resp, err := http.Get("http://" + srv.Addr + "/debug/pprof/")
	if err != nil {
		t.Fatalf("get pprof index: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
