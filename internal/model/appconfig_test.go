package model

import (
	"fmt"
	"testing"
	"time"
)

func TestDefaultAppConfig(t *testing.T) {
	cfg := DefaultAppConfig()
	if cfg.SheetWidth <= 0 || cfg.SheetHeight <= 0 {
		t.Errorf("expected a positive default sheet, got %gx%g", cfg.SheetWidth, cfg.SheetHeight)
	}
	if len(cfg.Pack.Heuristics) != len(DefaultSettings().Heuristics) {
		t.Error("default pack settings should match DefaultSettings")
	}
	if cfg.RecentJobs == nil {
		t.Error("RecentJobs should not be nil")
	}
}

func TestTimeoutDuration(t *testing.T) {
	cfg := DefaultAppConfig()
	if d, err := cfg.TimeoutDuration(); err != nil || d != 0 {
		t.Errorf("empty timeout should mean none, got %v %v", d, err)
	}

	cfg.Timeout = "90s"
	if d, err := cfg.TimeoutDuration(); err != nil || d != 90*time.Second {
		t.Errorf("expected 90s, got %v %v", d, err)
	}

	for _, bad := range []string{"soon", "-1s"} {
		cfg.Timeout = bad
		if _, err := cfg.TimeoutDuration(); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestAddRecentJob(t *testing.T) {
	cfg := DefaultAppConfig()
	cfg.AddRecentJob("a.json")
	cfg.AddRecentJob("b.json")
	cfg.AddRecentJob("a.json")

	if len(cfg.RecentJobs) != 2 || cfg.RecentJobs[0] != "a.json" || cfg.RecentJobs[1] != "b.json" {
		t.Errorf("unexpected recent jobs %v", cfg.RecentJobs)
	}

	for i := 0; i < 15; i++ {
		cfg.AddRecentJob(fmt.Sprintf("job%d.json", i))
	}
	if len(cfg.RecentJobs) != maxRecentJobs {
		t.Errorf("expected %d recent jobs, got %d", maxRecentJobs, len(cfg.RecentJobs))
	}
	if cfg.RecentJobs[0] != "job14.json" {
		t.Errorf("expected newest first, got %s", cfg.RecentJobs[0])
	}
}
