package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BindAddr != "127.0.0.1:31013" {
		t.Fatalf("expected default bind address, got %q", c.BindAddr)
	}
	if c.TickInterval != time.Second/180 {
		t.Fatalf("expected default tick interval, got %v", c.TickInterval)
	}
	if c.HeartbeatPeriod != 5*time.Second {
		t.Fatalf("expected 5s heartbeat period, got %v", c.HeartbeatPeriod)
	}
	if c.Projectile != 10*time.Second {
		t.Fatalf("expected 10s projectile lifespan, got %v", c.Projectile)
	}
	if c.SpatialCellSize != 32 {
		t.Fatalf("expected spatial cell size 32, got %v", c.SpatialCellSize)
	}
	if c.OutboundChannelCapacity != 32 {
		t.Fatalf("expected outbound channel capacity 32, got %v", c.OutboundChannelCapacity)
	}
	if c.RegionDir != "assets/regions" {
		t.Fatalf("expected default region dir, got %q", c.RegionDir)
	}
}

func TestLoadPartialFileFillsRemainingDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	contents := "[network]\nbind_addr = \"0.0.0.0:9999\"\n\n[server]\ntick_hz = 60\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.BindAddr != "0.0.0.0:9999" {
		t.Fatalf("expected overridden bind address, got %q", c.BindAddr)
	}
	if c.TickInterval != time.Second/60 {
		t.Fatalf("expected overridden tick interval, got %v", c.TickInterval)
	}
	if c.HeartbeatPeriod != 5*time.Second {
		t.Fatalf("expected default heartbeat period to survive, got %v", c.HeartbeatPeriod)
	}
	if c.SpatialCellSize != 32 {
		t.Fatalf("expected default spatial cell size to survive, got %v", c.SpatialCellSize)
	}
}

func TestLoadInvalidTOMLIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("not = [valid"), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected an error for malformed TOML")
	}
}
