// Package config loads server tuning from a TOML file, following the same
// UserConfig-then-convert shape the rest of this stack uses for on-disk
// settings. A missing file is not an error: every field falls back to the
// defaults named in the timing-constants table.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"

	"github.com/tilekeep/server/game"
	"github.com/tilekeep/server/region"
)

// UserConfig is the on-disk TOML shape. Every field is optional; a field
// left at its zero value is replaced by DefaultConfig's value when the
// file itself is present but incomplete — see Load.
type UserConfig struct {
	// Network holds the UDP listener's bind address.
	Network struct {
		// BindAddr is the address the SocketServer listens on.
		BindAddr string `toml:"bind_addr"`
	} `toml:"network"`

	// Server holds simulation tuning.
	Server struct {
		// TickHz is a simulation rate, in ticks per second, converted
		// into Config.TickInterval. The Gamestate tick loop does not
		// read it: it always runs at timer.ServerTicksPerSecond.
		TickHz float64 `toml:"tick_hz"`

		// HeartbeatIntervalSec is a heartbeat period, in seconds,
		// converted into Config.HeartbeatPeriod. The transport does not
		// read it: it pings every session.HeartbeatInterval and evicts
		// after session.EvictAfter.
		HeartbeatIntervalSec float64 `toml:"heartbeat_interval_sec"`

		// ProjectileLifespanSec is a projectile lifespan, in seconds,
		// converted into Config.Projectile. The Gamestate does not read
		// it: projectiles expire after game.ProjectileLifespanSeconds.
		ProjectileLifespanSec float64 `toml:"projectile_lifespan_sec"`

		// SpatialCellSize is the uniform grid's cell size, in world
		// units.
		SpatialCellSize float64 `toml:"spatial_cell_size"`

		// OutboundChannelCapacity bounds the channel the simulation
		// loop posts outbound configurations through.
		OutboundChannelCapacity int `toml:"outbound_channel_capacity"`
	} `toml:"server"`

	// World holds region loading.
	World struct {
		// RegionDir is the directory of "*.toml" region descriptors.
		RegionDir string `toml:"region_dir"`

		// SpawnRegion names the region joining players spawn in. If
		// empty, the first loaded region is used.
		SpawnRegion string `toml:"spawn_region"`
	} `toml:"world"`
}

// DefaultConfig returns the hardcoded defaults every field falls back to.
func DefaultConfig() UserConfig {
	var c UserConfig
	c.Network.BindAddr = "127.0.0.1:31013"
	c.Server.TickHz = 180
	c.Server.HeartbeatIntervalSec = 5
	c.Server.ProjectileLifespanSec = 10
	c.Server.SpatialCellSize = 32
	c.Server.OutboundChannelCapacity = 32
	c.World.RegionDir = "assets/regions"
	c.World.SpawnRegion = ""
	return c
}

// Config is the resolved settings a UserConfig converts into.
// BindAddr, OutboundChannelCapacity, SpatialCellSize, RegionDir and
// SpawnRegion are what transport.Listen, game.Config and the region loader
// take; TickInterval, HeartbeatPeriod and Projectile are converted but not
// passed to any of them.
type Config struct {
	BindAddr string

	TickInterval    time.Duration
	HeartbeatPeriod time.Duration
	Projectile      time.Duration

	SpatialCellSize         float64
	OutboundChannelCapacity int

	RegionDir   string
	SpawnRegion string
}

// Config converts uc into a resolved Config, filling any zero-valued
// field with DefaultConfig's value first.
func (uc UserConfig) Config() Config {
	d := DefaultConfig()
	if uc.Network.BindAddr == "" {
		uc.Network.BindAddr = d.Network.BindAddr
	}
	if uc.Server.TickHz == 0 {
		uc.Server.TickHz = d.Server.TickHz
	}
	if uc.Server.HeartbeatIntervalSec == 0 {
		uc.Server.HeartbeatIntervalSec = d.Server.HeartbeatIntervalSec
	}
	if uc.Server.ProjectileLifespanSec == 0 {
		uc.Server.ProjectileLifespanSec = d.Server.ProjectileLifespanSec
	}
	if uc.Server.SpatialCellSize == 0 {
		uc.Server.SpatialCellSize = d.Server.SpatialCellSize
	}
	if uc.Server.OutboundChannelCapacity == 0 {
		uc.Server.OutboundChannelCapacity = d.Server.OutboundChannelCapacity
	}
	if uc.World.RegionDir == "" {
		uc.World.RegionDir = d.World.RegionDir
	}

	return Config{
		BindAddr:                uc.Network.BindAddr,
		TickInterval:            time.Duration(float64(time.Second) / uc.Server.TickHz),
		HeartbeatPeriod:         time.Duration(uc.Server.HeartbeatIntervalSec * float64(time.Second)),
		Projectile:              time.Duration(uc.Server.ProjectileLifespanSec * float64(time.Second)),
		SpatialCellSize:         uc.Server.SpatialCellSize,
		OutboundChannelCapacity: uc.Server.OutboundChannelCapacity,
		RegionDir:               uc.World.RegionDir,
		SpawnRegion:             uc.World.SpawnRegion,
	}
}

// Load reads a TOML file at path and converts it to a resolved Config. A
// missing file is not an error: Load returns DefaultConfig().Config()
// unchanged. Any other read or parse failure is returned as an error.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return DefaultConfig().Config(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %q: %w", path, err)
	}

	uc := DefaultConfig()
	if err := toml.Unmarshal(raw, &uc); err != nil {
		return Config{}, fmt.Errorf("config: parsing %q: %w", path, err)
	}
	return uc.Config(), nil
}

// LoadRegions loads every region descriptor from c.RegionDir into a
// region.Provider; GameConfig then pairs that provider with c.SpawnRegion.
// Kept here rather than in game so the game package never needs to know
// about the filesystem.
func LoadRegions(c Config) (*region.Provider, error) {
	return region.LoadDir(c.RegionDir)
}

// GameConfig builds a game.Config from c and an already-loaded region
// set.
func (c Config) GameConfig(regions *region.Provider) game.Config {
	return game.Config{
		SpatialCellSize: c.SpatialCellSize,
		Regions:         regions,
		SpawnRegion:     c.SpawnRegion,
	}
}
