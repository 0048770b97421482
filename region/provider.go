package region

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
	"github.com/tilekeep/server/geom"
)

// descriptor mirrors a region's on-disk TOML shape: {name, description,
// spawn, file, vertices, tile_size}.
type descriptor struct {
	Name        string       `toml:"name"`
	Description string       `toml:"description"`
	Spawn       [3]float64   `toml:"spawn"`
	File        string       `toml:"file"`
	Vertices    [][3]float64 `toml:"vertices"`
	TileSize    float64      `toml:"tile_size"`
}

// Provider answers point-in-region and AABB-in-region queries by keeping a
// flat list of loaded regions and doing a linear polygon test. Worlds in
// this scope hold, at most, a handful of regions, so no further spatial
// indexing of the regions themselves is warranted.
type Provider struct {
	regions []Region
}

// NewProvider returns a Provider with no regions loaded.
func NewProvider() *Provider {
	return &Provider{}
}

// Add registers r with the provider.
func (p *Provider) Add(r Region) {
	p.regions = append(p.regions, r)
}

// Regions returns every loaded region.
func (p *Provider) Regions() []Region {
	return p.regions
}

// Len returns the number of loaded regions.
func (p *Provider) Len() int { return len(p.regions) }

// Find returns the first region whose polygon contains point.
func (p *Provider) Find(point geom.Vec3) (Region, bool) {
	for _, r := range p.regions {
		if r.Contains(point) {
			return r, true
		}
	}
	return Region{}, false
}

// FindByName returns the region with the given name.
func (p *Provider) FindByName(name string) (Region, bool) {
	for _, r := range p.regions {
		if r.Name == name {
			return r, true
		}
	}
	return Region{}, false
}

// FindBounds returns the first region whose polygon fully contains bounds.
func (p *Provider) FindBounds(bounds geom.Bounds) (Region, bool) {
	for _, r := range p.regions {
		if r.ContainsBounds(bounds) {
			return r, true
		}
	}
	return Region{}, false
}

// LoadDir loads every "*.toml" descriptor file in dir into a new Provider.
// A region directory that yields zero regions is reported as an error: per
// the server's error handling policy this is fatal at startup since no
// player can ever be spawned.
func LoadDir(dir string) (*Provider, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("region: reading directory %q: %w", dir, err)
	}

	p := NewProvider()
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".toml" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		r, err := loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("region: loading %q: %w", path, err)
		}
		p.Add(r)
	}

	if p.Len() == 0 {
		return nil, fmt.Errorf("region: directory %q yielded zero regions", dir)
	}
	return p, nil
}

func loadFile(path string) (Region, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Region{}, err
	}

	var d descriptor
	if err := toml.Unmarshal(raw, &d); err != nil {
		return Region{}, fmt.Errorf("parsing descriptor: %w", err)
	}
	if len(d.Vertices) < 3 {
		return Region{}, fmt.Errorf("region %q needs at least 3 vertices, got %d", d.Name, len(d.Vertices))
	}

	vertices := make([]geom.Vec3, len(d.Vertices))
	for i, v := range d.Vertices {
		vertices[i] = geom.NewVec3(v[0], v[1], v[2])
	}
	spawn := geom.NewVec3(d.Spawn[0], d.Spawn[1], d.Spawn[2])

	return New(d.Name, d.Description, spawn, vertices, d.TileSize), nil
}
