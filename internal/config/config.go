// Package config loads and validates the reconstruction configuration: the
// decay hypothesis naming the mother and daughter species, and the selection
// cut set. Files are JSON with optional fields; accessors fill in defaults so
// a minimal file only states what it overrides. The loaded configuration is
// converted to plain value objects before it reaches the finder.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/viktorklochkov/PFSimple/internal/particle"
)

// maxConfigSize caps config files at 1MB to prevent loading huge files.
const maxConfigSize = 1 << 20

// ValidationError reports a configuration field that cannot be used.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Reason)
}

// Config is the on-disk configuration. All fields are optional; see the
// accessor methods for defaults.
type Config struct {
	Decay   *DecayConfig `json:"decay,omitempty"`
	Cuts    *CutsConfig  `json:"cuts,omitempty"`
	Workers *int         `json:"workers,omitempty"` // parallel event workers, 0 = one per CPU
}

// DecayConfig names the decay hypothesis by species names, e.g. mother "k0s"
// with daughters ["pion+", "pion-"].
type DecayConfig struct {
	Mother    *string  `json:"mother,omitempty"`
	Daughters []string `json:"daughters,omitempty"`
}

// CutsConfig holds optional selection thresholds. Omitted fields take the
// defaults in the Get accessors. Maximum cuts at or below zero are disabled;
// minimum cosine cuts of -1 pass everything.
type CutsConfig struct {
	Chi2PrimMin *float64 `json:"chi2_prim_min,omitempty"` // daughter detachment from the primary vertex
	DistanceMax *float64 `json:"distance_max,omitempty"`  // daughter separation at closest approach, cm
	CosOpenMin  *float64 `json:"cos_open_min,omitempty"`
	Chi2GeoMax  *float64 `json:"chi2_geo_max,omitempty"`
	LdLMin      *float64 `json:"ldl_min,omitempty"` // decay length significance
	LdLMax      *float64 `json:"ldl_max,omitempty"`
	CosTopoMin  *float64 `json:"cos_topo_min,omitempty"`
	Chi2TopoMax *float64 `json:"chi2_topo_max,omitempty"`

	// Three-daughter extension thresholds.
	DistanceToSVMax  *float64 `json:"distance_sv_max,omitempty"` // third daughter to pair vertex, cm
	CosOpenThreeMin  *float64 `json:"cos_open_three_min,omitempty"`
	Chi2GeoMaxThree  *float64 `json:"chi2_geo_max_three,omitempty"`
	LdLMinThree      *float64 `json:"ldl_min_three,omitempty"`
	CosTopoMinThree  *float64 `json:"cos_topo_min_three,omitempty"`
	Chi2TopoMaxThree *float64 `json:"chi2_topo_max_three,omitempty"`
}

// Default returns a configuration with no overrides: the standard V0 cut set
// and a K0s -> pi+ pi- hypothesis.
func Default() *Config {
	return &Config{}
}

// Load reads and validates a JSON configuration file.
func Load(path string) (*Config, error) {
	if !strings.HasSuffix(path, ".json") {
		return nil, fmt.Errorf("config file must have .json extension: %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat config file: %w", err)
	}
	if info.Size() > maxConfigSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigSize)
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration without building value objects.
func (c *Config) Validate() error {
	if _, err := c.BuildDecay(); err != nil {
		return err
	}
	cuts := c.BuildCuts()
	if err := cuts.Validate(); err != nil {
		return err
	}
	if c.Workers != nil && *c.Workers < 0 {
		return &ValidationError{Field: "workers", Reason: "must not be negative"}
	}
	return nil
}

// GetWorkers returns the configured worker count, 0 meaning one per CPU.
func (c *Config) GetWorkers() int {
	if c == nil || c.Workers == nil {
		return 0
	}
	return *c.Workers
}

// BuildDecay resolves the configured species names into a Decay value.
// A missing decay section defaults to K0s -> pi+ pi-.
func (c *Config) BuildDecay() (Decay, error) {
	if c == nil || c.Decay == nil {
		return Decay{
			Mother:     particle.KShort,
			Daughters:  [3]particle.Species{particle.PionPlus, particle.PionMinus},
			NDaughters: 2,
		}, nil
	}

	var d Decay
	if c.Decay.Mother == nil {
		return d, &ValidationError{Field: "decay.mother", Reason: "missing"}
	}
	mother, ok := particle.SpeciesByName(*c.Decay.Mother)
	if !ok {
		return d, &ValidationError{Field: "decay.mother", Reason: fmt.Sprintf("unknown species %q", *c.Decay.Mother)}
	}
	d.Mother = mother

	if n := len(c.Decay.Daughters); n < 2 || n > 3 {
		return d, &ValidationError{Field: "decay.daughters", Reason: fmt.Sprintf("need 2 or 3 daughters, got %d", n)}
	}
	for i, name := range c.Decay.Daughters {
		sp, ok := particle.SpeciesByName(name)
		if !ok {
			return d, &ValidationError{Field: "decay.daughters", Reason: fmt.Sprintf("unknown species %q", name)}
		}
		d.Daughters[i] = sp
	}
	d.NDaughters = len(c.Decay.Daughters)

	if err := d.Validate(); err != nil {
		return d, err
	}
	return d, nil
}

// BuildCuts assembles the cut values, filling defaults for omitted fields.
func (c *Config) BuildCuts() Cuts {
	var cc *CutsConfig
	if c != nil {
		cc = c.Cuts
	}
	return Cuts{
		Chi2PrimMin:      cc.getChi2PrimMin(),
		DistanceMax:      cc.getDistanceMax(),
		CosOpenMin:       cc.getCosOpenMin(),
		Chi2GeoMax:       cc.getChi2GeoMax(),
		LdLMin:           cc.getLdLMin(),
		LdLMax:           cc.getLdLMax(),
		CosTopoMin:       cc.getCosTopoMin(),
		Chi2TopoMax:      cc.getChi2TopoMax(),
		DistanceToSVMax:  cc.getDistanceToSVMax(),
		CosOpenThreeMin:  cc.getCosOpenThreeMin(),
		Chi2GeoMaxThree:  cc.getChi2GeoMaxThree(),
		LdLMinThree:      cc.getLdLMinThree(),
		CosTopoMinThree:  cc.getCosTopoMinThree(),
		Chi2TopoMaxThree: cc.getChi2TopoMaxThree(),
	}
}

func getOr(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func (c *CutsConfig) getChi2PrimMin() float64 {
	if c == nil {
		return 18.42
	}
	return getOr(c.Chi2PrimMin, 18.42)
}

func (c *CutsConfig) getDistanceMax() float64 {
	if c == nil {
		return 1.0
	}
	return getOr(c.DistanceMax, 1.0)
}

func (c *CutsConfig) getCosOpenMin() float64 {
	if c == nil {
		return -1.0
	}
	return getOr(c.CosOpenMin, -1.0)
}

func (c *CutsConfig) getChi2GeoMax() float64 {
	if c == nil {
		return 3.0
	}
	return getOr(c.Chi2GeoMax, 3.0)
}

func (c *CutsConfig) getLdLMin() float64 {
	if c == nil {
		return 5.0
	}
	return getOr(c.LdLMin, 5.0)
}

func (c *CutsConfig) getLdLMax() float64 {
	if c == nil {
		return 0
	}
	return getOr(c.LdLMax, 0)
}

func (c *CutsConfig) getCosTopoMin() float64 {
	if c == nil {
		return -1.0
	}
	return getOr(c.CosTopoMin, -1.0)
}

func (c *CutsConfig) getChi2TopoMax() float64 {
	if c == nil {
		return 0
	}
	return getOr(c.Chi2TopoMax, 0)
}

func (c *CutsConfig) getDistanceToSVMax() float64 {
	if c == nil {
		return 1.0
	}
	return getOr(c.DistanceToSVMax, 1.0)
}

func (c *CutsConfig) getCosOpenThreeMin() float64 {
	if c == nil {
		return -1.0
	}
	return getOr(c.CosOpenThreeMin, -1.0)
}

func (c *CutsConfig) getChi2GeoMaxThree() float64 {
	if c == nil {
		return 3.0
	}
	return getOr(c.Chi2GeoMaxThree, 3.0)
}

func (c *CutsConfig) getLdLMinThree() float64 {
	if c == nil {
		return 5.0
	}
	return getOr(c.LdLMinThree, 5.0)
}

func (c *CutsConfig) getCosTopoMinThree() float64 {
	if c == nil {
		return -1.0
	}
	return getOr(c.CosTopoMinThree, -1.0)
}

func (c *CutsConfig) getChi2TopoMaxThree() float64 {
	if c == nil {
		return 0
	}
	return getOr(c.Chi2TopoMaxThree, 0)
}
