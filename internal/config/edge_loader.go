package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/charleschow/sog-edge/internal/core/edge"
)

type edgeLimitsFile struct {
	Thresholds struct {
		IndifferenceBand float64 `yaml:"indifference_band"`
		HighEdgePct      float64 `yaml:"high_edge_pct"`
		MediumEdgePct    float64 `yaml:"medium_edge_pct"`
	} `yaml:"thresholds"`
	Weighting struct {
		HalfLifeDays float64 `yaml:"half_life_days"`
	} `yaml:"weighting"`
}

// LoadEdgeLimits reads the edge engine thresholds from a YAML file.
// A missing file yields edge.DefaultParams rather than an error so the
// CLI commands work out of the box.
func LoadEdgeLimits(path string) (edge.Params, float64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return edge.DefaultParams, DefaultHalfLifeDays, nil
		}
		return edge.Params{}, 0, fmt.Errorf("read edge limits: %w", err)
	}

	var f edgeLimitsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return edge.Params{}, 0, fmt.Errorf("parse edge limits: %w", err)
	}

	params := edge.Params{
		IndifferenceBand: f.Thresholds.IndifferenceBand,
		HighEdgePct:      f.Thresholds.HighEdgePct,
		MediumEdgePct:    f.Thresholds.MediumEdgePct,
	}
	if params.IndifferenceBand <= 0 {
		params.IndifferenceBand = edge.DefaultParams.IndifferenceBand
	}
	if params.HighEdgePct <= 0 {
		params.HighEdgePct = edge.DefaultParams.HighEdgePct
	}
	if params.MediumEdgePct <= 0 {
		params.MediumEdgePct = edge.DefaultParams.MediumEdgePct
	}

	halfLife := f.Weighting.HalfLifeDays
	if halfLife <= 0 {
		halfLife = DefaultHalfLifeDays
	}

	return params, halfLife, nil
}

// DefaultHalfLifeDays is the exponential sample-weight half-life used when
// training: a game this many days old carries half the weight of today's.
const DefaultHalfLifeDays = 180.0
