package voxel

import (
	"math"

	"github.com/pkg/errors"

	"github.com/MattNet/minetest-from-models/engine/util"
)

type FillStrategy int

const (
	// StrategyBruteForce walks every lattice step of the column and keeps
	// an inside/outside flag. Cost is proportional to the column height.
	// This is the reference strategy.
	StrategyBruteForce FillStrategy = iota
	// StrategyRunLength walks only the inside spans between event pairs.
	// Cost is proportional to the solid thickness of the column.
	StrategyRunLength
)

func (s FillStrategy) String() string {
	switch s {
	case StrategyBruteForce:
		return "bruteforce"
	case StrategyRunLength:
		return "runlength"
	}
	return "unknown"
}

func ParseStrategy(name string) (FillStrategy, error) {
	switch name {
	case "bruteforce", "brute-force":
		return StrategyBruteForce, nil
	case "runlength", "run-length":
		return StrategyRunLength, nil
	}
	return 0, errors.Errorf("unknown fill strategy %q (want bruteforce or runlength)", name)
}

// Config carries every knob of a voxelization run. It is passed by value
// into the voxelizer; there is no ambient configuration state.
type Config struct {
	// Granularity is the lattice step between sampled columns and between
	// z steps within a column. Halving it quadruples the column count.
	Granularity float64
	// RoundInput snaps every vertex coordinate to one decimal place
	// before the scan.
	RoundInput bool
	Strategy   FillStrategy
	// Epsilon is the numerical tolerance of the intersection test.
	Epsilon float64
	// Workers limits the scan goroutines; <=0 means one per CPU.
	Workers int
	// NodeName is the world node every occupied voxel becomes. The scan
	// itself never looks at it; it is handed through to the serializer.
	NodeName string
	// Progress, when set, is called periodically with (columns done,
	// columns total) from a single monitor goroutine.
	Progress func(done, total int)
}

func DefaultConfig() Config {
	return Config{
		Granularity: 1.0,
		Strategy:    StrategyBruteForce,
		Epsilon:     util.DefaultEpsilon,
		NodeName:    "default:stone",
	}
}

func (c Config) Validate() error {
	if c.Granularity <= 0 || math.IsNaN(c.Granularity) || math.IsInf(c.Granularity, 0) {
		return errors.Errorf("granularity must be a positive number, got %v", c.Granularity)
	}
	if c.Epsilon <= 0 || math.IsNaN(c.Epsilon) {
		return errors.Errorf("epsilon must be a positive number, got %v", c.Epsilon)
	}
	if c.Strategy != StrategyBruteForce && c.Strategy != StrategyRunLength {
		return errors.Errorf("unknown fill strategy %d", c.Strategy)
	}
	return nil
}
