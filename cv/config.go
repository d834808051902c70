// Package cv is the cross-validation driver: it runs repeated seeded
// 50/50 splits of a dataset, sweeps a hyperparameter grid on each split,
// keeps the best model per split and emits a tabular summary comparable
// across model families. Each (split, grid point) unit of work is
// independent; units run in parallel, and a failing unit never aborts its
// siblings.
package cv

import (
	"bufio"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gorulex/gorulex/search"
)

// A Grid lists the bound values to sweep. Every combination of one value
// per dimension is searched.
type Grid struct {
	MaxD    []int `yaml:"maxD"`
	MaxE    []int `yaml:"maxE"`
	MaxBody []int `yaml:"maxBody"`
}

// Combos expands the grid into the list of bound triples to search, in
// row-major order (maxD outermost, maxBody innermost).
func (g Grid) Combos() []search.Bounds {
	var combos []search.Bounds
	for _, d := range g.MaxD {
		for _, e := range g.MaxE {
			for _, b := range g.MaxBody {
				combos = append(combos, search.Bounds{MaxD: d, MaxE: e, MaxBody: b})
			}
		}
	}
	return combos
}

// A Config describes one cross-validation experiment.
type Config struct {
	Class     int     `yaml:"class"`     // class attribute index
	Grid      Grid    `yaml:"grid"`      // hyperparameter grid
	Seeds     []int64 `yaml:"seeds"`     // partition seeds; overrides SeedsFile
	SeedsFile string  `yaml:"seedsFile"` // optional file with one seed per line
	Workers   int     `yaml:"workers"`   // parallel units; 0 means NumCPU
	OutDir    string  `yaml:"outDir"`    // where per-split model reports go
}

// DefaultConfig returns the reference experiment setup: the breast-cancer
// grid, ten default seeds, the label on attribute 10 and reports under
// runs/.
func DefaultConfig() Config {
	return Config{
		Class: 10,
		Grid: Grid{
			MaxD:    []int{4, 5},
			MaxE:    []int{1, 2},
			MaxBody: []int{2, 3, 4},
		},
		Workers: runtime.NumCPU(),
		OutDir:  "runs",
	}
}

// LoadConfig reads a YAML experiment config, applying defaults for
// anything the file leaves out.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config %q: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %q: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	if len(c.Grid.MaxD) == 0 || len(c.Grid.MaxE) == 0 || len(c.Grid.MaxBody) == 0 {
		return fmt.Errorf("grid must list at least one value per dimension")
	}
	if c.Class < 0 {
		return fmt.Errorf("class attribute index must not be negative, got %d", c.Class)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// ResolveSeeds returns the seeds the experiment runs with: explicit
// config seeds if present, otherwise the seeds file, otherwise the
// default deterministic sequence 0..9.
func (c Config) ResolveSeeds() ([]int64, error) {
	if len(c.Seeds) > 0 {
		return c.Seeds, nil
	}
	return ReadSeeds(c.SeedsFile)
}

// ReadSeeds reads one integer seed per line from path. An empty path, a
// missing file or a file with no seeds all yield the default sequence
// 0..9, so runs are reproducible without any setup.
func ReadSeeds(path string) ([]int64, error) {
	if path == "" {
		return defaultSeeds(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return defaultSeeds(), nil
		}
		return nil, fmt.Errorf("could not open seeds file %q: %w", path, err)
	}
	defer f.Close()
	var seeds []int64
	scanner := bufio.NewScanner(f)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		seed, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("seeds file %q, line %d: %q is not an integer", path, line, text)
		}
		seeds = append(seeds, seed)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("could not read seeds file %q: %w", path, err)
	}
	if len(seeds) == 0 {
		return defaultSeeds(), nil
	}
	return seeds, nil
}

func defaultSeeds() []int64 {
	seeds := make([]int64, 10)
	for i := range seeds {
		seeds[i] = int64(i)
	}
	return seeds
}
