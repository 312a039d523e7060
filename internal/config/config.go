package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/zeusync/navgraph/internal/core/observability/log"
	"github.com/zeusync/navgraph/internal/core/waypoint"
)

var (
	ErrInvalid       = errors.New("invalid configuration")
	ErrUnknownFormat = errors.New("unknown configuration format")
)

// Config holds every tunable of the navigation service. Zero-valued fields
// left out of a file keep their defaults.
type Config struct {
	Log     LogConfig     `json:"log" yaml:"log"`
	Store   StoreConfig   `json:"store" yaml:"store"`
	Builder BuilderConfig `json:"builder" yaml:"builder"`
	Search  SearchConfig  `json:"search" yaml:"search"`
}

type LogConfig struct {
	Level       log.Level `json:"level" yaml:"level"`
	Development bool      `json:"development" yaml:"development"`
	OutputPaths []string  `json:"output_paths,omitempty" yaml:"output_paths,omitempty"`
}

type StoreConfig struct {
	// CellSize is the spatial index cell edge length in world units.
	CellSize float64 `json:"cell_size" yaml:"cell_size"`
	// MergeRadius > 0 makes AddWaypoint reuse an existing waypoint within
	// this distance instead of inserting a duplicate.
	MergeRadius float64 `json:"merge_radius" yaml:"merge_radius"`
}

type BuilderConfig struct {
	MaxEdgeLength float64 `json:"max_edge_length" yaml:"max_edge_length"`
	Workers       int     `json:"workers" yaml:"workers"`
	Symmetric     bool    `json:"symmetric" yaml:"symmetric"`
	KeepExisting  bool    `json:"keep_existing" yaml:"keep_existing"`
	// RelinkOnMove re-tests a waypoint's edges after every move.
	RelinkOnMove bool `json:"relink_on_move" yaml:"relink_on_move"`
}

type SearchConfig struct {
	// MaxExpansions > 0 bounds each search and enables partial paths.
	MaxExpansions int `json:"max_expansions" yaml:"max_expansions"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		Log: LogConfig{
			Level: log.LevelInfo,
		},
		Store: StoreConfig{
			CellSize: waypoint.DefaultCellSize,
		},
		Builder: BuilderConfig{
			Workers: 1,
		},
	}
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var err error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			err = multierr.Append(err, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}
	check(c.Store.CellSize > 0, "store.cell_size must be positive, got %v", c.Store.CellSize)
	check(c.Store.MergeRadius >= 0, "store.merge_radius must not be negative, got %v", c.Store.MergeRadius)
	check(c.Builder.MaxEdgeLength >= 0, "builder.max_edge_length must not be negative, got %v", c.Builder.MaxEdgeLength)
	check(c.Builder.Workers >= 0, "builder.workers must not be negative, got %d", c.Builder.Workers)
	check(c.Search.MaxExpansions >= 0, "search.max_expansions must not be negative, got %d", c.Search.MaxExpansions)
	return err
}

// LoadJSON decodes a JSON document over the defaults and validates it.
func LoadJSON(r io.Reader) (Config, error) {
	c := Default()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&c); err != nil {
		return Config{}, fmt.Errorf("decode json config: %w", err)
	}
	return c, c.Validate()
}

// LoadYAML decodes a YAML document over the defaults and validates it.
func LoadYAML(r io.Reader) (Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode yaml config: %w", err)
	}
	return c, c.Validate()
}

// LoadFile picks the decoder from the file extension.
func LoadFile(path string) (Config, error) {
	var load func(io.Reader) (Config, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		load = LoadYAML
	case ".json":
		load = LoadJSON
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownFormat, path)
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, err
	}
	defer f.Close()

	c, err := load(f)
	if err != nil {
		return Config{}, fmt.Errorf("load %s: %w", path, err)
	}
	return c, nil
}
