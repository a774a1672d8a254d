// Package config loads and validates the chart-tally configuration. The
// schema is typed and checked once at load time so pattern or reference
// mistakes surface before any scan starts, not halfway through one.
package config

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/spf13/viper"

	"github.com/yourusername/chart-tally/internal/chart"
)

// ScanTarget selects what a profile extracts chart numbers from.
type ScanTarget string

const (
	ScanFiles   ScanTarget = "file"
	ScanFolders ScanTarget = "folder"
	ScanBoth    ScanTarget = "both"
)

// StringList can be given as either a single string or a list in YAML.
type StringList []string

// Equipment describes one scanned output location: a diagnostic device's
// directory, or one source of a union category. Immutable after Load.
type Equipment struct {
	ID              string     `mapstructure:"id"`
	Name            string     `mapstructure:"name"`
	Path            string     `mapstructure:"path"`
	DateFolder      string     `mapstructure:"date_folder"`
	Pattern         string     `mapstructure:"pattern"`
	Scan            ScanTarget `mapstructure:"scan"`
	Extensions      StringList `mapstructure:"extensions"`
	UseCreationTime bool       `mapstructure:"use_creation_time"`

	compiled *chart.Pattern
}

// CompiledPattern returns the pattern compiled during Load.
func (e *Equipment) CompiledPattern() *chart.Pattern { return e.compiled }

// ExtensionValid reports whether a filename carries one of the profile's
// eligible suffixes. An empty extension list accepts everything.
func (e *Equipment) ExtensionValid(name string) bool {
	if len(e.Extensions) == 0 {
		return true
	}
	lower := strings.ToLower(name)
	for _, ext := range e.Extensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Composite names an intersection metric over two equipment sets, e.g.
// glaucoma = HFA ∩ OCT.
type Composite struct {
	Name      string   `mapstructure:"name"`
	Intersect []string `mapstructure:"intersect"`
}

// Category is a logical tally serviced by independent archive locations whose
// per-source sets are unioned and deduplicated.
type Category struct {
	Name    string      `mapstructure:"name"`
	Sources []Equipment `mapstructure:"sources"`
}

// Config is the full application configuration.
type Config struct {
	Scan struct {
		Workers        int `mapstructure:"workers"`
		ProbeWorkers   int `mapstructure:"probe_workers"`
		ProbeBatchSize int `mapstructure:"probe_batch_size"`
	} `mapstructure:"scan"`
	Cache struct {
		Dir      string `mapstructure:"dir"`
		Disabled bool   `mapstructure:"disabled"`
	} `mapstructure:"cache"`
	Logging struct {
		Level      string `mapstructure:"level"`
		Format     string `mapstructure:"format"`
		File       string `mapstructure:"file"`
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
	} `mapstructure:"logging"`
	Validation struct {
		ChartNumberMin uint64 `mapstructure:"chart_number_min"`
		ChartNumberMax uint64 `mapstructure:"chart_number_max"`
	} `mapstructure:"validation"`
	Equipment  []Equipment `mapstructure:"equipment"`
	Composites []Composite `mapstructure:"composites"`
	Categories []Category  `mapstructure:"categories"`
}

// Rule returns the chart-number validation bounds.
func (c *Config) Rule() chart.Rule {
	return chart.Rule{Min: c.Validation.ChartNumberMin, Max: c.Validation.ChartNumberMax}
}

// EquipmentByID looks up a profile; nil when unknown.
func (c *Config) EquipmentByID(id string) *Equipment {
	for i := range c.Equipment {
		if c.Equipment[i].ID == id {
			return &c.Equipment[i]
		}
	}
	return nil
}

// StringOrSliceHookFunc lets StringList fields accept a bare string.
func StringOrSliceHookFunc() func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if t != reflect.TypeOf(StringList{}) {
			return data, nil
		}
		if f.Kind() == reflect.String {
			return StringList{data.(string)}, nil
		}
		if f.Kind() == reflect.Slice {
			v := reflect.ValueOf(data)
			result := make(StringList, v.Len())
			for i := 0; i < v.Len(); i++ {
				result[i] = fmt.Sprintf("%v", v.Index(i).Interface())
			}
			return result, nil
		}
		return data, nil
	}
}

// Load reads, decodes, and validates the configuration file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetDefault("scan.workers", 6)
	v.SetDefault("scan.probe_workers", 20)
	v.SetDefault("scan.probe_batch_size", 1000)
	v.SetDefault("cache.dir", ".chart-tally/cache")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.max_size_mb", 10)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("validation.chart_number_min", 1)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg, viper.DecodeHook(StringOrSliceHookFunc())); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.Equipment) == 0 {
		return fmt.Errorf("no equipment configured")
	}
	seen := make(map[string]bool, len(c.Equipment))
	for i := range c.Equipment {
		eq := &c.Equipment[i]
		if eq.ID == "" {
			return fmt.Errorf("equipment #%d has no id", i+1)
		}
		if seen[eq.ID] {
			return fmt.Errorf("duplicate equipment id %q", eq.ID)
		}
		seen[eq.ID] = true
		if err := prepareProfile(eq, eq.ID); err != nil {
			return err
		}
	}
	for ci := range c.Categories {
		cat := &c.Categories[ci]
		if cat.Name == "" {
			return fmt.Errorf("category #%d has no name", ci+1)
		}
		if len(cat.Sources) == 0 {
			return fmt.Errorf("category %q has no sources", cat.Name)
		}
		for si := range cat.Sources {
			src := &cat.Sources[si]
			if src.ID == "" {
				src.ID = fmt.Sprintf("%s/%d", cat.Name, si+1)
			}
			if err := prepareProfile(src, src.ID); err != nil {
				return err
			}
		}
	}
	for _, comp := range c.Composites {
		if comp.Name == "" {
			return fmt.Errorf("composite with empty name")
		}
		if len(comp.Intersect) != 2 {
			return fmt.Errorf("composite %q must intersect exactly two equipment ids", comp.Name)
		}
		for _, id := range comp.Intersect {
			if !seen[id] {
				return fmt.Errorf("composite %q references unknown equipment %q", comp.Name, id)
			}
		}
	}
	if max := c.Validation.ChartNumberMax; max != 0 && max < c.Validation.ChartNumberMin {
		return fmt.Errorf("chart_number_max %d is below chart_number_min %d", max, c.Validation.ChartNumberMin)
	}
	return nil
}

// prepareProfile compiles the pattern, normalizes extensions, and defaults the
// scan target.
func prepareProfile(eq *Equipment, label string) error {
	if eq.Path == "" {
		return fmt.Errorf("%s: path is required", label)
	}
	if eq.Pattern == "" {
		return fmt.Errorf("%s: pattern is required", label)
	}
	p, err := chart.Compile(eq.Pattern)
	if err != nil {
		return fmt.Errorf("%s: %w", label, err)
	}
	eq.compiled = p
	switch eq.Scan {
	case "":
		eq.Scan = ScanFiles
	case ScanFiles, ScanFolders, ScanBoth:
	default:
		return fmt.Errorf("%s: invalid scan target %q (want file, folder, or both)", label, eq.Scan)
	}
	for i, ext := range eq.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		eq.Extensions[i] = ext
	}
	return nil
}
