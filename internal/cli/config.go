package cli

import (
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/diagramtool/diagramtool/pkg/errors"
	"github.com/diagramtool/diagramtool/pkg/pipeline"
)

const (
	// DefaultConfigFile is read from the working directory when --config is not given.
	DefaultConfigFile = "diagramtool.toml"

	// EnvCacheURL overrides the cache url of the config file.
	EnvCacheURL = "DIAGRAMTOOL_CACHE_URL"
)

// Config holds defaults for command flags. A flag given on the command line
// always wins over the file.
//
//	[cache]
//	url = "redis://localhost:6379/0"
//
//	[layout]
//	strategy = "rows"
//	margin = 40
//
//	[render]
//	formats = ["svg", "tex"]
//	show_border = true
type Config struct {
	Cache  CacheConfig  `toml:"cache"`
	Parse  ParseConfig  `toml:"parse"`
	Layout LayoutConfig `toml:"layout"`
	Render RenderConfig `toml:"render"`
	Serve  ServeConfig  `toml:"serve"`

	// Path is the file the config was read from, empty when none was found.
	Path string `toml:"-"`
}

type CacheConfig struct {
	URL string `toml:"url"`
}

type ParseConfig struct {
	NoImports     bool `toml:"no_imports"`
	TreeCacheSize int  `toml:"tree_cache_size"`
}

type LayoutConfig struct {
	Strategy    string  `toml:"strategy"`
	Margin      float64 `toml:"margin"`
	Recenter    bool    `toml:"recenter"`
	MaxRowWidth float64 `toml:"max_row_width"`
}

type RenderConfig struct {
	Formats    []string `toml:"formats"`
	ShowBorder bool     `toml:"show_border"`
	NamesOnly  bool     `toml:"names_only"`
	Standalone bool     `toml:"standalone"`
	Graphviz   bool     `toml:"graphviz"`
	Scale      float64  `toml:"scale"`
}

type ServeConfig struct {
	Addr string `toml:"addr"`
	Root string `toml:"root"`
}

// LoadConfig reads path, or DefaultConfigFile when path is empty. A missing
// default file yields an empty config; a missing explicit file is an error.
// Keys the file sets but Config does not know are rejected.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	md, err := toml.DecodeFile(path, cfg)
	switch {
	case err == nil:
		cfg.Path = path
	case os.IsNotExist(err) && !explicit:
		cfg = &Config{}
	case os.IsNotExist(err):
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
	default:
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "config file %s", path)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		sort.Strings(keys)
		return nil, errors.New(errors.ErrCodeInvalidFormat, "config file %s: unknown keys %s", path, strings.Join(keys, ", "))
	}

	if url := os.Getenv(EnvCacheURL); url != "" {
		cfg.Cache.URL = url
	}
	return cfg, nil
}

// changedFunc reports whether a flag was set on the command line.
type changedFunc func(name string) bool

func (c *Config) applyParse(opts *pipeline.Options, changed changedFunc) {
	if !changed("no-imports") && c.Parse.NoImports {
		opts.NoImports = true
	}
	if opts.TreeCacheSize == 0 {
		opts.TreeCacheSize = c.Parse.TreeCacheSize
	}
}

func (c *Config) applyLayout(opts *pipeline.Options, changed changedFunc) {
	if !changed("strategy") && c.Layout.Strategy != "" {
		opts.Strategy = c.Layout.Strategy
	}
	if !changed("margin") && c.Layout.Margin != 0 {
		opts.Margin = c.Layout.Margin
	}
	if !changed("recenter") && c.Layout.Recenter {
		opts.Recenter = true
	}
	if !changed("max-row-width") && c.Layout.MaxRowWidth != 0 {
		opts.MaxRowWidth = c.Layout.MaxRowWidth
	}
}

func (c *Config) applyRender(opts *pipeline.Options, changed changedFunc) {
	if !changed("format") && len(c.Render.Formats) > 0 {
		opts.Formats = c.Render.Formats
	}
	if !changed("show-border") && c.Render.ShowBorder {
		opts.Border = true
	}
	if !changed("names-only") && c.Render.NamesOnly {
		opts.NamesOnly = true
	}
	if !changed("standalone") && c.Render.Standalone {
		opts.Standalone = true
	}
	if !changed("graphviz") && c.Render.Graphviz {
		opts.Graphviz = true
	}
	if !changed("scale") && c.Render.Scale != 0 {
		opts.Scale = c.Render.Scale
	}
}
