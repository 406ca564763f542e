package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

/* Example film defaults file, kept beside the curves ...

contrast:
  correction: 0.5
channels:
  red: 0.02
  blue: -0.01
white-balance:
  temperature: auto
orientation:
  flip: true

*/

// FilmDefaults are a film stock's preferred corrections. Unset fields are nil.
type FilmDefaults struct {
	Contrast struct {
		Correction *float64
	}
	Channels struct {
		Red, Green, Blue *float64
	}
	WhiteBalance struct {
		Temperature interface{} // A number, or "auto" for none
	} `yaml:"white-balance"`
	Orientation struct {
		Flip *bool
	}
}

// DefaultsPath is where a film's defaults live: defaults.yaml inside a
// curve directory, or <name>.yaml beside a packed curve file.
func (src FilmSource) DefaultsPath() string {
	if item, err := os.Stat(src.Path); err == nil && item.IsDir() {
		return filepath.Join(src.Path, "defaults.yaml")
	}
	return strings.TrimSuffix(src.Path, filepath.Ext(src.Path)) + ".yaml"
}

// LoadFilmDefaults reads the film's defaults file. A missing file is not
// an error; it just has no defaults.
func LoadFilmDefaults(src FilmSource) (FilmDefaults, error) {
	d := FilmDefaults{}
	filename := src.DefaultsPath()

	contents, err := os.ReadFile(filename)
	if os.IsNotExist(err) {
		return d, nil
	} else if err != nil {
		return d, fmt.Errorf("film defaults read %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(contents, &d); err != nil {
		return d, fmt.Errorf("film defaults parse %s: %w", filename, err)
	}
	if _, err := d.temperature(); err != nil {
		return d, fmt.Errorf("film defaults %s: %w", filename, err)
	}
	return d, nil
}

// temperature decodes the white balance entry; nil means not given.
func (d FilmDefaults) temperature() (*float64, error) {
	var k float64
	switch v := d.WhiteBalance.Temperature.(type) {
	case nil:
		return nil, nil
	case int:
		k = float64(v)
	case float64:
		k = v
	case string:
		if v != "auto" {
			return nil, fmt.Errorf("white balance temperature %q, want a number or \"auto\"", v)
		}
		k = 0
	default:
		return nil, fmt.Errorf("white balance temperature %v has unhandled type %T", v, v)
	}
	return &k, nil
}

// ApplyDefaults fills in per-run values from the film's defaults, except
// those named in `explicit` (e.g. set by command line flags). Flip is
// only ever turned on.
func (c *Config) ApplyDefaults(d FilmDefaults, explicit map[string]bool) {
	set := func(name string, dst *float64, src *float64) {
		if src != nil && !explicit[name] {
			*dst = *src
		}
	}

	set("contrast", &c.Contrast, d.Contrast.Correction)
	set("red", &c.Red, d.Channels.Red)
	set("green", &c.Green, d.Channels.Green)
	set("blue", &c.Blue, d.Channels.Blue)
	if k, err := d.temperature(); err == nil {
		set("temperature", &c.Temperature, k)
	}

	if !c.Flip && d.Orientation.Flip != nil {
		c.Flip = *d.Orientation.Flip
	}
}
