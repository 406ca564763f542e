// Package config holds the film stock catalogue, per-film defaults, and
// the user's corrections, with the bounds each must fall within.
package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v2"

	"github.com/abworrall/positif/pkg/emath"
	"github.com/abworrall/positif/pkg/histogram"
	"github.com/abworrall/positif/pkg/positive"
)

/* Example catalogue file ...

temperaturecorrections: curves/temperature.bin
bitspersample: 16
histogram:
  binwidth: 16
  threshold: 0.01
  borderheight: 0.15
  borderwidth: 0.20
filmcurves:
  ektar:
    path: curves/ektar
    degree: 3
  portra160:
    path: curves/portra160.bin

*/

// A FilmSource says where a film stock's curves live. A directory holds
// red.bin, green.bin and blue.bin; a file is a packed curve set.
type FilmSource struct {
	Path   string
	Degree int // Only used for directories; 0 means the default
}

type Config struct {
	Verbosity int

	// From the catalogue file
	BitsPerSample          int
	TemperatureCorrections string
	Histogram              histogram.Config
	FilmCurves             map[string]FilmSource

	// Per run; film defaults fill these in, then command line flags override
	Film             string
	Contrast         float64
	Red, Green, Blue float64
	Temperature      float64 // Kelvin; 0 means no white balance correction
	MidLevel         float64 // 0 means estimate from the histogram
	Flip             bool
	Linear           bool
	Downsample       int
	Region           []int     // y0 x0 y1 x1
	UserWhiteBalance []float64 // R G B G multipliers
	Format           string
}

func NewConfig() Config {
	return Config{
		BitsPerSample: 16,
		Histogram:     histogram.DefaultConfig(),
		FilmCurves:    map[string]FilmSource{},
		Downsample:    1,
	}
}

// Load reads a catalogue file. Relative paths inside it are taken
// relative to the file.
func Load(filename string) (Config, error) {
	contents, err := os.ReadFile(filename)
	if err != nil {
		return Config{}, fmt.Errorf("config read %s: %w", filename, err)
	}

	c, err := newConfigFromYaml(contents)
	if err != nil {
		return c, fmt.Errorf("config parse %s: %w", filename, err)
	}

	base := filepath.Dir(filename)
	c.TemperatureCorrections = resolve(base, c.TemperatureCorrections)
	for name, src := range c.FilmCurves {
		src.Path = resolve(base, src.Path)
		c.FilmCurves[name] = src
	}

	return c, nil
}

func newConfigFromYaml(b []byte) (Config, error) {
	c := NewConfig()
	err := yaml.Unmarshal(b, &c)
	return c, err
}

func resolve(base, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}

func (c Config) AsYaml() string {
	b, err := yaml.Marshal(c)
	if err != nil {
		log.Fatalf("Can't marshal config yaml: %v\n", err)
	}
	return string(b)
}

// FilmStocks lists the catalogue's film names
func (c Config) FilmStocks() []string {
	names := []string{}
	for name := range c.FilmCurves {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilmSource looks up the selected film
func (c Config) FilmSource() (FilmSource, error) {
	src, ok := c.FilmCurves[c.Film]
	if !ok {
		return src, fmt.Errorf("no film stock named %q, have %v", c.Film, c.FilmStocks())
	}
	return src, nil
}

// Corrections packages the per-run values for the converter. Gains come
// from the white balance table, which the caller looks up.
func (c Config) Corrections(gains *emath.Vec3) positive.Corrections {
	return positive.Corrections{
		Contrast:     c.Contrast,
		Offsets:      emath.Vec3{c.Red, c.Green, c.Blue},
		WhiteBalance: gains,
		MiddleLevel:  c.MidLevel,
	}
}
