package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abworrall/positif/pkg/config"
	"github.com/abworrall/positif/pkg/emath"
	"github.com/abworrall/positif/pkg/filmcurve"
	"github.com/abworrall/positif/pkg/histogram"
	"github.com/abworrall/positif/pkg/positive"
	"github.com/abworrall/positif/pkg/rawio"
	"github.com/abworrall/positif/pkg/report"
	"github.com/abworrall/positif/pkg/whitebalance"
)

var (
	fVerbosity   int
	fConfig      string
	fFilm        string
	fListFilms   bool
	fContrast    float64
	fRed         float64
	fGreen       float64
	fBlue        float64
	fTemperature float64
	fMidLevel    float64
	fFlip        bool
	fLinear      bool
	fDownsample  int
	fRegion      string
	fWhiteBal    string
	fFormat      string
	fOutput      string
	fPlot        bool
	fHDR         bool
)

func init() {
	flag.IntVar(&fVerbosity, "v", 0, "how verbose to get")
	flag.StringVar(&fConfig, "config", "positif.yaml", "film stock catalogue")
	flag.StringVar(&fFilm, "film", "", "film stock to use (see -list)")
	flag.BoolVar(&fListFilms, "list", false, "list the film stocks in the catalogue, and exit")

	flag.Float64Var(&fContrast, "contrast", 0, "contrast correction, in stops ("+bounds(config.ContrastLower, config.ContrastUpper)+")")
	flag.Float64Var(&fRed, "red", 0, "red channel correction ("+bounds(config.ChannelLower, config.ChannelUpper)+")")
	flag.Float64Var(&fGreen, "green", 0, "green channel correction ("+bounds(config.ChannelLower, config.ChannelUpper)+")")
	flag.Float64Var(&fBlue, "blue", 0, "blue channel correction ("+bounds(config.ChannelLower, config.ChannelUpper)+")")
	flag.Float64Var(&fTemperature, "temperature", 0, "white balance temperature in Kelvin; 0 for none")
	flag.Float64Var(&fMidLevel, "midlevel", 0, "middle level as a fraction of max (raw-level curves only); 0 to estimate")

	flag.BoolVar(&fFlip, "flip", false, "mirror the image horizontally")
	flag.BoolVar(&fLinear, "linear", false, "input is linear; gamma encode the output")
	flag.IntVar(&fDownsample, "downsample", 1, fmt.Sprintf("shrink the image by this factor, one of %v", config.DownsampleFactors))
	flag.StringVar(&fRegion, "region", "", "crop to y0,x0,y1,x1 before converting")
	flag.StringVar(&fWhiteBal, "wb", "", "user white balance multipliers r,g,b,g")

	flag.StringVar(&fFormat, "format", "", "in batch mode, the input file extension (default tif and tiff)")
	flag.StringVar(&fOutput, "o", "", "output file, or directory in batch mode")
	flag.BoolVar(&fPlot, "plot", false, "also write a PNG plot of the LUT")
	flag.BoolVar(&fHDR, "hdr", false, "also write the unclipped positive as Radiance HDR")
	flag.Parse()

	log.Printf("positif starting\n")
}

func bounds(lo, hi float64) string { return fmt.Sprintf("%g to %g", lo, hi) }

func main() {
	cfg, err := config.Load(fConfig)
	if err != nil {
		log.Fatal(err)
	}

	if fListFilms {
		for _, name := range cfg.FilmStocks() {
			fmt.Println(name)
		}
		return
	}

	if flag.NArg() != 1 {
		log.Fatalf("usage: positif [flags] <file-or-dir>\n")
	}

	if err := setFromFlags(&cfg); err != nil {
		log.Fatal(err)
	}

	src, err := cfg.FilmSource()
	if err != nil {
		log.Fatal(err)
	}
	defaults, err := config.LoadFilmDefaults(src)
	if err != nil {
		log.Fatal(err)
	}
	set := []string{}
	flag.Visit(func(f *flag.Flag) { set = append(set, f.Name) })
	cfg.ApplyDefaults(defaults, config.Explicit(set))

	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if cfg.Verbosity > 0 {
		log.Printf("Final configuration:-\n\n%s\n", cfg.AsYaml())
	}

	curves, err := filmcurve.Load(src.Path, src.Degree)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Verbosity > 0 {
		log.Printf("curves: %s\n", curves)
	}

	gains, err := whiteBalanceGains(cfg)
	if err != nil {
		log.Fatal(err)
	}
	corr := cfg.Corrections(gains)

	jobs, err := rawio.FindJobs(flag.Arg(0), fOutput, cfg.Format)
	if err != nil {
		log.Fatal(err)
	}

	failed := 0
	for _, j := range jobs {
		if err := convertOne(cfg, curves, corr, j); err != nil {
			log.Printf("%s: %v\n", j.In, err)
			failed++
		}
	}

	if failed > 0 {
		log.Printf("%d of %d images failed\n", failed, len(jobs))
		os.Exit(1)
	}
}

func setFromFlags(cfg *config.Config) error {
	cfg.Verbosity = fVerbosity
	cfg.Film = fFilm
	cfg.Contrast = fContrast
	cfg.Red, cfg.Green, cfg.Blue = fRed, fGreen, fBlue
	cfg.Temperature = fTemperature
	cfg.MidLevel = fMidLevel
	cfg.Flip = fFlip
	cfg.Linear = fLinear
	cfg.Downsample = fDownsample
	cfg.Format = fFormat

	if fRegion != "" {
		if err := cfg.SetRegion(fRegion); err != nil {
			return fmt.Errorf("-region: %w", err)
		}
	}
	if fWhiteBal != "" {
		if err := cfg.SetUserWhiteBalance(fWhiteBal); err != nil {
			return fmt.Errorf("-wb: %w", err)
		}
	}

	return nil
}

func whiteBalanceGains(cfg config.Config) (*emath.Vec3, error) {
	if cfg.Temperature <= 0 {
		return nil, nil
	}
	if cfg.TemperatureCorrections == "" {
		return nil, fmt.Errorf("temperature %.0fK given, but the catalogue has no temperaturecorrections table", cfg.Temperature)
	}

	wb, err := whitebalance.LoadTable(cfg.TemperatureCorrections)
	if err != nil {
		return nil, err
	}
	gains, ok := wb.Gains(cfg.Temperature)
	if !ok {
		return nil, nil
	}
	if cfg.Verbosity > 0 {
		lo, hi := wb.Range()
		log.Printf("white balance %.0fK (table %.0fK-%.0fK): gains %s\n", cfg.Temperature, lo, hi, gains)
	}
	return &gains, nil
}

func convertOne(cfg config.Config, curves *filmcurve.FilmCurveSet, corr positive.Corrections, j rawio.Job) error {
	tStart := time.Now()

	pb, md, err := rawio.LoadTIFF(j.In, rawio.LoadOptions{
		BitsPerSample:    cfg.BitsPerSample,
		Region:           cfg.Region,
		Flip:             cfg.Flip,
		Downsample:       cfg.Downsample,
		UserWhiteBalance: cfg.UserWhiteBalance,
	})
	if err != nil {
		return err
	}

	if cfg.Verbosity > 0 {
		log.Printf("loaded %s, %s [%s] in %s\n", j.In, pb, md, time.Since(tStart))
		if stats, err := histogram.Summarize(pb); err == nil {
			log.Printf("negative levels: %s\n", stats)
			log.Printf("negative histogram: %s\n", stats.ASCII(64))
		}
	}

	res, err := positive.Convert(pb, curves, corr, cfg.Histogram)
	if err != nil {
		return err
	}

	out := res.Image
	if cfg.Linear {
		if out, err = positive.ApplyGamma(out); err != nil {
			return err
		}
	}

	if err := rawio.WriteTIFF(j.Out, out); err != nil {
		return err
	}
	fmt.Printf("%q  %s\n", filepath.Base(j.Out), res)

	stem := strings.TrimSuffix(j.Out, filepath.Ext(j.Out))
	if fPlot {
		title := fmt.Sprintf("%s: %s", curves.Name, res)
		if err := report.PlotLUT(stem+".lut.png", res.LUT, title); err != nil {
			return err
		}
	}
	if fHDR {
		if err := rawio.WriteHDR(stem+".hdr", res.Linear); err != nil {
			return err
		}
	}

	if cfg.Verbosity > 0 {
		if res.Normalization > 1 {
			log.Printf("highlights normalized by %.3f\n", res.Normalization)
		}
		log.Printf("mean colour %s\n", report.Cast(report.MeanColor(res.Image, cfg.Linear)))
		log.Printf("%s done in %s\n", j.Out, time.Since(tStart))
	}

	return nil
}
