package rawio

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultOutputDir is where batch outputs go when no output is given,
// inside the input directory.
const DefaultOutputDir = "positive"

// A Job is one conversion: a developed negative in, a positive out.
type Job struct {
	In, Out string
}

// FindJobs works out what to convert. A directory is converted file by
// file into the output directory (default: DefaultOutputDir inside it),
// which is created if needed; a single file goes to the output file
// (default: OutputName beside it).
func FindJobs(input, output, format string) ([]Job, error) {
	item, err := os.Stat(input)
	if err != nil {
		return nil, err
	}

	if !item.IsDir() {
		if output == "" {
			output = filepath.Join(filepath.Dir(input), OutputName(input))
		}
		return []Job{{input, output}}, nil
	}

	files, err := FindInputs(input, format)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no input files in %s", input)
	}

	if output == "" {
		output = filepath.Join(input, DefaultOutputDir)
	}
	if err := os.MkdirAll(output, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	jobs := []Job{}
	for _, f := range files {
		jobs = append(jobs, Job{f, filepath.Join(output, OutputName(f))})
	}
	return jobs, nil
}

// OutputName strips every extension, so "DSC0001.ARW.tif" becomes "DSC0001.tiff".
func OutputName(path string) string {
	name := filepath.Base(path)
	if i := strings.Index(name, "."); i > 0 {
		name = name[:i]
	}
	return name + ".tiff"
}
