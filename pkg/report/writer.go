package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/kilianp07/ldarsim/core/montecarlo"
)

// Batch is the input of Write.
type Batch struct {
	RunID       string
	Programs    []string
	Outcomes    []montecarlo.Outcome
	BaseSeed    uint64
	Parameters  any
	GeneratedAt time.Time
}

// Output file names.
const (
	SummaryFile    = "summary.csv"
	ComparisonFile = "comparison.csv"
	StatusFile     = "replicates.csv"
	MetadataFile   = "metadata.json"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SensitivityFile returns the sensitivity table name of a program.
func SensitivityFile(program string) string {
	return "sensitivity_" + unsafeName.ReplaceAllString(program, "_") + ".csv"
}

// SitesFile returns the per-site table name of a program.
func SitesFile(program string) string {
	return "sites_" + unsafeName.ReplaceAllString(program, "_") + ".csv"
}

// TimeSeriesFile returns the per-timestep table name of a program.
func TimeSeriesFile(program string) string {
	return "timeseries_" + unsafeName.ReplaceAllString(program, "_") + ".csv"
}

// ChartFile returns the chart name of a program.
func ChartFile(program string) string {
	return "timeseries_" + unsafeName.ReplaceAllString(program, "_") + ".html"
}

// Write creates dir and writes every batch output into it. It returns the
// paths written.
func Write(dir string, b Batch) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	summaries := Summarize(b.Programs, b.Outcomes)
	var written []string
	write := func(name string, fn func(io.Writer) error) error {
		path := filepath.Join(dir, name)
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		err = fn(f)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("report %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}

	var errs []error
	errs = append(errs,
		write(SummaryFile, func(w io.Writer) error { return WriteSummaryCSV(w, summaries) }),
		write(ComparisonFile, func(w io.Writer) error { return WriteComparisonCSV(w, summaries) }),
		write(StatusFile, func(w io.Writer) error { return WriteStatusCSV(w, b.Outcomes) }),
	)

	meta := Metadata{
		RunID:       b.RunID,
		GeneratedAt: b.GeneratedAt.UTC(),
		Programs:    b.Programs,
		Replicates:  len(b.Outcomes),
		BaseSeed:    b.BaseSeed,
		Parameters:  b.Parameters,
	}
	for _, ps := range summaries {
		meta.Completed += ps.Completed
		meta.Failed += ps.Failed
	}
	errs = append(errs, write(MetadataFile, func(w io.Writer) error { return WriteMetadata(w, meta) }))

	for _, ps := range summaries {
		errs = append(errs,
			write(SensitivityFile(ps.Program), func(w io.Writer) error { return WriteSensitivityCSV(w, ps) }),
			write(SitesFile(ps.Program), func(w io.Writer) error { return WriteSitesCSV(w, ps) }),
			write(TimeSeriesFile(ps.Program), func(w io.Writer) error { return WriteTimeSeriesCSV(w, ps) }),
		)
		if len(ps.Results) > 0 {
			errs = append(errs, write(ChartFile(ps.Program), func(w io.Writer) error {
				return RenderTimeSeriesChart(w, ps.Program, ps.Results)
			}))
		}
	}
	return written, errors.Join(errs...)
}
