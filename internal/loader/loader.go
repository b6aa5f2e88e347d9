// Package loader reads the monthly arrivals/departures CSV exports into one table.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"go.uber.org/zap"

	"github.com/kjstillabower/epwa-traffic-dashboard/internal/observability"
)

// SourceColumn is the column added to every row, holding the filename prefix.
const SourceColumn = "source"

// ErrNoFiles is returned when the data directory holds no file matching the pattern.
var ErrNoFiles = errors.New("no input files matched")

// Loader discovers and reads the CSV files for one airport and month.
type Loader struct {
	dir     string
	pattern string
	logger  *zap.Logger
}

// Pattern returns the filename glob for an airport code and a YYYY-MM month,
// e.g. "*EPWA_2025-04-*.csv".
func Pattern(airport, month string) string {
	return "*" + airport + "_" + month + "-*.csv"
}

// New returns a Loader reading files under dir that match pattern.
func New(dir, pattern string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{dir: dir, pattern: pattern, logger: logger}
}

// Files returns the matching paths in lexical order.
func (l *Loader) Files() ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(l.dir, l.pattern))
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", l.pattern, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// SourceLabel returns the token before the first underscore of the file name
// ("arrivals" for arrivals_EPWA_2025-04-01.csv).
func SourceLabel(path string) string {
	base := filepath.Base(path)
	if i := strings.Index(base, "_"); i >= 0 {
		return base[:i]
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// Load reads every matching file, tags its rows with SourceLabel and concatenates
// the results row-wise. Columns missing from some files are filled with NaN.
func (l *Loader) Load(ctx context.Context) (dataframe.DataFrame, error) {
	start := time.Now()
	files, err := l.Files()
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	if len(files) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("%s in %s: %w", l.pattern, l.dir, ErrNoFiles)
	}

	var combined dataframe.DataFrame
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return dataframe.DataFrame{}, err
		}
		df, err := readFile(path)
		if err != nil {
			return dataframe.DataFrame{}, err
		}
		source := SourceLabel(path)
		df = withSource(df, source)
		if df.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("tag %s: %w", path, df.Err)
		}

		observability.InputFilesTotal.Inc()
		observability.InputRowsTotal.WithLabelValues(source).Add(float64(df.Nrow()))
		l.logger.Info("input file loaded",
			zap.String("file", filepath.Base(path)),
			zap.String("source", source),
			zap.Int("rows", df.Nrow()))

		if i == 0 {
			combined = df
			continue
		}
		combined = combined.Concat(df)
		if combined.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("concat %s: %w", path, combined.Err)
		}
	}

	observability.PipelineStageDuration.WithLabelValues("load").Observe(time.Since(start).Seconds())
	l.logger.Info("input loaded",
		zap.Int("files", len(files)),
		zap.Int("rows", combined.Nrow()),
		zap.Duration("duration", time.Since(start)))
	return combined, nil
}

// readFile parses path as CSV with every column kept as a string; timestamp
// parsing is the cleaner's job.
func readFile(path string) (dataframe.DataFrame, error) {
	f, err := os.Open(path)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("read %s: %w", path, df.Err)
	}
	return df, nil
}

func withSource(df dataframe.DataFrame, source string) dataframe.DataFrame {
	values := make([]string, df.Nrow())
	for i := range values {
		values[i] = source
	}
	return df.Mutate(series.New(values, series.String, SourceColumn))
}
