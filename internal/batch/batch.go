// Package batch collects statement files from directories and summarizes
// the date span of what was read.
package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"fjacquet/bank-ingest/internal/factory"
	"fjacquet/bank-ingest/internal/ingest"
	"fjacquet/bank-ingest/internal/logging"
	"fjacquet/bank-ingest/internal/models"
)

// MaxFileSize bounds a single statement read into memory.
const MaxFileSize = 50 << 20

// DateRange is an inclusive span of days.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// String returns "YYYY-MM-DD_YYYY-MM-DD", or "" for an empty range.
func (dr DateRange) String() string {
	if dr.IsZero() {
		return ""
	}
	return fmt.Sprintf("%s_%s", dr.Start.Format("2006-01-02"), dr.End.Format("2006-01-02"))
}

// IsZero reports whether the range is unset.
func (dr DateRange) IsZero() bool {
	return dr.Start.IsZero() || dr.End.IsZero()
}

// Merge returns the smallest range covering dr and other.
func (dr DateRange) Merge(other DateRange) DateRange {
	if dr.IsZero() {
		return other
	}
	if other.IsZero() {
		return dr
	}
	out := dr
	if other.Start.Before(out.Start) {
		out.Start = other.Start
	}
	if other.End.After(out.End) {
		out.End = other.End
	}
	return out
}

// RangeOf returns the span of the transactions' dates.
func RangeOf(txns []models.ParsedTransaction) DateRange {
	var dr DateRange
	for _, t := range txns {
		dr = dr.Merge(DateRange{Start: t.Date, End: t.Date})
	}
	return dr
}

// Collector finds and reads statement files.
type Collector struct {
	logger logging.Logger
}

// NewCollector returns a Collector.
func NewCollector(logger logging.Logger) *Collector {
	return &Collector{logger: logging.OrDefault(logger)}
}

// CollectStatementFiles lists files under dir with an accepted statement
// extension, sorted by path. Hidden files and directories are skipped;
// subdirectories are walked only when recursive is set.
func (c *Collector) CollectStatementFiles(dir string, recursive bool) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to access input directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		hidden := strings.HasPrefix(d.Name(), ".") && path != dir
		if d.IsDir() {
			if path != dir && (hidden || !recursive) {
				return filepath.SkipDir
			}
			return nil
		}
		if hidden || !factory.IsAccepted(path) {
			c.logger.Debug("skipping file", logging.F(logging.FieldFile, path))
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", dir, err)
	}
	sort.Strings(files)

	c.logger.Info("collected statement files",
		logging.F("dir", dir),
		logging.F(logging.FieldCount, len(files)))
	return files, nil
}

// Load reads paths into raw files named by their base name.
func (c *Collector) Load(paths []string) ([]ingest.RawFile, error) {
	out := make([]ingest.RawFile, 0, len(paths))
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to access %s: %w", p, err)
		}
		if info.Size() > MaxFileSize {
			return nil, fmt.Errorf("%s is larger than %d bytes", p, MaxFileSize)
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		out = append(out, ingest.RawFile{Name: filepath.Base(p), Data: data})
	}
	return out, nil
}
