package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	dbTypes "github.com/robalyx/overseer/internal/database/types"
	"github.com/robalyx/overseer/internal/export/csv"
	"github.com/robalyx/overseer/internal/export/sqlite"
	"github.com/robalyx/overseer/internal/export/text"
	"github.com/robalyx/overseer/internal/export/types"
	"go.uber.org/zap"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Format represents a supported export format.
type Format string

const (
	FormatText   Format = "text"
	FormatCSV    Format = "csv"
	FormatSQLite Format = "sqlite"
)

// extension returns the file extension used for the format.
func (f Format) extension() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatCSV:
		return ".csv"
	case FormatSQLite:
		return ".db"
	default:
		return ""
	}
}

// Exporter archives completed tasks before they are purged. The text report
// is always written; extra formats are written beside it.
type Exporter struct {
	outDir  string
	formats []Format
	now     func() time.Time
	logger  *zap.Logger
}

// New creates a new exporter writing into outDir.
func New(outDir string, formats []string, logger *zap.Logger) (*Exporter, error) {
	parsed := make([]Format, 0, len(formats))
	for _, name := range formats {
		format := Format(name)
		switch format {
		case FormatText:
			continue
		case FormatCSV, FormatSQLite:
			parsed = append(parsed, format)
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
		}
	}

	return &Exporter{
		outDir:  outDir,
		formats: parsed,
		now:     time.Now,
		logger:  logger.Named("export"),
	}, nil
}

// WithClock replaces the clock used for file names and report headers.
func (e *Exporter) WithClock(now func() time.Time) *Exporter {
	e.now = now
	return e
}

// Export writes the archive for tasks and returns the absolute path of the
// text report. On any failure every file of the archive is removed and the
// error is returned so the caller can abort the purge.
func (e *Exporter) Export(ctx context.Context, tasks []*dbTypes.Task) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.outDir, os.ModePerm); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	now := e.now()
	base := fmt.Sprintf("completed_tasks_%s_%s", now.Format("20060102_150405"), uuid.NewString()[:8])

	reportPath, err := filepath.Abs(filepath.Join(e.outDir, base+FormatText.extension()))
	if err != nil {
		return "", fmt.Errorf("failed to resolve export path: %w", err)
	}

	records := types.FromTasks(tasks)

	if err := text.New(func() time.Time { return now }).Export(reportPath, records); err != nil {
		return "", err
	}

	written := []string{reportPath}
	for _, format := range e.formats {
		path := filepath.Join(filepath.Dir(reportPath), base+format.extension())
		written = append(written, path)

		if err := e.export(format, path, records); err != nil {
			e.discard(written)
			return "", fmt.Errorf("failed to export %s format: %w", format, err)
		}
	}

	e.logger.Info("Exported completed tasks",
		zap.Int("count", len(records)),
		zap.String("path", reportPath),
		zap.Int("extra_formats", len(e.formats)))

	return reportPath, nil
}

// export writes one extra format.
func (e *Exporter) export(format Format, path string, records []*types.ExportRecord) error {
	var exporter interface {
		Export(path string, records []*types.ExportRecord) error
	}

	switch format {
	case FormatCSV:
		exporter = csv.New()
	case FormatSQLite:
		exporter = sqlite.New()
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	return exporter.Export(path, records)
}

// discard removes the files of an incomplete archive so that the export
// directory only holds archives of purged tasks.
func (e *Exporter) discard(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			e.logger.Warn("Failed to remove incomplete export file",
				zap.String("path", path),
				zap.Error(err))
		}
	}
}
