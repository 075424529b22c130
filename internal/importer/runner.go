package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"

	"github.com/MikeSquared-Agency/rolodex/internal/extractor"
	"github.com/MikeSquared-Agency/rolodex/internal/processor"
	"github.com/MikeSquared-Agency/rolodex/internal/record"
)

// Saver appends a record to the CRM log.
type Saver interface {
	SaveRecord(ctx context.Context, source string, r record.Record) (*processor.SaveResult, error)
}

type Config struct {
	Dir       string
	StatePath string
	DryRun    bool
}

// Summary reports what a run did.
type Summary struct {
	Discovered int
	Skipped    int
	Imported   int
	Failed     int
}

// Runner imports a directory of email text files one at a time.
type Runner struct {
	cfg       Config
	extractor *extractor.Extractor
	saver     Saver
	logger    *slog.Logger
}

func NewRunner(cfg Config, ext *extractor.Extractor, saver Saver, logger *slog.Logger) *Runner {
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStatePath
	}
	return &Runner{cfg: cfg, extractor: ext, saver: saver, logger: logger}
}

// Run extracts and saves every unprocessed file under the configured
// directory. Blank files are skipped. Files whose extraction or save fails
// are recorded in the state and retried on the next run. Dry runs never
// write state.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var sum Summary

	state, err := LoadState(r.cfg.StatePath)
	if err != nil {
		return sum, fmt.Errorf("load state: %w", err)
	}
	save := func() {
		if r.cfg.DryRun {
			return
		}
		if err := state.Save(); err != nil {
			r.logger.Warn("failed to save import state", "path", state.Path(), "error", err)
		}
	}

	files, err := discoverFiles(r.cfg.Dir)
	if err != nil {
		return sum, fmt.Errorf("discover files: %w", err)
	}
	sum.Discovered = len(files)
	r.logger.Info("files discovered", "dir", r.cfg.Dir, "count", len(files))

	for _, path := range files {
		select {
		case <-ctx.Done():
			r.logger.Info("import interrupted, saving state")
			save()
			return sum, ctx.Err()
		default:
		}

		if state.IsProcessed(path) {
			sum.Skipped++
			continue
		}

		err := r.importFile(ctx, path)
		if errors.Is(err, extractor.ErrEmptyInput) {
			r.logger.Warn("skipping blank file", "path", path)
			sum.Skipped++
			continue
		}
		if err != nil {
			r.logger.Error("import failed", "path", path, "error", err)
			state.AddError(fmt.Sprintf("%s: %v", path, err))
			sum.Failed++
			save()
			continue
		}

		sum.Imported++
		state.RecordsSaved++
		state.MarkProcessed(path)
		save()
	}

	r.logger.Info("import complete",
		"discovered", sum.Discovered,
		"imported", sum.Imported,
		"skipped", sum.Skipped,
		"failed", sum.Failed,
		"dry_run", r.cfg.DryRun,
	)
	return sum, nil
}

func (r *Runner) importFile(ctx context.Context, path string) error {
	text, err := ReadMessage(path)
	if err != nil {
		return err
	}

	// Blank files are left out of the log rather than saved as placeholders.
	if _, err := extractor.Normalize(text); err != nil {
		return err
	}

	rec, err := r.extractor.Process(ctx, extractor.SourceEmail, text)
	if err != nil {
		return err
	}

	if r.cfg.DryRun {
		r.logger.Info("dry run: extracted record",
			"path", path,
			"name", record.Value(rec.Name),
			"company", record.Value(rec.Company),
		)
		return nil
	}

	res, err := r.saver.SaveRecord(ctx, string(extractor.SourceEmail), rec)
	if err != nil {
		return err
	}
	r.logger.Info("record imported", "path", path, "id", res.ID)
	return nil
}

func discoverFiles(dir string) ([]string, error) {
	root := expandHome(dir)
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && isMessageFile(d.Name()) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}
