package ingest

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/census-tidy/internal/reshape"
)

// LoadOptions configures LoadSource.
type LoadOptions struct {
	LabelColumn string
	Workers     int // default 4
}

// FindFiles globs dir for pattern with each supported extension. When the
// same base name exists with several extensions, the first in Extensions
// wins. Files are ordered by year, then name; files without a year go last.
func FindFiles(dir, pattern string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	for _, ext := range Extensions {
		matches, err := filepath.Glob(filepath.Join(dir, pattern+ext))
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: bad pattern %q", pattern)
		}
		for _, m := range matches {
			stem := strings.TrimSuffix(m, filepath.Ext(m))
			if seen[stem] {
				continue
			}
			seen[stem] = true
			files = append(files, m)
		}
	}

	sort.Slice(files, func(i, j int) bool {
		yi, yj := YearFromPath(files[i]), YearFromPath(files[j])
		switch {
		case yi == yj:
			return files[i] < files[j]
		case yi == "":
			return false
		case yj == "":
			return true
		case len(yi) != len(yj):
			return len(yi) < len(yj)
		default:
			return yi < yj
		}
	})
	return files, nil
}

// LoadSource reads every file matching pattern in dir, in parallel. Files
// that cannot be read are logged and skipped. It fails when nothing matches
// or nothing could be read. Frames come back in FindFiles order.
func LoadSource(ctx context.Context, dir, pattern string, opts LoadOptions) ([]*reshape.Frame, error) {
	log := zap.L().With(zap.String("component", "ingest"), zap.String("pattern", pattern))

	files, err := FindFiles(dir, pattern)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, eris.Errorf("ingest: no files match %s in %s", pattern, dir)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}

	frames := make([]*reshape.Frame, len(files))
	var (
		mu      sync.Mutex
		skipped int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		g.Go(func() error {
			year := YearFromPath(path)
			if year == "" {
				log.Warn("no year in file name, rows get a null year", zap.String("file", path))
			}

			f, err := ReadFrame(gctx, path, opts.LabelColumn, year)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn("skipping unreadable file", zap.String("file", path), zap.Error(err))
				mu.Lock()
				skipped++
				mu.Unlock()
				return nil
			}

			log.Debug("read file",
				zap.String("file", path),
				zap.String("year", year),
				zap.Int("rows", len(f.Rows)),
			)
			frames[i] = f
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "ingest: load source")
	}

	out := make([]*reshape.Frame, 0, len(frames))
	for _, f := range frames {
		if f != nil {
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, eris.Errorf("ingest: none of %d files matching %s could be read", len(files), pattern)
	}

	log.Info("source loaded", zap.Int("files", len(out)), zap.Int("skipped", skipped))
	return out, nil
}
