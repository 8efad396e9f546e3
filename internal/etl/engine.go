// Package etl runs catalog facts end to end: read each source once, reshape
// every year, write the fact tables and the dimension tables they feed.
package etl

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/census-tidy/internal/acs"
	"github.com/sells-group/census-tidy/internal/dims"
	"github.com/sells-group/census-tidy/internal/ingest"
	"github.com/sells-group/census-tidy/internal/reshape"
	"github.com/sells-group/census-tidy/internal/warehouse"
)

// LoadRecorder records fact loads. *warehouse.LoadLog implements it.
type LoadRecorder interface {
	Start(ctx context.Context, fact string) (int64, error)
	Complete(ctx context.Context, id int64, result warehouse.LoadResult) error
	Fail(ctx context.Context, id int64, msg string) error
}

// Options configures an Engine.
type Options struct {
	DataDir string
	// LabelColumn is used for sources that do not name their own.
	LabelColumn string
	Workers     int // default 4
}

// Engine orchestrates fact loads.
type Engine struct {
	catalog *acs.Catalog
	reg     *Registry
	sink    warehouse.Sink
	loadLog LoadRecorder
	opts    Options
}

// RunOpts selects what a run loads.
type RunOpts struct {
	Facts []string // empty means every fact
	Dims  bool     // also write dimension tables
}

// FactResult is the outcome of one fact.
type FactResult struct {
	Name  string
	Files int
	Rows  int64
	Err   error
}

// Summary reports a run.
type Summary struct {
	RunID   string
	Loaded  int
	Failed  int
	Rows    int64
	Results []FactResult
}

// NewEngine creates an engine. loadLog may be nil.
func NewEngine(cat *acs.Catalog, sink warehouse.Sink, loadLog LoadRecorder, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = 4
	}
	return &Engine{
		catalog: cat,
		reg:     NewRegistry(cat),
		sink:    sink,
		loadLog: loadLog,
		opts:    opts,
	}
}

// Registry returns the engine's fact registry.
func (e *Engine) Registry() *Registry {
	return e.reg
}

// Run loads the selected facts. Every fact is attempted; the returned error
// is non-nil when any of them failed.
func (e *Engine) Run(ctx context.Context, opts RunOpts) (*Summary, error) {
	log := zap.L().With(zap.String("component", "etl.engine"))

	facts, err := e.reg.Select(opts.Facts)
	if err != nil {
		return nil, err
	}

	summary := &Summary{RunID: uuid.NewString()}
	log = log.With(zap.String("run_id", summary.RunID))
	if len(facts) == 0 {
		log.Info("no facts selected")
		return summary, nil
	}
	log.Info("selected facts", zap.Int("count", len(facts)))

	// Each source is read once for all of its facts.
	var sources []string
	bySource := make(map[string][]reshape.FactSpec)
	for _, f := range facts {
		if _, ok := bySource[f.Source]; !ok {
			sources = append(sources, f.Source)
		}
		bySource[f.Source] = append(bySource[f.Source], f)
	}

	collector := &dims.Collector{}
	for _, name := range sources {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		frames, err := e.loadSource(ctx, name)
		if err != nil {
			log.Error("source failed", zap.String("source", name), zap.Error(err))
		}

		for _, spec := range bySource[name] {
			res := e.runFact(ctx, spec, frames, err, summary.RunID, collector)
			summary.Results = append(summary.Results, res)
			if res.Err != nil {
				summary.Failed++
				continue
			}
			summary.Loaded++
			summary.Rows += res.Rows
		}
	}

	if opts.Dims && summary.Loaded > 0 {
		n, err := e.writeDims(ctx, collector)
		summary.Rows += n
		if err != nil {
			return summary, err
		}
	}

	log.Info("etl run complete",
		zap.Int("loaded", summary.Loaded),
		zap.Int("failed", summary.Failed),
		zap.Int64("rows", summary.Rows),
	)
	if summary.Failed > 0 {
		return summary, eris.Errorf("etl: %d of %d facts failed", summary.Failed, len(facts))
	}
	return summary, nil
}

func (e *Engine) loadSource(ctx context.Context, name string) ([]*reshape.Frame, error) {
	src, ok := e.catalog.Source(name)
	if !ok {
		return nil, eris.Errorf("etl: unknown source %q", name)
	}
	label := src.LabelColumn
	if label == "" {
		label = e.opts.LabelColumn
	}
	return ingest.LoadSource(ctx, e.opts.DataDir, src.Pattern, ingest.LoadOptions{
		LabelColumn: label,
		Workers:     e.opts.Workers,
	})
}

// runFact builds and writes one fact. srcErr is the error from loading its
// source, which fails the fact without building it.
func (e *Engine) runFact(ctx context.Context, spec reshape.FactSpec, frames []*reshape.Frame, srcErr error, runID string, collector *dims.Collector) FactResult {
	log := zap.L().With(zap.String("component", "etl.engine"), zap.String("fact", spec.Name))
	res := FactResult{Name: spec.Name, Files: len(frames)}

	var loadID int64
	if e.loadLog != nil {
		id, err := e.loadLog.Start(ctx, spec.Name)
		if err != nil {
			log.Error("failed to record load start", zap.Error(err))
		}
		loadID = id
	}
	fail := func(err error) FactResult {
		res.Err = err
		log.Error("fact failed", zap.Error(err))
		if e.loadLog != nil && loadID != 0 {
			if logErr := e.loadLog.Fail(ctx, loadID, err.Error()); logErr != nil {
				log.Error("failed to record load failure", zap.Error(logErr))
			}
		}
		return res
	}

	if srcErr != nil {
		return fail(eris.Wrapf(srcErr, "etl: source %s", spec.Source))
	}

	start := time.Now()
	table, stats, err := e.build(ctx, spec, frames)
	if err != nil {
		return fail(err)
	}

	n, err := e.sink.WriteTable(ctx, table)
	if err != nil {
		return fail(eris.Wrapf(err, "etl: write %s", spec.Name))
	}
	res.Rows = n
	collector.Add(table)

	if e.loadLog != nil && loadID != 0 {
		err := e.loadLog.Complete(ctx, loadID, warehouse.LoadResult{
			RowsLoaded: n,
			Metadata: map[string]any{
				"run_id":           runID,
				"files":            len(frames),
				"years":            years(frames),
				"excluded_columns": stats.ExcludedColumns(),
				"filtered_rows":    stats.FilteredRows,
			},
		})
		if err != nil {
			log.Error("failed to record load completion", zap.Error(err))
		}
	}

	log.Info("fact loaded",
		zap.Int64("rows", n),
		zap.Int("files", len(frames)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return res
}

// build reshapes every frame in parallel and concatenates the results in
// frame order. The returned stats are summed over frames.
func (e *Engine) build(ctx context.Context, spec reshape.FactSpec, frames []*reshape.Frame) (*reshape.Table, reshape.BuildStats, error) {
	log := zap.L().With(zap.String("component", "etl.engine"), zap.String("fact", spec.Name))

	tables := make([]*reshape.Table, len(frames))
	stats := make([]reshape.BuildStats, len(frames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)
	for i, f := range frames {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			t, s, err := reshape.Build(f, spec)
			if err != nil {
				return err
			}
			log.Debug("built frame",
				zap.String("source", f.Source),
				zap.Int("rows", s.Rows),
				zap.Int("out_of_scope", s.OutOfScope),
				zap.Int("data_rows", s.DataRows),
				zap.Int("filtered_rows", s.FilteredRows),
				zap.Int("metric_columns", s.MetricColumns),
				zap.Int("excluded_columns", s.ExcludedColumns()),
				zap.Int("records", s.Records),
			)
			tables[i], stats[i] = t, s
			return nil
		})
	}
	var total reshape.BuildStats
	if err := g.Wait(); err != nil {
		return nil, total, eris.Wrapf(err, "etl: build %s", spec.Name)
	}

	out := &reshape.Table{Schema: spec.Schema}
	for i, t := range tables {
		if err := out.Append(t); err != nil {
			return nil, total, eris.Wrapf(err, "etl: build %s", spec.Name)
		}
		total = total.Add(stats[i])
	}
	return out, total, nil
}

func (e *Engine) writeDims(ctx context.Context, collector *dims.Collector) (int64, error) {
	log := zap.L().With(zap.String("component", "etl.engine"))

	var total int64
	for _, t := range collector.Tables(acs.AgeGroups) {
		n, err := e.sink.WriteTable(ctx, t)
		if err != nil {
			return total, eris.Wrapf(err, "etl: write dimension %s", t.Schema.Name)
		}
		log.Info("dimension loaded", zap.String("table", t.Schema.Name), zap.Int64("rows", n))
		total += n
	}
	return total, nil
}

// years lists the distinct row years across frames, sorted. Rows without a
// year are left out.
func years(frames []*reshape.Frame) []string {
	seen := make(map[string]bool)
	var out []string
	for _, f := range frames {
		for _, row := range f.Rows {
			if row.Partition != "" && !seen[row.Partition] {
				seen[row.Partition] = true
				out = append(out, row.Partition)
			}
		}
	}
	sort.Strings(out)
	return out
}
