// Package grapher composes the Loader/Disassembler/CFG Builder
// pipeline and the Matcher into the two top-level engine operations of
// §6: GenerateGraphs and Compare.
package grapher

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/gographer/gographer/config"
	"github.com/gographer/gographer/disassembly"
	"github.com/gographer/gographer/logging"
	"github.com/gographer/gographer/matcher"
	"github.com/gographer/gographer/similarity"
)

// Target names one (display name, filesystem path) pair to load.
type Target struct {
	Name string
	Path string
}

// Grapher is the engine entry point: threshold-gated matching over a
// sample against a list of reference Disassemblies.
type Grapher struct {
	Threshold      float64
	DisplayProgress bool

	config config.Config
	log    zerolog.Logger
}

// Option configures a Grapher beyond its required constructor
// arguments, following the functional-options idiom the pack's CLI
// wrappers use for optional wiring.
type Option func(*Grapher)

// WithConfig overrides the engine constants New() otherwise defaults.
func WithConfig(cfg config.Config) Option {
	return func(g *Grapher) { g.config = cfg }
}

// WithLogger overrides the zerolog.Logger New() otherwise defaults to
// a warn-level logger, so CLI callers can route engine logs anywhere.
func WithLogger(logger zerolog.Logger) Option {
	return func(g *Grapher) { g.log = logger }
}

// New constructs a Grapher, per §6: threshold in [0,1].
func New(threshold float64, displayProgress bool, opts ...Option) *Grapher {
	g := &Grapher{
		Threshold:      threshold,
		DisplayProgress: displayProgress,
		config:         config.Default(),
		log:            logging.New(logging.Config{Level: "warn"}),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// GenerateGraphs loads every target in order, in parallel, and returns
// the resulting Disassemblies in the same order as targets — never a
// map, per §9's resolved Open Question. Per §7, this is all-or-nothing:
// any single load failure discards the whole batch. ctx bounds the
// batch as a whole: cancelling it stops scheduling new loads and the
// call returns ctx.Err() once the in-flight loads unwind, per §5's
// "callers wishing to bound runtime should partition inputs" note.
func (g *Grapher) GenerateGraphs(ctx context.Context, targets []Target) ([]*disassembly.Disassembly, error) {
	results := make([]*disassembly.Disassembly, len(targets))

	eg, ctx := errgroup.WithContext(ctx)
	if g.config.Workers > 0 {
		eg.SetLimit(g.config.Workers)
	}
	for i, t := range targets {
		i, t := i, t
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			d, err := disassembly.New(t.Path)
			if err != nil {
				return err
			}
			d.Name = t.Name
			results[i] = d
			if g.DisplayProgress {
				g.log.Info().Str("binary", t.Name).Int("functions", len(d.Graphs)).Msg("loaded binary")
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Compare scores sample against every reference and returns the
// resulting CompareReport, per §4.5's aggregation and sort rules.
func (g *Grapher) Compare(sample *disassembly.Disassembly, references []*disassembly.Disassembly) (*matcher.CompareReport, error) {
	start := time.Now()

	simCfg := similarity.Config{
		Alpha:            g.config.Alpha,
		FingerprintSlack: g.config.FingerprintSlack,
		ExactMatchBudget: g.config.ExactMatchBudget,
	}

	report, err := matcher.Match(sample, references, g.Threshold, simCfg, g.config.Workers)
	if err != nil {
		return nil, err
	}
	report.ComputeTimeMS = time.Since(start).Milliseconds()

	if g.DisplayProgress {
		g.log.Info().Str("sample", sample.Name).Int("references", len(references)).
			Int64("compute_time_ms", report.ComputeTimeMS).Msg("comparison complete")
	}
	return report, nil
}
