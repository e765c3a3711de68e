// Package pipeline orchestrates the study stages: generate raw records, map
// them to SDTM, demonstrate and repair missingness, derive the analysis
// dataset, and write report artifacts. The mappers stay pure per-record
// functions; batch concerns (concurrency, partial-failure policy, logging)
// live here.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/trialdata/cdiscpipe/internal/domain/adam"
	"github.com/trialdata/cdiscpipe/internal/domain/cdash"
	"github.com/trialdata/cdiscpipe/internal/domain/imputation"
	"github.com/trialdata/cdiscpipe/internal/domain/sdtm"
	"github.com/trialdata/cdiscpipe/internal/platform/cdisc"
	"github.com/trialdata/cdiscpipe/internal/platform/report"
)

// Options control batch behavior for the mapping stages.
type Options struct {
	// Workers bounds the per-record mapping fan-out. Values below 1 run
	// sequentially.
	Workers int
	// ContinueOnError skips records that fail with an integrity violation
	// instead of aborting the stage. Skipped records are logged and the
	// collected errors are still returned alongside the mapped batch.
	ContinueOnError bool
}

// Pipeline wires the stage repositories together.
type Pipeline struct {
	log  zerolog.Logger
	raw  cdash.Repository
	dm   sdtm.Repository
	adsl adam.Repository
	opts Options
}

// New creates a pipeline over the three stage repositories.
func New(log zerolog.Logger, raw cdash.Repository, dm sdtm.Repository, adsl adam.Repository, opts Options) *Pipeline {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Pipeline{log: log, raw: raw, dm: dm, adsl: adsl, opts: opts}
}

// Generate produces mock raw records and stores them.
func (p *Pipeline) Generate(ctx context.Context, cfg cdash.GenConfig) (int, error) {
	records := cdash.NewGenerator(cfg).Generate()
	if err := p.raw.Save(ctx, records); err != nil {
		return 0, fmt.Errorf("save cdash dataset: %w", err)
	}
	p.log.Info().Int("subjects", len(records)).Int64("seed", cfg.Seed).
		Str("study_id", cfg.StudyID).Msg("generated raw demographics")
	return len(records), nil
}

// MapToSDTM derives the DM dataset from the stored raw records.
func (p *Pipeline) MapToSDTM(ctx context.Context) (int, error) {
	raws, err := p.raw.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load cdash dataset: %w", err)
	}
	dms, err := mapBatch(p, raws, sdtm.MapDemographic)
	if err != nil {
		return 0, err
	}
	if err := p.dm.Save(ctx, dms); err != nil {
		return 0, fmt.Errorf("save dm dataset: %w", err)
	}
	p.log.Info().Int("in", len(raws)).Int("out", len(dms)).Msg("mapped cdash to sdtm")
	return len(dms), nil
}

// InjectMissing blanks age/sex on a seeded fraction of the stored DM
// records, re-saving the dataset.
func (p *Pipeline) InjectMissing(ctx context.Context, rate float64, seed int64) (int, error) {
	dms, err := p.dm.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load dm dataset: %w", err)
	}
	touched := imputation.Inject(dms, rate, seed)
	if err := p.dm.Save(ctx, dms); err != nil {
		return 0, fmt.Errorf("save dm dataset: %w", err)
	}
	p.log.Info().Int("touched", touched).Float64("rate", rate).Msg("injected missing values")
	return touched, nil
}

// Impute fills missing age/sex in the stored DM records.
func (p *Pipeline) Impute(ctx context.Context) (*imputation.Summary, error) {
	dms, err := p.dm.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load dm dataset: %w", err)
	}
	summary, err := imputation.Impute(dms)
	if err != nil {
		return nil, err
	}
	if err := p.dm.Save(ctx, dms); err != nil {
		return nil, fmt.Errorf("save dm dataset: %w", err)
	}
	p.log.Info().Int("age_imputed", summary.AgeImputed).Int("sex_imputed", summary.SexImputed).
		Int("median_age", summary.MedianAge).Str("modal_sex", summary.ModalSex).
		Msg("imputed missing values")
	return summary, nil
}

// Derive produces the ADSL dataset from the stored DM records.
func (p *Pipeline) Derive(ctx context.Context) (int, error) {
	dms, err := p.dm.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load dm dataset: %w", err)
	}
	records, err := mapBatch(p, dms, adam.MapSubjectLevel)
	if err != nil {
		return 0, err
	}
	if err := p.adsl.Save(ctx, records); err != nil {
		return 0, fmt.Errorf("save adsl dataset: %w", err)
	}
	p.log.Info().Int("in", len(dms)).Int("out", len(records)).Msg("derived adsl")
	return len(records), nil
}

// Report writes the summary artifacts (text, HTML, figures) into outDir.
func (p *Pipeline) Report(ctx context.Context, outDir string) error {
	records, err := p.adsl.List(ctx)
	if err != nil {
		return fmt.Errorf("load adsl dataset: %w", err)
	}
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	summary := report.Build(records)

	figures := []string{"age_groups.png", "sex.png"}
	if err := report.SaveAgeGroupFigure(summary, filepath.Join(outDir, figures[0])); err != nil {
		return err
	}
	if err := report.SaveSexFigure(summary, filepath.Join(outDir, figures[1])); err != nil {
		return err
	}

	txt, err := os.Create(filepath.Join(outDir, "summary.txt"))
	if err != nil {
		return err
	}
	defer txt.Close()
	if err := report.WriteText(txt, summary); err != nil {
		return fmt.Errorf("write text summary: %w", err)
	}

	page, err := os.Create(filepath.Join(outDir, "report.html"))
	if err != nil {
		return err
	}
	defer page.Close()
	if err := report.WriteHTML(page, summary, figures); err != nil {
		return fmt.Errorf("write html report: %w", err)
	}

	p.log.Info().Str("dir", outDir).Int("subjects", summary.Total).Msg("wrote report artifacts")
	return nil
}

// Run executes the full pipeline end to end.
func (p *Pipeline) Run(ctx context.Context, gen cdash.GenConfig, missingRate float64, outDir string) error {
	if _, err := p.Generate(ctx, gen); err != nil {
		return err
	}
	if _, err := p.MapToSDTM(ctx); err != nil {
		return err
	}
	if missingRate > 0 {
		if _, err := p.InjectMissing(ctx, missingRate, gen.Seed); err != nil {
			return err
		}
		if _, err := p.Impute(ctx); err != nil {
			return err
		}
	}
	if _, err := p.Derive(ctx); err != nil {
		return err
	}
	return p.Report(ctx, outDir)
}

// mapBatch applies a pure per-record mapper across a batch with a bounded
// worker fan-out. Output order matches input order. Under ContinueOnError,
// records failing with an integrity violation are dropped and their errors
// joined into the returned error only if nothing mapped at all; otherwise
// they are logged and the batch proceeds.
func mapBatch[In, Out any](p *Pipeline, in []*In, mapper func(*In) (*Out, error)) ([]*Out, error) {
	out := make([]*Out, len(in))
	errs := make([]error, len(in))

	var wg sync.WaitGroup
	sem := make(chan struct{}, p.opts.Workers)
	for i := range in {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i], errs[i] = mapper(in[i])
		}(i)
	}
	wg.Wait()

	var kept []*Out
	var failures []error
	for i, err := range errs {
		if err == nil {
			kept = append(kept, out[i])
			continue
		}
		failures = append(failures, err)
		if p.opts.ContinueOnError && cdisc.IsInvalidRecord(err) {
			p.log.Warn().Err(err).Msg("skipping invalid record")
			continue
		}
		return nil, err
	}
	if len(kept) == 0 && len(failures) > 0 {
		return nil, errors.Join(failures...)
	}
	return kept, nil
}
