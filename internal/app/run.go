package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/vk/ximsweep/internal/archive"
	"github.com/vk/ximsweep/internal/bootstrap"
	"github.com/vk/ximsweep/internal/ctxlog"
	"github.com/vk/ximsweep/internal/dispatch"
	"github.com/vk/ximsweep/internal/hcl"
	"github.com/vk/ximsweep/internal/layout"
	"github.com/vk/ximsweep/internal/matrix"
	"github.com/vk/ximsweep/internal/preset"
	"github.com/vk/ximsweep/internal/report"
	"github.com/vk/ximsweep/internal/runexec"
)

// ErrRunsFailed is returned when the sweep finished but not every
// descriptor succeeded.
var ErrRunsFailed = errors.New("experiments failed")

// Run executes one sweep: resolve the mode, expand the matrix, bootstrap,
// dispatch, then write the report and optionally upload the results.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.ctx = ctx
	a.logger.Debug("App.Run method started.")

	a.healthCheckServer()
	defer a.closeHealthCheckServer()

	a.setPhase(PhasePlanning)
	p, descs, err := a.plan(ctx)
	if err != nil {
		return err
	}
	if a.config.DryRun {
		a.printPlan(p, descs)
		return nil
	}

	l, err := layout.New(a.config.ProjectRoot, p.ResultDir, p.ScratchDir)
	if err != nil {
		return err
	}
	started := a.now()
	a.logger.Info("Sweep planned.", "mode", p.Mode, "experiments", len(descs), "workers", a.config.Workers)
	a.setPhase(PhaseBootstrapping)
	toolchain := bootstrap.Toolchain{Configure: a.config.Configure, Compile: a.config.Compile}
	if err := bootstrap.New(a.runner).Prepare(ctx, l, toolchain); err != nil {
		return fmt.Errorf("bootstrap failed: %w", err)
	}

	a.setPhase(PhaseDispatching)
	policy, err := dispatch.ParseFailurePolicy(a.config.FailurePolicy)
	if err != nil {
		return err
	}
	exec := runexec.New(l, a.runner, runexec.WithClock(a.now))
	rep, dispatchErr := dispatch.New(exec, a.config.Workers, policy).Dispatch(ctx, descs)

	a.setPhase(PhaseReporting)
	sweep := report.Sweep{
		Mode:        p.Mode,
		Source:      p.Source,
		Extensions:  a.config.Extensions(ctx),
		Started:     started,
		Finished:    a.now(),
		Descriptors: descs,
		Dispatch:    rep,
	}
	if err := report.Write(filepath.Join(l.ResultDir, layout.SweepManifest), sweep); err != nil {
		return errors.Join(dispatchErr, err)
	}
	report.Print(a.outW, sweep)

	if a.config.UploadURL != "" {
		a.setPhase(PhaseUploading)
		if err := archive.NewUploader(a.httpClient).Publish(ctx, l.ResultDir, a.config.UploadURL); err != nil {
			a.logger.Error("Result upload failed", "error", err)
			return errors.Join(dispatchErr, err)
		}
	}

	if dispatchErr != nil {
		return dispatchErr
	}
	if !rep.OK() {
		return fmt.Errorf("%w: %d of %d", ErrRunsFailed, rep.Total()-rep.Succeeded, rep.Total())
	}
	a.logger.Info("🏁 All experiments done", "result_dir", l.ResultDir)
	return nil
}

// plan resolves the mode and expands its option table. It touches no
// files besides reading preset catalogs.
func (a *App) plan(ctx context.Context) (*preset.Preset, []matrix.Descriptor, error) {
	opts := []preset.Option{preset.WithClock(a.now)}
	if len(a.config.PresetPaths) > 0 {
		defs, err := hcl.NewLoader().Load(ctx, a.config.PresetPaths...)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load preset catalog: %w", err)
		}
		opts = append(opts, preset.WithDefinitions(defs...))
	}

	resolver := preset.NewResolver(a.config.ProjectRoot, a.config.ExperimentsDir, opts...)
	p, err := resolver.Resolve(ctx, a.config.Mode)
	if err != nil {
		return nil, nil, err
	}
	descs := matrix.Build(p.Options)
	a.logger.Debug("Experiment matrix built.", "experiments", len(descs), "dimensions", p.Options.Dimensions())
	return p, descs, nil
}

func (a *App) printPlan(p *preset.Preset, descs []matrix.Descriptor) {
	fmt.Fprintf(a.outW, "mode %s (%s): %d experiments\n", p.Mode, p.Source, len(descs))
	fmt.Fprintf(a.outW, "result dir %s\n", p.ResultDir)
	fmt.Fprintf(a.outW, "scratch dir %s\n", p.ScratchDir)
	for _, d := range descs {
		fmt.Fprintln(a.outW, d.String())
	}
}
