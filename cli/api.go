package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/srivarshini-21/india-vaccination-dashboard/assets"
	"github.com/srivarshini-21/india-vaccination-dashboard/classify"
	"github.com/srivarshini-21/india-vaccination-dashboard/config"
	"github.com/srivarshini-21/india-vaccination-dashboard/highlight"
	"github.com/srivarshini-21/india-vaccination-dashboard/logger"
	"github.com/srivarshini-21/india-vaccination-dashboard/output"
	"github.com/srivarshini-21/india-vaccination-dashboard/panels"
	"github.com/srivarshini-21/india-vaccination-dashboard/tui"
)

// OutputConfig contains output formatting options
type OutputConfig struct {
	Compact bool
	Plain   bool
}

// setupLogging points the default logger at the configured file. Interactive
// runs discard logs without one so the terminal is not corrupted.
func setupLogging(cfg *config.Config, interactive bool) (*slog.Logger, func(), error) {
	opts := logger.Options{
		Level:  cfg.Global.LogLevel,
		Format: cfg.Global.LogFormat,
	}
	closeFn := func() {}

	switch {
	case cfg.Global.LogFile != "":
		f, err := os.OpenFile(cfg.Global.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		opts.Output = f
		closeFn = func() { f.Close() }
	case interactive:
		opts.Output = io.Discard
	}

	return logger.Setup(opts), closeFn, nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

// executeTUI runs the interactive dashboard until the user quits
func executeTUI(parent context.Context, cfg *config.Config) error {
	log, closeLog, err := setupLogging(cfg, true)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := signalContext(parent)
	defer stop()

	return tui.NewApp(cfg, assets.NewLoader(nil), log).Run(ctx)
}

// session is one loaded and classified dataset
type session struct {
	runID      string
	start      time.Time
	log        *slog.Logger
	bundle     *assets.Bundle
	classifier *classify.Classifier
	closeLog   func()
}

func (s *session) close() {
	s.closeLog()
}

func loadSession(parent context.Context, cfg *config.Config) (*session, error) {
	log, closeLog, err := setupLogging(cfg, false)
	if err != nil {
		return nil, err
	}

	s := &session{
		runID:    uuid.NewString(),
		start:    time.Now(),
		closeLog: closeLog,
	}
	s.log = log.With("run", s.runID)

	ctx, stop := signalContext(parent)
	defer stop()

	s.bundle, err = assets.NewLoader(nil).LoadBundle(ctx, cfg.Global.Dataset, cfg.Global.Map)
	if err != nil {
		s.log.Error("asset load failed", "error", err)
		return s, err
	}
	s.classifier = classify.New(s.bundle.Dataset, cfg.Scale())
	s.log.Info("assets loaded",
		"regions", s.bundle.Dataset.Len(),
		"issues", len(s.bundle.Issues),
		"map", s.bundle.MapSource,
		"duration", time.Since(s.start))
	return s, nil
}

// highlightState pins the configured region. Unknown ids leave the
// dashboard idle.
func (s *session) highlightState(id string) highlight.State {
	store := highlight.NewStore(s.bundle.Dataset.Has)
	if id != "" && !store.Pin(id) {
		s.log.Warn("highlight region not in dataset", "region", id)
	}
	return store.State()
}

// renderFiles writes the configured dashboard and SVG files and returns the
// paths written.
func (s *session) renderFiles(cfg *config.Config, st highlight.State) ([]string, error) {
	var written []string

	if path := cfg.Render.PlotPath; path != "" {
		err := output.PlotDashboard(output.DashboardInput{
			Dataset:    s.bundle.Dataset,
			Classifier: s.classifier,
			Map:        s.bundle.Map,
			State:      st,
			TopN:       cfg.Summary.TopN,
			Insights:   panels.ComputeInsights(s.bundle.Dataset, cfg.Insights.Population, cfg.Insights.CampaignDays),
		}, path)
		if err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if path := cfg.Render.SvgPath; path != "" {
		svg, err := output.StyledMap(s.bundle.Map, s.classifier, st)
		if err != nil {
			return written, fmt.Errorf("rendering map: %w", err)
		}
		if err := os.WriteFile(path, []byte(svg), 0o644); err != nil {
			return written, fmt.Errorf("could not write map file %s: %w", path, err)
		}
		written = append(written, path)
	}
	return written, nil
}

// executeReport classifies the dataset and prints the report. Load and
// render failures are reported in the output and returned.
func executeReport(parent context.Context, cfg *config.Config, outputConfig OutputConfig, w io.Writer) error {
	s, err := loadSession(parent, cfg)
	if s != nil {
		defer s.close()
	}
	if err != nil {
		if s == nil {
			return err
		}
		report := output.NewReport(s.runID, s.start)
		report.AddError("asset_load", err.Error(), 0)
		if outErr := outputResult(w, report, outputConfig); outErr != nil {
			return outErr
		}
		return err
	}

	report := output.BuildReport(output.ReportInput{
		Dataset:       s.bundle.Dataset,
		Issues:        s.bundle.Issues,
		Mismatch:      s.bundle.Mismatch,
		Classifier:    s.classifier,
		TopN:          cfg.Summary.TopN,
		Population:    cfg.Insights.Population,
		CampaignDays:  cfg.Insights.CampaignDays,
		DatasetSource: s.bundle.DatasetSource,
		MapSource:     s.bundle.MapSource,
		RunID:         s.runID,
		Start:         s.start,
	})

	renderStart := time.Now()
	written, renderErr := s.renderFiles(cfg, s.highlightState(cfg.Render.Highlight))
	for _, path := range written {
		report.AddWarning("info", fmt.Sprintf("Generated %s in %v", path, time.Since(renderStart)), 0)
	}
	if renderErr != nil {
		s.log.Error("render failed", "error", renderErr)
		report.AddError("render", renderErr.Error(), 0)
	}
	report.UpdateDuration(s.start)

	if err := outputResult(w, report, outputConfig); err != nil {
		return err
	}
	return renderErr
}

// executeRender writes the dashboard files and lists them
func executeRender(parent context.Context, cfg *config.Config, w io.Writer) error {
	s, err := loadSession(parent, cfg)
	if s != nil {
		defer s.close()
	}
	if err != nil {
		return err
	}

	st := s.highlightState(cfg.Render.Highlight)
	written, err := s.renderFiles(cfg, st)
	for _, path := range written {
		fmt.Fprintf(w, "Wrote %s (%s)\n", path, st)
	}
	if err != nil {
		s.log.Error("render failed", "error", err)
		return err
	}
	s.log.Info("render complete", "files", len(written), "duration", time.Since(s.start))
	return nil
}

// outputResult is the unified output function that handles all output formats
func outputResult(w io.Writer, report *output.Report, outputConfig OutputConfig) error {
	if outputConfig.Plain {
		return output.WritePlain(w, report)
	}

	var jsonBytes []byte
	var err error

	if outputConfig.Compact {
		jsonBytes, err = report.ToCompactJSON()
	} else {
		jsonBytes, err = report.ToJSON()
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(jsonBytes))
	return err
}
