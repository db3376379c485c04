package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/google/uuid"
	"github.com/rivo/tview"

	"github.com/srivarshini-21/india-vaccination-dashboard/assets"
	"github.com/srivarshini-21/india-vaccination-dashboard/classify"
	"github.com/srivarshini-21/india-vaccination-dashboard/config"
	"github.com/srivarshini-21/india-vaccination-dashboard/dataset"
	"github.com/srivarshini-21/india-vaccination-dashboard/highlight"
	"github.com/srivarshini-21/india-vaccination-dashboard/logger"
	"github.com/srivarshini-21/india-vaccination-dashboard/output"
	"github.com/srivarshini-21/india-vaccination-dashboard/panels"
	"github.com/srivarshini-21/india-vaccination-dashboard/placement"
	"github.com/srivarshini-21/india-vaccination-dashboard/svgmap"
)

// App represents the TUI application
type App struct {
	app         *tview.Application
	pages       *tview.Pages
	loadingView *tview.TextView
	errorView   *tview.TextView
	statusBar   *tview.TextView

	// Dashboard panels
	mapView   *MapView
	summary   *tview.TextView
	breakdown *tview.TextView
	legend    *tview.TextView
	insights  *tview.TextView

	cfg       *config.Config
	loader    *assets.Loader
	log       *slog.Logger
	sessionID string

	// Set once by setBundle on the event loop and only read there afterwards
	bundle     *assets.Bundle
	classifier *classify.Classifier
	store      *highlight.Store
	dispatcher *Dispatcher

	// Atomic flags for cross-goroutine signaling
	loaded  atomic.Bool
	stopped atomic.Bool
}

// NewApp creates a new TUI application from config
func NewApp(cfg *config.Config, loader *assets.Loader, log *slog.Logger) *App {
	if loader == nil {
		loader = assets.NewLoader(nil)
	}
	if log == nil {
		log = logger.L()
	}
	sessionID := uuid.NewString()
	a := &App{
		app:       tview.NewApplication(),
		pages:     tview.NewPages(),
		cfg:       cfg,
		loader:    loader,
		log:       log.With("session", sessionID),
		sessionID: sessionID,
	}
	a.setupUI()
	return a
}

// SessionID identifies this run in log lines
func (a *App) SessionID() string {
	return a.sessionID
}

// Run loads the assets in the background and runs the TUI until 'q' or
// until ctx is done.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.log.Info("starting dashboard", "dataset", a.cfg.Global.Dataset, "map", a.cfg.Global.Map)
	go a.load(ctx)
	go func() {
		<-ctx.Done()
		// Queued so a stop that arrives before the event loop starts is not lost.
		a.app.QueueUpdate(a.app.Stop)
	}()

	err := a.app.Run()
	a.stopped.Store(true)
	a.log.Info("dashboard stopped")
	return err
}

// load fetches the bundle and hands it to the event loop. Results arriving
// after the app stopped are dropped.
func (a *App) load(ctx context.Context) {
	start := time.Now()
	bundle, err := a.loader.LoadBundle(ctx, a.cfg.Global.Dataset, a.cfg.Global.Map)
	if a.stopped.Load() || ctx.Err() != nil {
		a.log.Debug("discarding asset load after shutdown")
		return
	}

	if err != nil {
		a.log.Error("asset load failed", "error", err)
		a.app.QueueUpdateDraw(func() {
			a.showError(err)
		})
		return
	}

	a.log.Info("assets loaded",
		"regions", bundle.Dataset.Len(),
		"issues", len(bundle.Issues),
		"map", bundle.MapSource,
		"duration", time.Since(start))
	for _, issue := range bundle.Issues {
		a.log.Warn("dataset issue", "issue", issue.String())
	}
	if !bundle.Mismatch.Empty() {
		a.log.Warn("map and dataset ids differ",
			"missing_shapes", bundle.Mismatch.MissingShapes,
			"unknown_shapes", bundle.Mismatch.UnknownShapes)
	}

	a.app.QueueUpdateDraw(func() {
		if a.stopped.Load() {
			return
		}
		a.setBundle(bundle)
	})
}

// showError replaces the loading page with a permanent error page
func (a *App) showError(err error) {
	source := "assets"
	if le, ok := assets.AsLoadError(err); ok {
		source = le.Asset
	}
	a.errorView.SetText(fmt.Sprintf(
		"[red::b]Could not load %s[-::-]\n\n%s\n\n[yellow]The dashboard cannot be shown. Press 'q' to quit[white]",
		source, tview.Escape(err.Error())))
	a.pages.SwitchToPage("error")
}

// setBundle wires a loaded bundle into the panels and shows the dashboard
func (a *App) setBundle(b *assets.Bundle) {
	a.bundle = b
	a.classifier = classify.New(b.Dataset, a.cfg.Scale())
	a.store = highlight.NewStore(b.Dataset.Has)
	a.dispatcher = NewDispatcher(a.store, a.mapView, panels.RankedIDs(b.Dataset))

	a.mapView.SetData(b.Dataset, a.classifier)
	a.legend.SetText(legendText(a.classifier.Scale()))
	a.insights.SetText(insightsText(panels.ComputeInsights(b.Dataset, a.cfg.Insights.Population, a.cfg.Insights.CampaignDays)))

	// Store mutations only happen on the event loop, so panels are
	// refreshed in place before the next draw.
	a.store.Subscribe(func(_, next highlight.State) {
		a.log.Debug("highlight changed", "state", next.String())
		a.refresh(next)
	})
	a.refresh(a.store.State())

	a.loaded.Store(true)
	a.pages.SwitchToPage("dashboard")
}

// refresh redraws every panel that depends on the highlight
func (a *App) refresh(st highlight.State) {
	ds := a.bundle.Dataset
	a.mapView.SetState(st)
	a.summary.SetText(summaryText(panels.Summary(ds, a.cfg.Summary.TopN), st))

	rec, ok := emphasizedRecord(ds, st)
	a.breakdown.SetTitle(fmt.Sprintf(" Breakdown: %s ", tview.Escape(rec.Name)))
	a.breakdown.SetText(breakdownText(rec))
	if ok {
		a.summary.SetTitle(fmt.Sprintf(" Top Regions (%s) ", tview.Escape(rec.Name)))
	} else {
		a.summary.SetTitle(" Top Regions ")
	}
	a.updateStatusBar(st)
}

// emphasizedRecord is the emphasized region, or the national aggregate
func emphasizedRecord(ds *dataset.Dataset, st highlight.State) (dataset.Record, bool) {
	if id, ok := st.Emphasized(); ok {
		if rec, ok := ds.Get(id); ok {
			return rec, true
		}
	}
	return output.NationalRecord(ds), false
}

// setupUI initializes the user interface
func (a *App) setupUI() {
	a.loadingView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter).
		SetText("\n[white::b]India Vaccination Coverage[white::-]\n\n[yellow]Loading dataset and map...[white]\n\n[dim]Press 'q' to quit[white]")
	a.loadingView.SetBorder(true).SetTitle(" vaxmap ").SetTitleAlign(tview.AlignCenter)

	a.errorView = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	a.errorView.SetBorder(true).SetTitle(" Error ").SetTitleAlign(tview.AlignCenter)

	a.mapView = NewMapView(svgmap.IndiaLayout())

	a.summary = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	a.summary.SetBorder(true).SetTitle(" Top Regions ").SetTitleAlign(tview.AlignLeft)

	a.breakdown = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	a.breakdown.SetBorder(true).SetTitle(" Breakdown ").SetTitleAlign(tview.AlignLeft)

	a.legend = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(false)
	a.legend.SetBorder(true).SetTitle(" Coverage ").SetTitleAlign(tview.AlignLeft)

	a.insights = tview.NewTextView().
		SetDynamicColors(true).
		SetWrap(true)
	a.insights.SetBorder(true).SetTitle(" Insights ").SetTitleAlign(tview.AlignLeft)

	a.statusBar = tview.NewTextView().
		SetDynamicColors(true)
	a.statusBar.SetBorder(false)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.breakdown, 7, 0, false).
		AddItem(a.legend, 6, 0, false).
		AddItem(a.insights, 0, 1, false)

	body := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(a.mapView, a.mapView.Width(), 0, false).
		AddItem(a.summary, 0, 3, false).
		AddItem(right, 0, 2, false)

	dashboard := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)

	a.pages.AddPage("loading", a.loadingView, true, true)
	a.pages.AddPage("error", a.errorView, true, false)
	a.pages.AddPage("dashboard", dashboard, true, false)

	a.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Rune() {
		case 'q', 'Q':
			a.app.Stop()
			return nil
		}
		if a.loaded.Load() && a.dispatcher.HandleKey(event) {
			return nil
		}
		return event
	})

	a.app.SetMouseCapture(func(event *tcell.EventMouse, action tview.MouseAction) (*tcell.EventMouse, tview.MouseAction) {
		if a.loaded.Load() && a.dispatcher.HandleMouse(event, action) {
			return nil, action
		}
		return event, action
	})

	a.app.SetAfterDrawFunc(a.afterDraw)
	a.app.EnableMouse(true)
	a.app.SetRoot(a.pages, true)
}

// afterDraw paints the tooltip over the finished frame
func (a *App) afterDraw(screen tcell.Screen) {
	w, h := screen.Size()
	r, lines, ok := a.tooltip(w, h)
	if !ok {
		return
	}
	drawTooltip(screen, r, lines)
}

// tooltip returns where the tooltip of the emphasized region goes on a
// w by h screen and what it says.
func (a *App) tooltip(w, h int) (placement.Rect, []string, bool) {
	if !a.loaded.Load() {
		return placement.Rect{}, nil, false
	}
	st := a.store.State()
	id, ok := st.Emphasized()
	if !ok {
		return placement.Rect{}, nil, false
	}
	rec, ok := a.bundle.Dataset.Get(id)
	if !ok {
		return placement.Rect{}, nil, false
	}

	lines := TooltipLines(rec, a.classifier, st.Mode == highlight.Pinned)
	class := placement.ViewportClass(w, a.cfg.Tooltip.TouchBreakpoint)
	r := placement.Place(a.dispatcher.Anchor(), tooltipSize(lines), placement.Size{W: w, H: h}, a.cfg.Tooltip.Offset, class)
	return r, lines, true
}

// updateStatusBar updates the status bar with the current highlight
func (a *App) updateStatusBar(st highlight.State) {
	var status string
	switch st.Mode {
	case highlight.Hovering:
		rec, _ := a.bundle.Dataset.Get(st.Region)
		status = fmt.Sprintf("[cyan]Hovering:[white] %s", tview.Escape(rec.Name))
	case highlight.Pinned:
		rec, _ := a.bundle.Dataset.Get(st.Region)
		status = fmt.Sprintf("[green]Pinned:[white] %s", tview.Escape(rec.Name))
	default:
		status = "[yellow]Hover or click a region[white]"
	}

	var notes []string
	if n := len(a.bundle.Issues); n > 0 {
		notes = append(notes, fmt.Sprintf("[red]%d dataset issues[white]", n))
	}
	if n := len(a.bundle.Mismatch.MissingShapes) + len(a.bundle.Mismatch.UnknownShapes); n > 0 {
		notes = append(notes, fmt.Sprintf("[red]%d map mismatches[white]", n))
	}
	notes = append(notes, "Tab/Shift-Tab cycle, Esc clear, 'q' quit")

	a.statusBar.SetText(status + " | " + strings.Join(notes, " | "))
}

const barWidth = 24

// summaryText renders the ranked bars with emphasis colors
func summaryText(bars []panels.Bar, st highlight.State) string {
	if len(bars) == 0 {
		return "[dim]No regions[white]"
	}
	top := bars[0].Record.Overall

	var b strings.Builder
	for _, bar := range bars {
		rec := bar.Record
		n := 0
		if top > 0 {
			n = int(float64(rec.Overall) / float64(top) * barWidth)
		}
		switch {
		case n <= 0 && rec.Overall > 0:
			n = 1
		case n < 0:
			n = 0
		}
		fmt.Fprintf(&b, "%s%3d. %-24s %-*s %15s[-::-]\n",
			barTag(panels.Emphasis(rec.ID, st)),
			bar.Rank,
			tview.Escape(truncate(rec.Name, 24)),
			barWidth, strings.Repeat("█", n),
			output.FormatNumber(rec.Overall))
	}
	return b.String()
}

func barTag(e panels.EmphasisLevel) string {
	switch e {
	case panels.Highlighted:
		return "[" + panels.BarHighlightedColor + "::b]"
	case panels.Dimmed:
		return "[gray]"
	default:
		return "[" + panels.BarColor + "]"
	}
}

// breakdownText renders the dose categories of one record
func breakdownText(rec dataset.Record) string {
	var b strings.Builder
	for _, s := range panels.Breakdown(rec) {
		fmt.Fprintf(&b, "[%s]■[-] %-21s %15s (%5.1f%%)\n", s.Color, s.Label, output.FormatNumber(s.Value), s.Percent)
	}
	fmt.Fprintf(&b, "  [::b]%-21s %15s[::-]", "Total Vaccinated", output.FormatNumber(panels.BreakdownTotal(rec)))
	return b.String()
}

// legendText renders the color scale
func legendText(scale classify.Scale) string {
	var b strings.Builder
	for _, e := range panels.Legend(scale) {
		fmt.Fprintf(&b, "[%s]■[-] %s\n", e.Color, e.Label)
	}
	return strings.TrimRight(b.String(), "\n")
}

// insightsText renders the national insights
func insightsText(in panels.Insights) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total doses:   [::b]%s[::-]\n", output.FormatNumber(in.TotalDoses))
	fmt.Fprintf(&b, "Coverage:      %.1f%% of %s\n", in.CoveragePercent, output.FormatNumber(in.Population))
	fmt.Fprintf(&b, "Daily average: %s doses\n", output.FormatNumber(in.DailyAverage))
	fmt.Fprintf(&b, "Projected:     %.1f%%\n", in.ProjectedPercent)
	if in.LeadingRegion != "" {
		fmt.Fprintf(&b, "Leading:       %s (%.1f%%)", tview.Escape(in.LeadingRegion), in.LeadingRegionShare)
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
