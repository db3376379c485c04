package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/srivarshini-21/india-vaccination-dashboard/classify"
	"github.com/srivarshini-21/india-vaccination-dashboard/dataset"
	"github.com/srivarshini-21/india-vaccination-dashboard/highlight"
	"github.com/srivarshini-21/india-vaccination-dashboard/panels"
	"github.com/srivarshini-21/india-vaccination-dashboard/svgmap"
)

func testDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, issues := dataset.New([]dataset.Record{
		{ID: "A", Name: "Alpha", Overall: 100, Total: 40, Partial: 50, Precaution: 10},
		{ID: "B", Name: "Beta", Overall: 50, Total: 20, Partial: 25, Precaution: 5},
		{ID: "C", Name: "Gamma", Overall: 200000, Total: 90000, Partial: 100000, Precaution: 10000},
	})
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	return ds
}

func testReport(t *testing.T) *Report {
	t.Helper()
	ds := testDataset(t)
	return BuildReport(ReportInput{
		Dataset:       ds,
		Issues:        []dataset.Issue{{ID: "B", Field: "total", Message: "negative count, defaulting to 0"}},
		Mismatch:      svgmap.MismatchReport{UnknownShapes: []string{"OCEAN"}},
		Classifier:    classify.New(ds, classify.DefaultScale()),
		TopN:          2,
		Population:    1000000,
		CampaignDays:  10,
		DatasetSource: "/data/test.json",
		MapSource:     "schematic",
		RunID:         "run-1",
		Start:         time.Now(),
	})
}

func TestBuildReport(t *testing.T) {
	r := testReport(t)

	if !reflect.DeepEqual(r.TopN, []string{"C", "A"}) {
		t.Errorf("TopN = %v, want [C A]", r.TopN)
	}
	if len(r.Regions) != 3 {
		t.Fatalf("Regions = %d, want 3", len(r.Regions))
	}
	wantOrder := []string{"C", "A", "B"}
	wantTier := []string{"very high", "low", "low"}
	for i, region := range r.Regions {
		if region.ID != wantOrder[i] || region.Rank != i+1 {
			t.Errorf("region %d = %s rank %d", i, region.ID, region.Rank)
		}
		if region.Tier != wantTier[i] {
			t.Errorf("region %s tier = %s, want %s", region.ID, region.Tier, wantTier[i])
		}
	}
	if r.Summary.Min != 50 || r.Summary.Max != 200000 {
		t.Errorf("range = %d..%d", r.Summary.Min, r.Summary.Max)
	}
	if r.Summary.TierCounts["very high"] != 1 || r.Summary.TierCounts["low"] != 2 || r.Summary.TierCounts["high"] != 0 {
		t.Errorf("TierCounts = %v", r.Summary.TierCounts)
	}
	if r.Summary.Insights.TotalDoses != 200150 {
		t.Errorf("TotalDoses = %d", r.Summary.Insights.TotalDoses)
	}
	if len(r.Summary.Legend) != 4 || len(r.Summary.Breakdown) != 3 {
		t.Errorf("legend=%d breakdown=%d", len(r.Summary.Legend), len(r.Summary.Breakdown))
	}
	if r.Metadata.RunID != "run-1" || r.Metadata.DatasetSource != "/data/test.json" || r.Metadata.MapSource != "schematic" {
		t.Errorf("Metadata = %+v", r.Metadata)
	}

	types := map[string]int{}
	for _, w := range r.Warnings {
		types[w.Type]++
	}
	if types["dataset"] != 1 || types["map_unknown_shape"] != 1 || types["map_missing_shape"] != 0 {
		t.Errorf("warning types = %v", types)
	}
	if len(r.Errors) != 0 {
		t.Errorf("Errors = %v", r.Errors)
	}
}

func TestBuildReportEmbeddedSource(t *testing.T) {
	ds := testDataset(t)
	r := BuildReport(ReportInput{Dataset: ds, Classifier: classify.New(ds, classify.DefaultScale())})
	if r.Metadata.DatasetSource != "embedded" {
		t.Errorf("DatasetSource = %q", r.Metadata.DatasetSource)
	}
	if len(r.TopN) != 3 {
		t.Errorf("TopN with 0 = %v, want all regions", r.TopN)
	}
}

func TestReportJSON(t *testing.T) {
	r := testReport(t)

	pretty, err := r.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error: %v", err)
	}
	compact, err := r.ToCompactJSON()
	if err != nil {
		t.Fatalf("ToCompactJSON() error: %v", err)
	}
	if !bytes.Contains(pretty, []byte("\n  ")) {
		t.Error("pretty JSON is not indented")
	}
	if bytes.Contains(compact, []byte("\n")) {
		t.Error("compact JSON contains newlines")
	}

	var decoded map[string]any
	if err := json.Unmarshal(compact, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	for _, key := range []string{"metadata", "summary", "top_n", "regions", "warnings", "errors"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("JSON missing key %q", key)
		}
	}
	regions := decoded["regions"].([]any)
	first := regions[0].(map[string]any)
	if first["id"] != "C" || first["tier"] != "very high" || first["color"] != "#15803d" {
		t.Errorf("first region = %v", first)
	}
}

func TestEmptyReportHasEmptyArrays(t *testing.T) {
	data, err := NewReport("x", time.Now()).ToCompactJSON()
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"warnings":[]`, `"errors":[]`, `"regions":[]`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("JSON %s missing %s", data, want)
		}
	}
}

func TestConcurrentWarningsAndErrors(t *testing.T) {
	r := NewReport("x", time.Now())
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			r.AddWarning("test", fmt.Sprintf("warning %d", i), i)
		}(i)
		go func(i int) {
			defer wg.Done()
			r.AddError("test", fmt.Sprintf("error %d", i), i)
		}(i)
	}
	wg.Wait()
	if len(r.Warnings) != 100 || len(r.Errors) != 100 {
		t.Errorf("warnings=%d errors=%d, want 100 each", len(r.Warnings), len(r.Errors))
	}
}

func TestWritePlain(t *testing.T) {
	r := testReport(t)
	r.AddError("render", "could not write plot", 0)

	var buf bytes.Buffer
	if err := WritePlain(&buf, r); err != nil {
		t.Fatalf("WritePlain() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"India Vaccination Coverage Report",
		"/data/test.json",
		"TOP 2 REGIONS",
		"Gamma",
		"Alpha",
		"200,000",
		"Very High (70%-100%)",
		"NATIONAL BREAKDOWN",
		"B.total: negative count",
		"could not write plot",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("plain output missing %q", want)
		}
	}
	if strings.Contains(out, "  3. Beta") {
		t.Error("plain output lists a region outside the top N")
	}
}

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		in   int64
		want string
	}{
		{0, "0"},
		{999, "999"},
		{1000, "1,000"},
		{1234567, "1,234,567"},
		{-1234, "-1,234"},
		{-12, "-12"},
		{2199434553, "2,199,434,553"},
	}
	for _, tt := range tests {
		if got := FormatNumber(tt.in); got != tt.want {
			t.Errorf("FormatNumber(%d) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func dashboardInput(t *testing.T, st highlight.State) DashboardInput {
	t.Helper()
	ds := testDataset(t)
	l, err := svgmap.NewLayout(3, 1, []svgmap.Tile{{ID: "A", Col: 0}, {ID: "B", Col: 1}, {ID: "C", Col: 2}})
	if err != nil {
		t.Fatal(err)
	}
	doc, err := svgmap.ParseDocument(svgmap.Schematic(l, ds))
	if err != nil {
		t.Fatal(err)
	}
	return DashboardInput{
		Dataset:    ds,
		Classifier: classify.New(ds, classify.DefaultScale()),
		Map:        doc,
		State:      st,
		TopN:       2,
		Insights:   panels.ComputeInsights(ds, 1000000, 10),
	}
}

func TestRenderDashboardHighlighted(t *testing.T) {
	in := dashboardInput(t, highlight.State{Mode: highlight.Pinned, Region: "A"})

	var buf bytes.Buffer
	if err := RenderDashboard(&buf, in); err != nil {
		t.Fatalf("RenderDashboard() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"<svg",
		"region-active",
		`id="glow"`,
		"Very High (70%-100%)",
		"Alpha",
		"Total Vaccinated",
		"Top 2 Regions by Total Doses",
		"Vaccination Breakdown",
		panels.BarHighlightedColor,
		panels.PartialColor,
		"echarts",
		"Partially Vaccinated: 100,000",
		"Fully Vaccinated: 90,000",
		"Precaution Dose: 10,000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("dashboard missing %q", want)
		}
	}
	if strings.Index(out, "vaxmap-map") > strings.Index(out, "echarts.init") {
		t.Error("map section should precede the charts")
	}
}

func TestBarTooltip(t *testing.T) {
	got := barTooltip(dataset.Record{ID: "X", Name: "A&B {x}", Overall: 1500, Total: 700, Partial: 600, Precaution: 200})
	want := "A&amp;B &#123;x&#125;" +
		"<br />Total doses: 1,500" +
		"<br />Partially Vaccinated: 600" +
		"<br />Fully Vaccinated: 700" +
		"<br />Precaution Dose: 200"
	if got != want {
		t.Errorf("barTooltip() = %q, want %q", got, want)
	}
}

func TestRenderDashboardIdle(t *testing.T) {
	in := dashboardInput(t, highlight.State{})

	var buf bytes.Buffer
	if err := RenderDashboard(&buf, in); err != nil {
		t.Fatalf("RenderDashboard() error = %v", err)
	}
	out := buf.String()
	if strings.Contains(out, "region-active") {
		t.Error("idle dashboard has an active region")
	}
	if strings.Contains(out, panels.BarHighlightedColor) {
		t.Error("idle dashboard has a highlighted bar")
	}
	if !strings.Contains(out, "All regions") {
		t.Error("idle breakdown should show the national aggregate")
	}
}

func TestPlotDashboard(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dashboard.html")
	if err := PlotDashboard(dashboardInput(t, highlight.State{}), path); err != nil {
		t.Fatalf("PlotDashboard() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("dashboard file not written: %v", err)
	}
	if info.Size() == 0 {
		t.Error("dashboard file is empty")
	}

	if err := PlotDashboard(dashboardInput(t, highlight.State{}), filepath.Join(t.TempDir(), "missing", "x.html")); err == nil {
		t.Error("expected error for missing directory")
	}
}
