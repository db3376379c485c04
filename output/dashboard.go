package output

import (
	"bytes"
	"fmt"
	"html"
	"html/template"
	"io"
	"os"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/srivarshini-21/india-vaccination-dashboard/classify"
	"github.com/srivarshini-21/india-vaccination-dashboard/dataset"
	"github.com/srivarshini-21/india-vaccination-dashboard/highlight"
	"github.com/srivarshini-21/india-vaccination-dashboard/panels"
	"github.com/srivarshini-21/india-vaccination-dashboard/svgmap"
)

// DashboardInput is everything the HTML export draws.
type DashboardInput struct {
	Dataset    *dataset.Dataset
	Classifier *classify.Classifier
	Map        *svgmap.Document
	State      highlight.State
	TopN       int
	Insights   panels.Insights
}

// detailCard is the data of the region card next to the map.
type detailCard struct {
	Name      string
	Overall   string
	Tier      string
	Color     string
	Slices    []cardSlice
	Total     string
	Aggregate bool
}

type cardSlice struct {
	Label   string
	Value   string
	Percent string
	Color   string
}

type sectionData struct {
	Map      template.HTML
	Legend   []panels.LegendEntry
	Card     detailCard
	Insights panels.Insights
	Coverage string
	Daily    string
	Project  string
}

var sectionTemplate = template.Must(template.New("section").Parse(`
<section class="vaxmap" style="display:flex;flex-wrap:wrap;gap:24px;padding:16px;font-family:sans-serif">
  <div class="vaxmap-map" style="flex:1 1 480px;max-width:640px">
    <h2>COVID-19 Vaccination Coverage</h2>
    {{.Map}}
    <ul class="vaxmap-legend" style="list-style:none;padding:0">
      {{range .Legend}}<li><span style="display:inline-block;width:12px;height:12px;background:{{.Color}}"></span> {{.Label}}</li>
      {{end}}
    </ul>
  </div>
  <div class="vaxmap-card" style="flex:0 1 320px">
    <h3>{{.Card.Name}}</h3>
    {{if not .Card.Aggregate}}<p>Total doses: <strong>{{.Card.Overall}}</strong> <span style="color:{{.Card.Color}}">({{.Card.Tier}})</span></p>{{end}}
    <table>
      {{range .Card.Slices}}<tr><td><span style="color:{{.Color}}">&#9632;</span> {{.Label}}</td><td>{{.Value}}</td><td>{{.Percent}}</td></tr>
      {{end}}
      <tr><td>Total Vaccinated</td><td>{{.Card.Total}}</td><td></td></tr>
    </table>
    <h3>Insights</h3>
    <ul class="vaxmap-insights">
      <li>Coverage: {{.Coverage}}</li>
      <li>Daily average: {{.Daily}} doses</li>
      <li>Projected completion: {{.Project}}</li>
      {{if .Insights.LeadingRegion}}<li>Leading region: {{.Insights.LeadingRegion}}</li>{{end}}
    </ul>
  </div>
</section>`))

// PlotDashboard writes the dashboard page to filename.
func PlotDashboard(in DashboardInput, filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create dashboard file %s: %w", filename, err)
	}
	defer f.Close()

	if err := RenderDashboard(f, in); err != nil {
		return err
	}
	return f.Close()
}

// RenderDashboard renders the chart page and inserts the styled map, legend,
// region card and insights at the top of its body.
func RenderDashboard(w io.Writer, in DashboardInput) error {
	page := components.NewPage()
	page.PageTitle = "India Vaccination Coverage"
	page.SetLayout(components.PageFlexLayout)
	page.AddCharts(summaryChart(in), breakdownChart(in))

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("rendering charts: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return fmt.Errorf("parsing chart page: %w", err)
	}

	section, err := renderSection(in)
	if err != nil {
		return err
	}
	doc.Find("body").First().PrependHtml(section)

	out, err := doc.Html()
	if err != nil {
		return fmt.Errorf("serializing dashboard: %w", err)
	}
	_, err = io.WriteString(w, out)
	return err
}

// StyledMap applies the classifier and highlight to the map and serializes it.
func StyledMap(doc *svgmap.Document, c *classify.Classifier, st highlight.State) (string, error) {
	doc.Apply(svgmap.Style(c, st))
	return doc.Render()
}

func renderSection(in DashboardInput) (string, error) {
	var mapHTML string
	if in.Map != nil {
		var err error
		if mapHTML, err = StyledMap(in.Map, in.Classifier, in.State); err != nil {
			return "", err
		}
	}

	data := sectionData{
		Map:      template.HTML(mapHTML),
		Legend:   panels.Legend(in.Classifier.Scale()),
		Card:     card(in),
		Insights: in.Insights,
		Coverage: fmt.Sprintf("%.1f%%", in.Insights.CoveragePercent),
		Daily:    FormatNumber(in.Insights.DailyAverage),
		Project:  fmt.Sprintf("%.1f%%", in.Insights.ProjectedPercent),
	}
	var buf bytes.Buffer
	if err := sectionTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering dashboard section: %w", err)
	}
	return buf.String(), nil
}

// emphasizedRecord returns the record of the emphasized region, or the
// national aggregate when nothing is emphasized.
func emphasizedRecord(in DashboardInput) (dataset.Record, bool) {
	if id, ok := in.State.Emphasized(); ok {
		if rec, ok := in.Dataset.Get(id); ok {
			return rec, true
		}
	}
	return NationalRecord(in.Dataset), false
}

func card(in DashboardInput) detailCard {
	rec, isRegion := emphasizedRecord(in)
	c := detailCard{
		Name:      rec.Name,
		Overall:   FormatNumber(rec.Overall),
		Total:     FormatNumber(panels.BreakdownTotal(rec)),
		Aggregate: !isRegion,
	}
	if isRegion {
		tier, _ := in.Classifier.Region(rec.ID)
		c.Tier = tier.String()
		c.Color = in.Classifier.Color(tier)
	}
	for _, s := range panels.Breakdown(rec) {
		c.Slices = append(c.Slices, cardSlice{
			Label:   s.Label,
			Value:   FormatNumber(s.Value),
			Percent: fmt.Sprintf("%.1f%%", s.Percent),
			Color:   s.Color,
		})
	}
	return c
}

func summaryChart(in DashboardInput) *charts.Bar {
	bars := panels.Summary(in.Dataset, in.TopN)

	// Category axes grow upwards once reversed; list the top region last so
	// it is drawn at the top.
	names := make([]string, len(bars))
	data := make([]opts.BarData, len(bars))
	for i, b := range bars {
		j := len(bars) - 1 - i
		names[j] = b.Record.Name
		data[j] = opts.BarData{
			Name:  b.Record.Name,
			Value: b.Record.Overall,
			ItemStyle: &opts.ItemStyle{
				Color: panels.BarFill(panels.Emphasis(b.Record.ID, in.State)),
			},
			Tooltip: &opts.Tooltip{
				Formatter: types.FuncStr(barTooltip(b.Record)),
			},
		}
	}

	title := "All Regions by Total Doses"
	if in.TopN > 0 && in.TopN < in.Dataset.Len() {
		title = fmt.Sprintf("Top %d Regions by Total Doses", in.TopN)
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
		charts.WithInitializationOpts(opts.Initialization{
			Width:           "720px",
			Height:          fmt.Sprintf("%dpx", 120+28*len(bars)),
			Theme:           types.ThemeWesteros,
			BackgroundColor: "transparent",
		}),
		charts.WithTitleOpts(opts.Title{
			Title: title,
			Left:  "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "item",
			Formatter: opts.FuncOpts(`function (params) {
		return params.name + '<br />Total doses: ' + Number(params.value).toLocaleString('en-IN');
	}`),
		}),
		charts.WithGridOpts(opts.Grid{
			Left:         "3%",
			Right:        "6%",
			ContainLabel: opts.Bool(true),
		}),
	)
	bar.SetXAxis(names).AddSeries("Total doses", data)
	bar.XYReversal()
	return bar
}

// templateEscaper keeps region names from being read as echarts
// template placeholders.
var templateEscaper = strings.NewReplacer("{", "&#123;", "}", "&#125;")

// barTooltip is the hover text of one bar: total doses followed by the
// breakdown of the record.
func barTooltip(r dataset.Record) string {
	var b strings.Builder
	b.WriteString(templateEscaper.Replace(html.EscapeString(r.Name)))
	fmt.Fprintf(&b, "<br />Total doses: %s", FormatNumber(r.Overall))
	for _, s := range panels.Breakdown(r) {
		fmt.Fprintf(&b, "<br />%s: %s", s.Label, FormatNumber(s.Value))
	}
	return b.String()
}

func breakdownChart(in DashboardInput) *charts.Pie {
	rec, _ := emphasizedRecord(in)

	var data []opts.PieData
	for _, s := range panels.Breakdown(rec) {
		data = append(data, opts.PieData{
			Name:      s.Label,
			Value:     s.Value,
			ItemStyle: &opts.ItemStyle{Color: s.Color},
		})
	}

	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:           "480px",
			Height:          "420px",
			BackgroundColor: "transparent",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Vaccination Breakdown",
			Subtitle: rec.Name,
			Left:     "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Trigger: "item",
			Formatter: opts.FuncOpts(`function (params) {
		return params.name + '<br />' + Number(params.value).toLocaleString('en-IN') + ' (' + params.percent + '%)';
	}`),
		}),
		charts.WithLegendOpts(opts.Legend{
			Show:   opts.Bool(true),
			Bottom: "0",
		}),
	)
	pie.AddSeries("Breakdown", data, charts.WithPieChartOpts(opts.PieChart{
		Radius: []string{"40%", "70%"},
	}))
	return pie
}
