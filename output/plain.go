package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

var (
	heavyRule = strings.Repeat("═", 79)
	lightRule = strings.Repeat("─", 79)
)

// WritePlain formats the report as human-readable plain text
func WritePlain(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", heavyRule)
	fmt.Fprintf(bw, "                     India Vaccination Coverage Report\n")
	fmt.Fprintf(bw, "%s\n\n", heavyRule)

	// Overview
	fmt.Fprintf(bw, "📊 OVERVIEW\n")
	fmt.Fprintf(bw, "%s\n", lightRule)
	fmt.Fprintf(bw, "Dataset:         %s\n", r.Metadata.DatasetSource)
	if r.Metadata.MapSource != "" {
		fmt.Fprintf(bw, "Map:             %s\n", r.Metadata.MapSource)
	}
	fmt.Fprintf(bw, "Generated:       %s\n", r.Metadata.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(bw, "Run:             %s\n", r.Metadata.RunID)
	fmt.Fprintf(bw, "Regions:         %d\n", r.Summary.Regions)
	fmt.Fprintf(bw, "Range:           %s - %s doses\n", FormatNumber(r.Summary.Min), FormatNumber(r.Summary.Max))
	fmt.Fprintf(bw, "\n")

	// Insights
	in := r.Summary.Insights
	fmt.Fprintf(bw, "💉 INSIGHTS\n")
	fmt.Fprintf(bw, "%s\n", lightRule)
	fmt.Fprintf(bw, "Total Doses:     %s\n", FormatNumber(in.TotalDoses))
	fmt.Fprintf(bw, "Coverage:        %.1f%% of %s\n", in.CoveragePercent, FormatNumber(in.Population))
	fmt.Fprintf(bw, "Daily Average:   %s doses over %d days\n", FormatNumber(in.DailyAverage), in.CampaignDays)
	fmt.Fprintf(bw, "Projected:       %.1f%%\n", in.ProjectedPercent)
	if in.LeadingRegion != "" {
		fmt.Fprintf(bw, "Leading Region:  %s (%.1f%% of doses)\n", in.LeadingRegion, in.LeadingRegionShare)
	}
	fmt.Fprintf(bw, "\n")

	// Legend
	fmt.Fprintf(bw, "🎨 COVERAGE TIERS\n")
	fmt.Fprintf(bw, "%s\n", lightRule)
	for _, e := range r.Summary.Legend {
		fmt.Fprintf(bw, "  %-24s %s  %3d regions\n", e.Label, e.Color, r.Summary.TierCounts[e.Tier])
	}
	fmt.Fprintf(bw, "\n")

	// Ranking
	top := make(map[string]bool, len(r.TopN))
	for _, id := range r.TopN {
		top[id] = true
	}
	fmt.Fprintf(bw, "🏆 TOP %d REGIONS\n", len(r.TopN))
	fmt.Fprintf(bw, "%s\n", lightRule)
	for _, region := range r.Regions {
		if !top[region.ID] {
			continue
		}
		fmt.Fprintf(bw, "  %3d. %-28s %15s  %-9s (%5.1f%%)\n",
			region.Rank, region.Name, FormatNumber(region.Overall), region.Tier, region.Ratio*100)
	}
	fmt.Fprintf(bw, "\n")

	// Breakdown
	if len(r.Summary.Breakdown) > 0 {
		fmt.Fprintf(bw, "🧩 NATIONAL BREAKDOWN\n")
		fmt.Fprintf(bw, "%s\n", lightRule)
		for _, s := range r.Summary.Breakdown {
			fmt.Fprintf(bw, "  %-22s %15s  (%5.1f%%)\n", s.Label, FormatNumber(s.Value), s.Percent)
		}
		fmt.Fprintf(bw, "\n")
	}

	// Warnings and Errors
	if len(r.Warnings) > 0 || len(r.Errors) > 0 {
		fmt.Fprintf(bw, "⚠️  DIAGNOSTICS\n")
		fmt.Fprintf(bw, "%s\n", lightRule)

		if len(r.Warnings) > 0 {
			fmt.Fprintf(bw, "Warnings:\n")
			for _, warning := range r.Warnings {
				fmt.Fprintf(bw, "  • %s\n", warning.Message)
			}
		}

		if len(r.Errors) > 0 {
			fmt.Fprintf(bw, "Errors:\n")
			for _, err := range r.Errors {
				fmt.Fprintf(bw, "  • %s\n", err.Message)
			}
		}
		fmt.Fprintf(bw, "\n")
	}

	fmt.Fprintf(bw, "%s\n", heavyRule)
	return bw.Flush()
}

// FormatNumber inserts thousands separators
func FormatNumber(n int64) string {
	str := fmt.Sprintf("%d", n)
	sign := ""
	if n < 0 {
		sign, str = "-", str[1:]
	}
	if len(str) <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (len(str)-i)%3 == 0 {
			result.WriteString(",")
		}
		result.WriteRune(digit)
	}
	return result.String()
}
