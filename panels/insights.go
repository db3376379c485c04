package panels

import "github.com/srivarshini-21/india-vaccination-dashboard/dataset"

const (
	DefaultPopulation   int64 = 1_400_000_000
	DefaultCampaignDays       = 240
)

// Insights are the headline figures of the insights panel.
type Insights struct {
	TotalDoses         int64   `json:"totalDoses"`
	CoveragePercent    float64 `json:"coveragePercent"`
	DailyAverage       int64   `json:"dailyAverage"`
	ProjectedPercent   float64 `json:"projectedPercent"`
	Population         int64   `json:"population"`
	CampaignDays       int     `json:"campaignDays"`
	LeadingRegion      string  `json:"leadingRegion,omitempty"`
	LeadingRegionShare float64 `json:"leadingRegionShare"`
}

// ComputeInsights derives the panel figures from the dataset. Non-positive
// population or campaign length yields zero for the dependent figures.
func ComputeInsights(ds *dataset.Dataset, population int64, campaignDays int) Insights {
	in := Insights{
		TotalDoses:   ds.TotalOverall(),
		Population:   population,
		CampaignDays: campaignDays,
	}
	if population > 0 {
		in.CoveragePercent = float64(in.TotalDoses) * 100 / float64(population)
		in.ProjectedPercent = in.CoveragePercent * 1.2
		if in.ProjectedPercent > 100 {
			in.ProjectedPercent = 100
		}
	}
	if campaignDays > 0 {
		in.DailyAverage = in.TotalDoses / int64(campaignDays)
	}
	if top := Summary(ds, 1); len(top) == 1 {
		in.LeadingRegion = top[0].Record.Name
		if in.TotalDoses > 0 {
			in.LeadingRegionShare = float64(top[0].Record.Overall) * 100 / float64(in.TotalDoses)
		}
	}
	return in
}
