package analytics

// Dataset is one labeled series in a chart payload.
type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// ChartData is the chart shape consumed by the dashboard frontend.
type ChartData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// AverageSales carries the single-value average order total series.
type AverageSales struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}
