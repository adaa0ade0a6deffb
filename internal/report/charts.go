package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/dormeight/exome.report/internal/tracker"
)

// BarChart builds a bar chart over the numeric rows of a result, keeping the
// tracker's label order on the x axis. Results with no numeric rows (for
// example per-SNP tuple listings) return nil.
func BarChart(title, subtitle string, result *tracker.Result) *charts.Bar {
	var labels []string
	var data []opts.BarData
	for _, row := range result.Rows() {
		v, ok := numericValue(row.Value)
		if !ok {
			continue
		}
		labels = append(labels, row.Label)
		data = append(data, opts.BarData{Value: v})
	}
	if len(data) == 0 {
		return nil
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(labels)
	bar.AddSeries(title, data)
	return bar
}

// RenderChartHTML renders a single tracker result as a standalone bar chart
// page.
func RenderChartHTML(w io.Writer, title, subtitle string, result *tracker.Result) error {
	bar := BarChart(title, subtitle, result)
	if bar == nil {
		return fmt.Errorf("result for %s has no numeric rows to chart", title)
	}
	return bar.Render(w)
}

// NewReportPage returns an empty echarts page that report charts are
// appended to.
func NewReportPage(title string) *components.Page {
	page := components.NewPage()
	page.PageTitle = title
	return page
}
