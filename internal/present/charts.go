package present

import (
	"fmt"
	"strings"

	"github.com/ppiankov/clarifai/internal/model"
)

// Chart palette
const (
	ColorPrimary = "#8B5CF6"
	ColorGood    = "#22C55E"
	ColorOK      = "#8B5CF6"
	ColorWarning = "#F59E0B"
	ColorDanger  = "#EF4444"
	ColorMuted   = "#6B7280"
)

// DefaultChartHeight is used when a chart is built with height <= 0
const DefaultChartHeight = 300

// chartWidth is the SVG viewBox width; the browser scales it to the container
const chartWidth = 600

// TooltipLine is one labelled value in a chart tooltip
type TooltipLine struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Color string `json:"color,omitempty"`
}

// AreaPoint is one x bucket of an area chart with its SVG coordinates
type AreaPoint struct {
	Name    string        `json:"name"`
	Value   int           `json:"value"`
	Value2  int           `json:"value2,omitempty"`
	X       float64       `json:"x"`
	Y       float64       `json:"y"`
	Y2      float64       `json:"y2,omitempty"`
	Tooltip []TooltipLine `json:"tooltip"`
}

// AreaChart is a trend chart with an optional secondary series
type AreaChart struct {
	Width          int         `json:"width"`
	Height         int         `json:"height"`
	PrimaryColor   string      `json:"primary_color"`
	SecondaryColor string      `json:"secondary_color"`
	ShowSecondary  bool        `json:"show_secondary"`
	Points         []AreaPoint `json:"points"`
	LinePath       string      `json:"line_path"`
	AreaPath       string      `json:"area_path"`
	LinePath2      string      `json:"line_path2,omitempty"`
	AreaPath2      string      `json:"area_path2,omitempty"`
}

// NewAreaChart lays out series on a shared y scale starting at zero
func NewAreaChart(series []model.SeriesPoint, height int, showSecondary bool) AreaChart {
	if height <= 0 {
		height = DefaultChartHeight
	}
	chart := AreaChart{
		Width:          chartWidth,
		Height:         height,
		PrimaryColor:   ColorPrimary,
		SecondaryColor: ColorGood,
		ShowSecondary:  showSecondary,
		Points:         make([]AreaPoint, 0, len(series)),
	}
	if len(series) == 0 {
		return chart
	}

	peak := 0
	for _, p := range series {
		peak = max(peak, p.Value)
		if showSecondary {
			peak = max(peak, p.Value2)
		}
	}

	h := float64(height)
	y := func(v int) float64 {
		if peak <= 0 {
			return h
		}
		return h - ProgressPercent(float64(v), float64(peak))/100*h
	}
	step := 0.0
	if len(series) > 1 {
		step = float64(chartWidth) / float64(len(series)-1)
	}

	for i, p := range series {
		pt := AreaPoint{
			Name:   p.Name,
			Value:  p.Value,
			Value2: p.Value2,
			X:      float64(i) * step,
			Y:      y(p.Value),
			Tooltip: []TooltipLine{
				{Label: "Claims", Value: FormatCount(p.Value), Color: ColorPrimary},
			},
		}
		if showSecondary {
			pt.Y2 = y(p.Value2)
			pt.Tooltip = append(pt.Tooltip, TooltipLine{Label: "Verified", Value: FormatCount(p.Value2), Color: ColorGood})
		}
		chart.Points = append(chart.Points, pt)
	}

	chart.LinePath, chart.AreaPath = areaPaths(chart.Points, h, func(p AreaPoint) float64 { return p.Y })
	if showSecondary {
		chart.LinePath2, chart.AreaPath2 = areaPaths(chart.Points, h, func(p AreaPoint) float64 { return p.Y2 })
	}
	return chart
}

func areaPaths(points []AreaPoint, baseline float64, y func(AreaPoint) float64) (line, area string) {
	var b strings.Builder
	for i, p := range points {
		cmd := "L"
		if i == 0 {
			cmd = "M"
		}
		fmt.Fprintf(&b, "%s%.1f,%.1f ", cmd, p.X, y(p))
	}
	line = strings.TrimSpace(b.String())
	first, last := points[0], points[len(points)-1]
	area = fmt.Sprintf("%s L%.1f,%.1f L%.1f,%.1f Z", line, last.X, baseline, first.X, baseline)
	return line, area
}

// BarDatum is the input of one bar
type BarDatum struct {
	Name   string
	Value  int
	Color  string // Optional; derived from Value when empty
	Claims int    // Optional; 0 omits the claims tooltip line
}

// Bar is one laid-out bar
type Bar struct {
	Name    string        `json:"name"`
	Value   int           `json:"value"`
	Color   string        `json:"color"`
	Length  float64       `json:"length"` // Percent of the axis, 0-100
	Tooltip []TooltipLine `json:"tooltip"`
}

// BarChart is a percentage bar chart
type BarChart struct {
	Height   int      `json:"height"`
	Vertical bool     `json:"vertical"` // Categories on the y axis, bars grow to the right
	Ticks    []string `json:"ticks,omitempty"`
	Bars     []Bar    `json:"bars"`
}

// BarColor picks the bar color for an accuracy value
func BarColor(value int) string {
	switch {
	case value >= 90:
		return ColorGood
	case value >= 80:
		return ColorOK
	case value >= 70:
		return ColorWarning
	default:
		return ColorDanger
	}
}

// NewBarChart lays out bars. Vertical charts use a fixed 0-100% axis;
// horizontal charts scale against the largest value.
func NewBarChart(data []BarDatum, height int, vertical bool) BarChart {
	if height <= 0 {
		height = DefaultChartHeight
	}
	chart := BarChart{Height: height, Vertical: vertical, Bars: make([]Bar, 0, len(data))}

	axisMax := 100
	if vertical {
		chart.Ticks = []string{"0%", "25%", "50%", "75%", "100%"}
	} else {
		axisMax = 0
		for _, d := range data {
			axisMax = max(axisMax, d.Value)
		}
	}

	for _, d := range data {
		color := d.Color
		if color == "" {
			color = BarColor(d.Value)
		}
		bar := Bar{
			Name:    d.Name,
			Value:   d.Value,
			Color:   color,
			Length:  ProgressPercent(float64(d.Value), float64(axisMax)),
			Tooltip: []TooltipLine{{Label: d.Name, Value: fmt.Sprintf("%d%%", d.Value)}},
		}
		if d.Claims != 0 {
			bar.Tooltip = append(bar.Tooltip, TooltipLine{Value: fmt.Sprintf("%s claims analyzed", FormatCount(d.Claims))})
		}
		chart.Bars = append(chart.Bars, bar)
	}
	return chart
}

// DonutDatum is the input of one donut slice
type DonutDatum struct {
	Name  string
	Value int
	Color string
}

// DonutSlice is one laid-out slice. Dash values are in units of a circle
// drawn with pathLength=100.
type DonutSlice struct {
	Name       string  `json:"name"`
	Value      int     `json:"value"`
	Color      string  `json:"color"`
	Share      float64 `json:"share"` // 0-1
	Percent    string  `json:"percent"`
	DashArray  string  `json:"dash_array"`
	DashOffset float64 `json:"dash_offset"`
}

// DonutChart is a share-of-total chart
type DonutChart struct {
	Total       int          `json:"total"`
	CenterLabel string       `json:"center_label,omitempty"`
	CenterValue string       `json:"center_value,omitempty"`
	Slices      []DonutSlice `json:"slices"`
}

// NewDonutChart computes each slice's share of the sum of values.
// Values are not validated; an all-zero series gives every slice 0.0%.
func NewDonutChart(data []DonutDatum, centerLabel string) DonutChart {
	total := 0
	for _, d := range data {
		total += d.Value
	}

	chart := DonutChart{
		Total:       total,
		CenterLabel: centerLabel,
		CenterValue: FormatCount(total),
		Slices:      make([]DonutSlice, 0, len(data)),
	}

	offset := 0.0
	for _, d := range data {
		share := 0.0
		if total != 0 {
			share = float64(d.Value) / float64(total)
		}
		arc := share * 100
		chart.Slices = append(chart.Slices, DonutSlice{
			Name:       d.Name,
			Value:      d.Value,
			Color:      d.Color,
			Share:      share,
			Percent:    fmt.Sprintf("%.1f%%", share*100),
			DashArray:  fmt.Sprintf("%.2f %.2f", arc, 100-arc),
			DashOffset: -offset,
		})
		offset += arc
	}
	return chart
}

// breakdownColors and breakdownNames label claim breakdown slices
var (
	breakdownColors = map[model.ClaimStatus]string{
		model.StatusVerified: ColorGood,
		model.StatusConflict: ColorWarning,
		model.StatusFalse:    ColorDanger,
		model.StatusChecking: ColorMuted,
	}
	breakdownNames = map[model.ClaimStatus]string{
		model.StatusVerified: "Verified",
		model.StatusConflict: "Conflicting",
		model.StatusFalse:    "False",
		model.StatusChecking: "Pending",
	}
)

// BreakdownDonut charts a claim breakdown
func BreakdownDonut(breakdown []BreakdownSlice) DonutChart {
	data := make([]DonutDatum, 0, len(breakdown))
	for _, b := range breakdown {
		data = append(data, DonutDatum{
			Name:  breakdownNames[b.Status],
			Value: b.Count,
			Color: breakdownColors[b.Status],
		})
	}
	return NewDonutChart(data, "Total Claims")
}
