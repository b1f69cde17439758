package present

import (
	"github.com/ppiankov/clarifai/internal/model"
)

// StatCard is one headline number on the dashboard
type StatCard struct {
	Title        string  `json:"title"`
	Value        string  `json:"value"`
	Suffix       string  `json:"suffix,omitempty"`
	Icon         string  `json:"icon"`
	Trend        string  `json:"trend,omitempty"` // "+2.1% from last hour"
	TrendVariant Variant `json:"trend_variant,omitempty"`
	Variant      Variant `json:"variant,omitempty"`
}

// StatCards builds the dashboard headline cards. Trends render only for
// the cards the stats carry a change for.
func StatCards(stats model.SystemStats) []StatCard {
	var trends model.StatTrends
	if stats.Trends != nil {
		trends = *stats.Trends
	}
	return []StatCard{
		withTrend(StatCard{Title: "Claims Analyzed", Value: FormatCount(stats.ClaimsAnalyzed), Icon: "bar-chart"}, trends.Claims),
		withTrend(StatCard{Title: "Accuracy Rate", Value: FormatCount(stats.AccuracyRate), Suffix: "%", Icon: "check-circle"}, trends.Accuracy),
		{Title: "Sources Tracked", Value: FormatCount(stats.SourcesTracked), Icon: "activity"},
		withTrend(StatCard{Title: "Misinformation Detected", Value: FormatCount(stats.MisinfoDetected), Icon: "alert-triangle", Variant: VariantDanger}, trends.Misinfo),
		{Title: "Active Topics", Value: FormatCount(stats.TopicsActive), Icon: "newspaper"},
	}
}

func withTrend(card StatCard, change *float64) StatCard {
	if change == nil {
		return card
	}
	card.Trend = FormatSigned(*change, "% from last hour")
	card.TrendVariant = VariantSuccess
	if *change < 0 {
		card.TrendVariant = VariantDanger
	}
	return card
}

// Banner is a non-fatal notice shown above a panel
type Banner struct {
	Variant Variant `json:"variant"`
	Message string  `json:"message"`
}

// Standard banners
var (
	BannerDemoData        = Banner{Variant: VariantWarning, Message: "ClarifAI API is unreachable. Showing demo data."}
	BannerCachedData      = Banner{Variant: VariantWarning, Message: "ClarifAI API is unreachable. Showing cached data."}
	BannerAPIUnavailable  = Banner{Variant: VariantDanger, Message: "ClarifAI API is unreachable."}
	BannerStudioOffline   = Banner{Variant: VariantDanger, Message: "Broadcast studio is unreachable. Briefings cannot be rendered right now."}
	BannerNoData          = Banner{Variant: VariantOutline, Message: "No data to display yet."}
	BannerRejectedRecords = Banner{Variant: VariantWarning, Message: "Some records were malformed and are not shown."}
)
