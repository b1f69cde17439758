package model

// SystemStats backs the dashboard stats cards
type SystemStats struct {
	ClaimsAnalyzed  int `json:"claims_analyzed"`
	AccuracyRate    int `json:"accuracy_rate"`
	SourcesTracked  int `json:"sources_tracked"`
	MisinfoDetected int `json:"misinfo_detected"`
	TopicsActive    int `json:"topics_active"`

	Trends *StatTrends `json:"trends,omitempty"` // Absent when the API has no history
}

// StatTrends are hourly changes in percent; nil fields are unknown
type StatTrends struct {
	Claims   *float64 `json:"claims,omitempty"`
	Accuracy *float64 `json:"accuracy,omitempty"`
	Misinfo  *float64 `json:"misinfo,omitempty"`
}

// Health is the payload of GET /health
type Health struct {
	API       string     `json:"api"`
	Neo4j     string     `json:"neo4j"`
	Timestamp *Timestamp `json:"timestamp,omitempty"`
}

// SeriesPoint is one x-axis bucket of a trend series
type SeriesPoint struct {
	Name   string `json:"name"`
	Value  int    `json:"value"`
	Value2 int    `json:"value2,omitempty"`
}

// SourceAccuracy is one bar of the top-sources chart
type SourceAccuracy struct {
	Name     string `json:"name"`
	Accuracy int    `json:"value"`
	Claims   int    `json:"claims"`
}
