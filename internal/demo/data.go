// Package demo holds the static data the dashboard renders when no API is reachable
package demo

import (
	"time"

	"github.com/ppiankov/clarifai/internal/model"
)

// Topics returns the demo topic list
func Topics() []model.Topic {
	return []model.Topic{
		{ID: "karnataka-crisis", Title: "Karnataka Congress Leadership Crisis", RiskScore: 8, SourceCount: 12, ClaimCount: 34, IsNew: true},
		{ID: "hong-kong-fire", Title: "Hong Kong High-Rise Fire", RiskScore: 6, SourceCount: 8, ClaimCount: 21},
		{ID: "tech-layoffs", Title: "Tech Industry Layoffs 2025", RiskScore: 4, SourceCount: 15, ClaimCount: 18},
		{ID: "climate-summit", Title: "Climate Summit Announcements", RiskScore: 3, SourceCount: 20, ClaimCount: 12},
	}
}

// Sources returns the demo source list (unsorted, as an API would return it)
func Sources() []model.Source {
	return []model.Source{
		{ID: "toi", Name: "Times of India", Domain: "timesofindia.com", TrustScore: 94, Change: 3, VerifiedClaims: 12},
		{ID: "ndtv", Name: "NDTV", Domain: "ndtv.com", TrustScore: 87, Change: -2, VerifiedClaims: 9, Contradictions: 1},
		{ID: "ht", Name: "Hindustan Times", Domain: "hindustantimes.com", TrustScore: 82, VerifiedClaims: 7},
		{ID: "it", Name: "India Today", Domain: "indiatoday.in", TrustScore: 79, Change: 1, VerifiedClaims: 8, Contradictions: 1},
		{ID: "unknown", Name: "Unknown Blog", Domain: "unknown-blog.com", TrustScore: 23, Change: -5, Contradictions: 3},
	}
}

// Claims returns the demo claim feed, newest first, timestamped relative to now
func Claims(now time.Time) []model.Claim {
	ago := func(minutes int) model.Timestamp {
		return model.NewTimestamp(now.Add(-time.Duration(minutes) * time.Minute))
	}

	return []model.Claim{
		{ID: "claim-1", Text: "CM Siddaramaiah has submitted resignation to high command", Source: "Times of India", Timestamp: ago(2), Status: model.StatusChecking},
		{ID: "claim-2", Text: "Sources confirm CM has NOT resigned and continues in office", Source: "NDTV", Timestamp: ago(5), Status: model.StatusConflict},
		{ID: "claim-3", Text: "Congress high command summons both leaders for discussions", Source: "Hindustan Times", Timestamp: ago(8), Status: model.StatusVerified},
		{ID: "claim-4", Text: "DK Shivakumar to be announced as new CM by Friday", Source: "India Today", Timestamp: ago(15), Status: model.StatusChecking},
		{ID: "claim-5", Text: "Violence reported outside Congress office in Bengaluru", Source: "Unknown Blog", Timestamp: ago(25), Status: model.StatusFalse},
	}
}

// Graph returns the demo knowledge graph
func Graph() model.GraphResponse {
	nodes := []model.GraphNode{
		{ID: "e1", Label: "High Command Summons Leaders", Type: model.NodeEvent},
		{ID: "e2", Label: "Emergency Meeting Called", Type: model.NodeEvent},
		{ID: "e3", Label: "Press Conference", Type: model.NodeEvent},
		{ID: "e4", Label: "Party Workers Gather", Type: model.NodeEvent},
		{ID: "e5", Label: "Delhi Discussions", Type: model.NodeEvent},

		{ID: "p1", Label: "Siddaramaiah", Type: model.NodeEntity},
		{ID: "p2", Label: "DK Shivakumar", Type: model.NodeEntity},
		{ID: "p3", Label: "Congress High Command", Type: model.NodeEntity},
		{ID: "p4", Label: "Rahul Gandhi", Type: model.NodeEntity},
		{ID: "p5", Label: "Mallikarjun Kharge", Type: model.NodeEntity},
		{ID: "p6", Label: "Karnataka Congress", Type: model.NodeEntity},
		{ID: "p7", Label: "AICC", Type: model.NodeEntity},

		{ID: "c1", Label: "CM Resigned", Type: model.NodeClaim},
		{ID: "c2", Label: "No Resignation Filed", Type: model.NodeClaim},
		{ID: "c3", Label: "New CM by Friday", Type: model.NodeClaim},
		{ID: "c4", Label: "Power Sharing Deal", Type: model.NodeClaim},
		{ID: "c5", Label: "Violence at Office", Type: model.NodeClaim},
		{ID: "c6", Label: "Peaceful Transition", Type: model.NodeClaim},

		{ID: "s1", Label: "Times of India", Type: model.NodeSource},
		{ID: "s2", Label: "NDTV", Type: model.NodeSource},
		{ID: "s3", Label: "Hindustan Times", Type: model.NodeSource},
		{ID: "s4", Label: "India Today", Type: model.NodeSource},
		{ID: "s5", Label: "The Hindu", Type: model.NodeSource},
		{ID: "s6", Label: "Unknown Blog", Type: model.NodeSource},
	}

	edges := []model.GraphEdge{
		{Source: "p3", Target: "e1", Relationship: "INITIATED"},
		{Source: "e1", Target: "e2", Relationship: "TRIGGERED"},
		{Source: "e2", Target: "e5", Relationship: "LED_TO"},
		{Source: "e5", Target: "e3", Relationship: "FOLLOWED_BY"},

		{Source: "p1", Target: "e1", Relationship: "SUMMONED_TO"},
		{Source: "p2", Target: "e1", Relationship: "SUMMONED_TO"},
		{Source: "p4", Target: "e5", Relationship: "PARTICIPATED_IN"},
		{Source: "p5", Target: "e5", Relationship: "CHAIRED"},
		{Source: "p6", Target: "e4", Relationship: "ORGANIZED"},

		{Source: "p1", Target: "p6", Relationship: "LEADS"},
		{Source: "p2", Target: "p6", Relationship: "DEPUTY_OF"},
		{Source: "p3", Target: "p7", Relationship: "PART_OF"},
		{Source: "p4", Target: "p3", Relationship: "MEMBER_OF"},

		{Source: "s1", Target: "c1", Relationship: "REPORTED"},
		{Source: "s2", Target: "c2", Relationship: "REPORTED"},
		{Source: "s3", Target: "c4", Relationship: "REPORTED"},
		{Source: "s4", Target: "c3", Relationship: "REPORTED"},
		{Source: "s5", Target: "c6", Relationship: "REPORTED"},
		{Source: "s6", Target: "c5", Relationship: "REPORTED"},

		{Source: "c1", Target: "c2", Relationship: "CONTRADICTS"},
		{Source: "c5", Target: "c6", Relationship: "CONTRADICTS"},
		{Source: "c3", Target: "e5", Relationship: "ABOUT"},
		{Source: "c4", Target: "p1", Relationship: "INVOLVES"},
		{Source: "c4", Target: "p2", Relationship: "INVOLVES"},

		{Source: "c1", Target: "p1", Relationship: "CLAIMS_ABOUT"},
		{Source: "c2", Target: "p1", Relationship: "CLAIMS_ABOUT"},
		{Source: "c6", Target: "e4", Relationship: "DESCRIBES"},
	}

	return model.GraphResponse{
		Nodes:      nodes,
		Edges:      edges,
		TotalNodes: len(nodes),
		TotalEdges: len(edges),
	}
}

// Stats returns the demo stats cards
func Stats() model.SystemStats {
	return model.SystemStats{
		ClaimsAnalyzed:  1247,
		AccuracyRate:    89,
		SourcesTracked:  47,
		MisinfoDetected: 12,
		TopicsActive:    len(Topics()),
		Trends: &model.StatTrends{
			Claims:   ptr(12.0),
			Accuracy: ptr(2.0),
			Misinfo:  ptr(-5.0),
		},
	}
}

func ptr[T any](v T) *T { return &v }

// WeeklyTrend returns claims analyzed (value) and verified (value2) per weekday
func WeeklyTrend() []model.SeriesPoint {
	return []model.SeriesPoint{
		{Name: "Mon", Value: 1245, Value2: 1120},
		{Name: "Tue", Value: 1890, Value2: 1680},
		{Name: "Wed", Value: 2100, Value2: 1890},
		{Name: "Thu", Value: 1780, Value2: 1620},
		{Name: "Fri", Value: 2340, Value2: 2150},
		{Name: "Sat", Value: 1650, Value2: 1480},
		{Name: "Sun", Value: 1420, Value2: 1290},
	}
}

// TopSources returns per-source verification accuracy
func TopSources() []model.SourceAccuracy {
	return []model.SourceAccuracy{
		{Name: "Times of India", Accuracy: 94, Claims: 342},
		{Name: "The Hindu", Accuracy: 91, Claims: 176},
		{Name: "NDTV", Accuracy: 87, Claims: 287},
		{Name: "Hindustan Times", Accuracy: 82, Claims: 256},
		{Name: "India Today", Accuracy: 79, Claims: 198},
	}
}

// ClaimBreakdown returns all-time claim counts per status
func ClaimBreakdown() map[model.ClaimStatus]int {
	return map[model.ClaimStatus]int{
		model.StatusVerified: 8234,
		model.StatusConflict: 2103,
		model.StatusFalse:    1547,
		model.StatusChecking: 963,
	}
}

// BriefingTranscript is the transcript preview shown before any briefing is generated
const BriefingTranscript = "Good evening. Based on verified sources, here's what we know about " +
	"the Karnataka leadership situation. The Congress high command has " +
	"summoned both leaders for discussions..."
