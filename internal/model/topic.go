package model

// Topic groups related claims and sources under one news event
type Topic struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	RiskScore      int        `json:"risk_score"` // 0-10
	Reasoning      string     `json:"reasoning,omitempty"`
	SourceCount    int        `json:"source_count"`
	ClaimCount     int        `json:"claim_count"`
	IsNew          bool       `json:"is_new"`
	FirstDetected  *Timestamp `json:"first_detected,omitempty"`
	WebSearchQuery string     `json:"web_search_query,omitempty"`
}

// TopicsResponse is the payload of GET /topics
type TopicsResponse struct {
	Topics      []Topic    `json:"topics"`
	Total       int        `json:"total"`
	LastUpdated *Timestamp `json:"last_updated,omitempty"`
}

// TopicDetail is the payload of GET /topics/{id}
type TopicDetail struct {
	Topic  Topic   `json:"topic"`
	Claims []Claim `json:"claims"`
}

// AnalyzeResponse is the payload of POST /topics/analyze
type AnalyzeResponse struct {
	Success    bool       `json:"success"`
	Topics     []Topic    `json:"topics"`
	AnalyzedAt *Timestamp `json:"analyzed_at,omitempty"`
}
