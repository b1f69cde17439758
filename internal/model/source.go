package model

// Source represents a publisher with an externally computed trust score
type Source struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Domain         string `json:"domain"`
	TrustScore     int    `json:"trust_score"`     // 0-100, not enforced here
	Change         int    `json:"change"`          // Signed delta from the previous score
	VerifiedClaims int    `json:"verified_claims"` // Claims from this source that verified
	Contradictions int    `json:"contradictions"`  // Claims from this source that were contradicted
}

// SourcesResponse is the payload of GET /sources
type SourcesResponse struct {
	Sources []Source `json:"sources"`
	Total   int      `json:"total"`
}
