package model

import (
	"fmt"
	"strings"
)

// Claim represents an assertion whose verification status is tracked
type Claim struct {
	ID            string      `json:"id"`
	Text          string      `json:"text"`
	Source        string      `json:"source"`                   // Source name as reported
	SourceDomain  string      `json:"source_domain,omitempty"`  // Publisher domain, when known
	Timestamp     Timestamp   `json:"timestamp"`                // When the claim was seen
	Status        ClaimStatus `json:"status"`                   // Externally assigned
	Confidence    *int        `json:"confidence,omitempty"`     // 0-100, optional
	EvidenceQuote string      `json:"evidence_quote,omitempty"` // Supporting quote, optional
}

// ClaimStatus is the verification status literal assigned by the backend
type ClaimStatus string

const (
	StatusVerified ClaimStatus = "verified" // Corroborated by trusted sources
	StatusConflict ClaimStatus = "conflict" // Sources disagree
	StatusFalse    ClaimStatus = "false"    // Contradicted by trusted sources
	StatusChecking ClaimStatus = "checking" // Verification in progress
)

// ClaimStatuses lists the known statuses in display order
var ClaimStatuses = []ClaimStatus{StatusVerified, StatusConflict, StatusFalse, StatusChecking}

// Known reports whether s is one of the four status literals
func (s ClaimStatus) Known() bool {
	switch s {
	case StatusVerified, StatusConflict, StatusFalse, StatusChecking:
		return true
	default:
		return false
	}
}

// ParseClaimStatus normalizes a raw status literal.
// Unknown values return StatusChecking together with ErrUnknownEnumValue.
func ParseClaimStatus(raw string) (ClaimStatus, error) {
	s := ClaimStatus(strings.ToLower(strings.TrimSpace(raw)))
	if s.Known() {
		return s, nil
	}
	return StatusChecking, fmt.Errorf("claim status %q: %w", raw, ErrUnknownEnumValue)
}

// ClaimsResponse is the payload of GET /claims
type ClaimsResponse struct {
	Claims []Claim `json:"claims"`
	Total  int     `json:"total"`
}

// VerifyRequest is the payload of POST /claims/verify
type VerifyRequest struct {
	Claim string `json:"claim"`
	Topic string `json:"topic,omitempty"`
}

// ClaimVerdict is the result of an on-demand claim verification
type ClaimVerdict struct {
	Claim           string      `json:"claim"`
	Status          ClaimStatus `json:"status"`
	Confidence      int         `json:"confidence"`
	Reasoning       string      `json:"reasoning"`
	SourcesChecked  int         `json:"sources_checked"`
	FactChecksFound int         `json:"fact_checks_found"`
}
