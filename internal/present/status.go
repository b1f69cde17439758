package present

import (
	"time"

	"github.com/ppiankov/clarifai/internal/model"
)

// StatusDisplay is how a claim status is drawn
type StatusDisplay struct {
	Icon    string  `json:"icon"`
	Label   string  `json:"label"`
	Variant Variant `json:"variant"`
}

var checkingDisplay = StatusDisplay{Icon: "clock", Label: "Checking", Variant: VariantOutline}

var statusDisplays = map[model.ClaimStatus]StatusDisplay{
	model.StatusVerified: {Icon: "check-circle", Label: "Verified", Variant: VariantSuccess},
	model.StatusConflict: {Icon: "alert-triangle", Label: "Conflicts", Variant: VariantWarning},
	model.StatusFalse:    {Icon: "x-circle", Label: "False", Variant: VariantDanger},
	model.StatusChecking: checkingDisplay,
}

// StatusDisplayFor is total: any unrecognized status, including empty, renders as checking
func StatusDisplayFor(status model.ClaimStatus) StatusDisplay {
	if d, ok := statusDisplays[status]; ok {
		return d
	}
	return checkingDisplay
}

// FeedItem is one row of the live claim feed
type FeedItem struct {
	Claim     model.Claim   `json:"claim"`
	Display   StatusDisplay `json:"display"`
	TimeAgo   string        `json:"time_ago"`
	Highlight bool          `json:"highlight"` // Most recent item
}

// BuildFeed decorates claims in the order given; the first item is highlighted
func BuildFeed(claims []model.Claim, now time.Time) []FeedItem {
	items := make([]FeedItem, 0, len(claims))
	for i, c := range claims {
		items = append(items, FeedItem{
			Claim:     c,
			Display:   StatusDisplayFor(c.Status),
			TimeAgo:   TimeAgo(c.Timestamp.Time, now),
			Highlight: i == 0,
		})
	}
	return items
}

// ClaimPair sets a disputed claim beside a verified one on the same topic
type ClaimPair struct {
	Disputed FeedItem `json:"disputed"`
	Verified FeedItem `json:"verified"`
}

// PairDisputed returns the first conflicting or false item and the first
// verified item of feed, or nil unless both exist
func PairDisputed(feed []FeedItem) *ClaimPair {
	var disputed, verified *FeedItem
	for i := range feed {
		switch feed[i].Claim.Status {
		case model.StatusConflict, model.StatusFalse:
			if disputed == nil {
				disputed = &feed[i]
			}
		case model.StatusVerified:
			if verified == nil {
				verified = &feed[i]
			}
		}
	}
	if disputed == nil || verified == nil {
		return nil
	}
	return &ClaimPair{Disputed: *disputed, Verified: *verified}
}

// BreakdownSlice is one status bucket of a claim breakdown
type BreakdownSlice struct {
	Status  model.ClaimStatus `json:"status"`
	Display StatusDisplay     `json:"display"`
	Count   int               `json:"count"`
}

// ClaimBreakdown counts claims per status in display order.
// Unknown statuses are counted as checking.
func ClaimBreakdown(claims []model.Claim) []BreakdownSlice {
	counts := make(map[model.ClaimStatus]int, len(model.ClaimStatuses))
	for _, c := range claims {
		status := c.Status
		if !status.Known() {
			status = model.StatusChecking
		}
		counts[status]++
	}
	return BreakdownFromCounts(counts)
}

// BreakdownFromCounts orders precomputed counts by status
func BreakdownFromCounts(counts map[model.ClaimStatus]int) []BreakdownSlice {
	slices := make([]BreakdownSlice, 0, len(model.ClaimStatuses))
	for _, status := range model.ClaimStatuses {
		slices = append(slices, BreakdownSlice{
			Status:  status,
			Display: StatusDisplayFor(status),
			Count:   counts[status],
		})
	}
	return slices
}
