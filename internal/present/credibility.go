package present

import (
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/clarifai/internal/model"
)

// Tier buckets a trust score for display
type Tier string

const (
	TierGood   Tier = "good"
	TierMedium Tier = "medium"
	TierPoor   Tier = "poor"
)

// Tier thresholds, inclusive
const (
	GoodTrustScore   = 80
	MediumTrustScore = 50
)

// TierFor buckets a trust score. Boundaries resolve to the higher tier.
func TierFor(score int) Tier {
	switch {
	case score >= GoodTrustScore:
		return TierGood
	case score >= MediumTrustScore:
		return TierMedium
	default:
		return TierPoor
	}
}

// Variant maps the tier to its display variant
func (t Tier) Variant() Variant {
	switch t {
	case TierGood:
		return VariantSuccess
	case TierMedium:
		return VariantWarning
	default:
		return VariantDanger
	}
}

// ProgressPercent returns value/max as a percentage clamped to [0,100].
// A non-positive max yields 0.
func ProgressPercent(value, max float64) float64 {
	if max <= 0 || math.IsNaN(value) {
		return 0
	}
	return math.Min(math.Max(value/max*100, 0), 100)
}

// TrendDirection is the sign of a score change
type TrendDirection string

const (
	TrendUp   TrendDirection = "up"
	TrendDown TrendDirection = "down"
	TrendFlat TrendDirection = "flat"
)

// Trend is a score change split into direction and magnitude
type Trend struct {
	Direction TrendDirection `json:"direction"`
	Magnitude int            `json:"magnitude"`
}

// TrendOf splits a signed change
func TrendOf(change int) Trend {
	switch {
	case change > 0:
		return Trend{Direction: TrendUp, Magnitude: change}
	case change < 0:
		return Trend{Direction: TrendDown, Magnitude: -change}
	default:
		return Trend{Direction: TrendFlat}
	}
}

// Variant colors rising trust green and falling trust red
func (t Trend) Variant() Variant {
	switch t.Direction {
	case TrendUp:
		return VariantSuccess
	case TrendDown:
		return VariantDanger
	default:
		return VariantDefault
	}
}

// CredibilityRow is one ranked line of the credibility panel
type CredibilityRow struct {
	Rank               int          `json:"rank"` // 1-based
	Source             model.Source `json:"source"`
	Tier               Tier         `json:"tier"`
	Variant            Variant      `json:"variant"`
	Progress           float64      `json:"progress"`
	Trend              Trend        `json:"trend"`
	Link               string       `json:"link,omitempty"`
	ShowVerified       bool         `json:"show_verified"`
	ShowContradictions bool         `json:"show_contradictions"`
}

// RankSources orders sources by descending trust score and decorates each row.
// Equal scores keep their input order. The input slice is not modified.
func RankSources(sources []model.Source) []CredibilityRow {
	ordered := make([]model.Source, len(sources))
	copy(ordered, sources)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].TrustScore > ordered[j].TrustScore
	})

	rows := make([]CredibilityRow, 0, len(ordered))
	for i, s := range ordered {
		tier := TierFor(s.TrustScore)
		rows = append(rows, CredibilityRow{
			Rank:               i + 1,
			Source:             s,
			Tier:               tier,
			Variant:            tier.Variant(),
			Progress:           ProgressPercent(float64(s.TrustScore), 100),
			Trend:              TrendOf(s.Change),
			Link:               SourceLink(s.Domain),
			ShowVerified:       s.VerifiedClaims > 0,
			ShowContradictions: s.Contradictions > 0,
		})
	}
	return rows
}

// SourceLink returns the external link for a publisher domain
func SourceLink(domain string) string {
	domain = strings.TrimSpace(domain)
	if domain == "" {
		return ""
	}
	if strings.HasPrefix(domain, "http://") || strings.HasPrefix(domain, "https://") {
		return domain
	}
	return "https://" + domain
}
