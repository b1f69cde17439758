package present

import "github.com/ppiankov/clarifai/internal/model"

// RiskLevel buckets a topic's 0-10 risk score
type RiskLevel string

const (
	RiskHigh   RiskLevel = "high"
	RiskMedium RiskLevel = "medium"
	RiskLow    RiskLevel = "low"
)

// RiskLevels lists levels from most to least severe
var RiskLevels = []RiskLevel{RiskHigh, RiskMedium, RiskLow}

// RiskFor buckets a risk score: >= 7 high, >= 4 medium, else low
func RiskFor(score int) RiskLevel {
	switch {
	case score >= 7:
		return RiskHigh
	case score >= 4:
		return RiskMedium
	default:
		return RiskLow
	}
}

// ParseRiskLevel returns the level and whether raw named one
func ParseRiskLevel(raw string) (RiskLevel, bool) {
	for _, l := range RiskLevels {
		if string(l) == raw {
			return l, true
		}
	}
	return "", false
}

// Label is the badge text
func (l RiskLevel) Label() string {
	switch l {
	case RiskHigh:
		return "High Risk"
	case RiskMedium:
		return "Medium Risk"
	default:
		return "Low Risk"
	}
}

// Variant is the badge style
func (l RiskLevel) Variant() Variant {
	switch l {
	case RiskHigh:
		return VariantDanger
	case RiskMedium:
		return VariantWarning
	default:
		return VariantSuccess
	}
}

// TopicCard is a topic decorated for the news and dashboard pages
type TopicCard struct {
	Topic   model.Topic `json:"topic"`
	Level   RiskLevel   `json:"level"`
	Label   string      `json:"label"`
	Variant Variant     `json:"variant"`
}

// TopicCards decorates topics, keeping only those at level when level is set
func TopicCards(topics []model.Topic, level RiskLevel) []TopicCard {
	cards := make([]TopicCard, 0, len(topics))
	for _, t := range topics {
		l := RiskFor(t.RiskScore)
		if level != "" && l != level {
			continue
		}
		cards = append(cards, TopicCard{Topic: t, Level: l, Label: l.Label(), Variant: l.Variant()})
	}
	return cards
}

// RiskCounts counts topics per risk level; every level is present
func RiskCounts(topics []model.Topic) map[RiskLevel]int {
	counts := map[RiskLevel]int{RiskHigh: 0, RiskMedium: 0, RiskLow: 0}
	for _, t := range topics {
		counts[RiskFor(t.RiskScore)]++
	}
	return counts
}
