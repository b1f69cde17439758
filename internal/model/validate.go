package model

import "strings"

// ValidateSource checks the fields a credibility row cannot render without
func ValidateSource(s Source) error {
	if strings.TrimSpace(s.ID) == "" {
		return &DataError{Entity: "source", Field: "id", Reason: "is empty"}
	}
	if strings.TrimSpace(s.Name) == "" {
		return &DataError{Entity: "source", ID: s.ID, Field: "name", Reason: "is empty"}
	}
	return nil
}

// ValidateClaim checks the fields a feed row cannot render without
func ValidateClaim(c Claim) error {
	if strings.TrimSpace(c.ID) == "" {
		return &DataError{Entity: "claim", Field: "id", Reason: "is empty"}
	}
	if strings.TrimSpace(c.Text) == "" {
		return &DataError{Entity: "claim", ID: c.ID, Field: "text", Reason: "is empty"}
	}
	return nil
}

// ValidateTopic checks the fields a topic card cannot render without
func ValidateTopic(t Topic) error {
	if strings.TrimSpace(t.ID) == "" {
		return &DataError{Entity: "topic", Field: "id", Reason: "is empty"}
	}
	if strings.TrimSpace(t.Title) == "" {
		return &DataError{Entity: "topic", ID: t.ID, Field: "title", Reason: "is empty"}
	}
	return nil
}

// ValidateGraphNode checks a node has an id
func ValidateGraphNode(n GraphNode) error {
	if strings.TrimSpace(n.ID) == "" {
		return &DataError{Entity: "graph node", Field: "id", Reason: "is empty"}
	}
	return nil
}

// ValidateGraphEdge checks both endpoints are set
func ValidateGraphEdge(e GraphEdge) error {
	if strings.TrimSpace(e.Source) == "" || strings.TrimSpace(e.Target) == "" {
		return &DataError{Entity: "graph edge", Field: "source/target", Reason: "is empty"}
	}
	return nil
}

// FilterValid keeps the records that pass validate and returns the rejections.
// A single bad record never blocks the rest of the list.
func FilterValid[T any](records []T, validate func(T) error) ([]T, []error) {
	kept := make([]T, 0, len(records))
	var rejected []error
	for _, r := range records {
		if err := validate(r); err != nil {
			rejected = append(rejected, err)
			continue
		}
		kept = append(kept, r)
	}
	return kept, rejected
}
