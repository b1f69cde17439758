package model

import (
	"fmt"
	"strings"
)

// GraphNode is a knowledge-graph vertex used for display only
type GraphNode struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Type  NodeType `json:"type"`
}

// GraphEdge links two nodes by id
type GraphEdge struct {
	Source       string `json:"source"`
	Target       string `json:"target"`
	Relationship string `json:"relationship"`
}

// NodeType classifies graph nodes
type NodeType string

const (
	NodeEvent  NodeType = "event"
	NodeEntity NodeType = "entity"
	NodeClaim  NodeType = "claim"
	NodeSource NodeType = "source"
)

// ParseNodeType normalizes a raw node type.
// Unknown values return NodeEntity together with ErrUnknownEnumValue.
func ParseNodeType(raw string) (NodeType, error) {
	t := NodeType(strings.ToLower(strings.TrimSpace(raw)))
	switch t {
	case NodeEvent, NodeEntity, NodeClaim, NodeSource:
		return t, nil
	default:
		return NodeEntity, fmt.Errorf("node type %q: %w", raw, ErrUnknownEnumValue)
	}
}

// GraphResponse is the payload of GET /graph/nodes
type GraphResponse struct {
	Nodes      []GraphNode `json:"nodes"`
	Edges      []GraphEdge `json:"edges"`
	Topic      string      `json:"topic,omitempty"`
	TotalNodes int         `json:"total_nodes"`
	TotalEdges int         `json:"total_edges"`
}

// GraphStats is the payload of GET /graph/stats: node counts by label
type GraphStats map[string]int
