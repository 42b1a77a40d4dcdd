package graph

import (
	"encoding/json"
	"fmt"

	"github.com/apexcrm/flowkit/pkg/models"
)

// DecodeNormalized parses an externally supplied normalized graph document.
// Shape problems are rejected with a CompileError naming the offending node
// or edge rather than being coerced.
func DecodeNormalized(data []byte) (*models.Graph, error) {
	var g models.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, &CompileError{Message: "graph document is not valid JSON: " + err.Error()}
	}

	for i, node := range g.Nodes {
		if node == nil {
			return nil, &CompileError{Message: fmt.Sprintf("nodes[%d] is null", i)}
		}

		if err := checkNodeShape(node.ID, node.Type); err != nil {
			return nil, err
		}

		canonicalizeDelayConfig(node)
	}

	if err := checkEdgeShapes(g.Edges); err != nil {
		return nil, err
	}

	return &g, nil
}

// DecodeEditable parses an editable graph document as submitted by the
// editor on save.
func DecodeEditable(data []byte) (*EditableGraph, error) {
	var e EditableGraph
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, &CompileError{Message: "graph document is not valid JSON: " + err.Error()}
	}

	for i, node := range e.Nodes {
		if node == nil {
			return nil, &CompileError{Message: fmt.Sprintf("nodes[%d] is null", i)}
		}

		if err := checkNodeShape(node.ID, node.Type); err != nil {
			return nil, err
		}
	}

	if err := checkEdgeShapes(e.Edges); err != nil {
		return nil, err
	}

	return &e, nil
}

func checkNodeShape(id string, nodeType models.NodeType) error {
	if id == "" {
		return &CompileError{Message: "node is missing an id"}
	}

	switch nodeType {
	case models.NodeTypeAction, models.NodeTypeCondition, models.NodeTypeDelay, models.NodeTypeSplit:
		return nil
	case "":
		return &CompileError{NodeID: id, Message: "node is missing a type"}
	default:
		return &CompileError{NodeID: id, Message: fmt.Sprintf("unknown node type %q", nodeType)}
	}
}

// canonicalizeDelayConfig rewrites a delay node's duration_ms as int64.
// encoding/json decodes numbers as float64, which would make a decoded graph
// compare unequal to one built in memory. Malformed durations are left alone
// for Validate to report.
func canonicalizeDelayConfig(node *models.Node) {
	if node.Type != models.NodeTypeDelay || node.Config == nil {
		return
	}

	ms, err := models.DelayDurationMs(node.Config)
	if err != nil {
		return
	}

	node.Config[models.ConfigKeyDurationMs] = ms
}

func checkEdgeShapes(edges []*models.Edge) error {
	for i, edge := range edges {
		subject := fmt.Sprintf("edges[%d]", i)

		if edge == nil {
			return &CompileError{Edge: subject, Message: "edge is null"}
		}

		if edge.From == "" || edge.To == "" {
			return &CompileError{Edge: subject, Message: "edge requires both from and to"}
		}
	}

	return nil
}
