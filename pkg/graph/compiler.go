// Package graph converts between the two explicit shapes of a workflow
// graph: the editable form the canvas editor works on (positions, derived
// convenience fields) and the normalized form that is the execution
// contract. Keeping one pure compiler between two shapes avoids stale
// derived fields on a single mixed type.
package graph

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/apexcrm/flowkit/pkg/models"
)

// Canvas region used when a node has no position yet. Placement is a
// presentation concern only; correctness never depends on it.
const (
	canvasWidth  = 1200
	canvasHeight = 800
)

// EditableNode is a node as the canvas editor sees it: the normalized node
// plus a position and, for delay nodes, a derived human-readable duration.
type EditableNode struct {
	ID        string          `json:"id"`
	Type      models.NodeType `json:"type"`
	Name      string          `json:"name"`
	Config    map[string]any  `json:"config"`
	PositionX int             `json:"position_x"`
	PositionY int             `json:"position_y"`
	Duration  string          `json:"duration,omitempty"`
}

// EditableGraph is the position-annotated graph materialized for an editor
// session.
type EditableGraph struct {
	Nodes []*EditableNode `json:"nodes"`
	Edges []*models.Edge  `json:"edges"`
}

// CompileError reports data outside the expected shape during conversion,
// naming the offending node or edge. The compiler never silently coerces
// invalid input.
type CompileError struct {
	NodeID  string
	Edge    string
	Message string
}

func (e *CompileError) Error() string {
	switch {
	case e.NodeID != "":
		return fmt.Sprintf("compile: node %s: %s", e.NodeID, e.Message)
	case e.Edge != "":
		return fmt.Sprintf("compile: %s: %s", e.Edge, e.Message)
	default:
		return "compile: " + e.Message
	}
}

// Compiler performs the bidirectional editable/normalized conversion.
type Compiler struct {
	rand *rand.Rand
}

// NewCompiler creates a compiler using a time-seeded source for default node
// placement.
func NewCompiler() *Compiler {
	return &Compiler{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ToEditable materializes the editable form of a normalized graph. Every
// node is assigned a position within the canvas region, and delay nodes gain
// a derived duration label.
func (c *Compiler) ToEditable(g *models.Graph) (*EditableGraph, error) {
	source := g.Clone()

	editable := &EditableGraph{
		Nodes: make([]*EditableNode, 0, len(source.Nodes)),
		Edges: source.Edges,
	}

	for _, node := range source.Nodes {
		en := &EditableNode{
			ID:        node.ID,
			Type:      node.Type,
			Name:      node.Name,
			Config:    node.Config,
			PositionX: c.rand.Intn(canvasWidth),
			PositionY: c.rand.Intn(canvasHeight),
		}

		switch node.Type {
		case models.NodeTypeAction, models.NodeTypeCondition, models.NodeTypeSplit:
		case models.NodeTypeDelay:
			ms, err := models.DelayDurationMs(node.Config)
			if err != nil {
				return nil, &CompileError{NodeID: node.ID, Message: err.Error()}
			}

			en.Duration = FormatDuration(ms)
		default:
			return nil, &CompileError{NodeID: node.ID, Message: fmt.Sprintf("unknown node type %q", node.Type)}
		}

		editable.Nodes = append(editable.Nodes, en)
	}

	return editable, nil
}

// ToNormalized strips editor-only fields and re-derives canonical config
// from convenience fields. For delay nodes an edited duration label wins over
// a stale duration_ms value, since the label is what the editor exposes.
func (c *Compiler) ToNormalized(e *EditableGraph) (*models.Graph, error) {
	normalized := &models.Graph{
		Nodes: make([]*models.Node, 0, len(e.Nodes)),
		Edges: make([]*models.Edge, 0, len(e.Edges)),
	}

	for _, en := range e.Nodes {
		node := &models.Node{
			ID:     en.ID,
			Type:   en.Type,
			Name:   en.Name,
			Config: stripEditorKeys(en.Config),
		}

		switch en.Type {
		case models.NodeTypeAction, models.NodeTypeCondition, models.NodeTypeSplit:
		case models.NodeTypeDelay:
			ms, err := c.delayMillis(en)
			if err != nil {
				return nil, err
			}

			if node.Config == nil {
				node.Config = make(map[string]any, 1)
			}

			node.Config[models.ConfigKeyDurationMs] = ms
		default:
			return nil, &CompileError{NodeID: en.ID, Message: fmt.Sprintf("unknown node type %q", en.Type)}
		}

		normalized.Nodes = append(normalized.Nodes, node)
	}

	for _, edge := range e.Edges {
		copied := &models.Edge{From: edge.From, To: edge.To}

		if edge.Condition != nil {
			cond := *edge.Condition
			copied.Condition = &cond
		}

		normalized.Edges = append(normalized.Edges, copied)
	}

	return normalized, nil
}

// delayMillis resolves the canonical duration of an editable delay node.
func (c *Compiler) delayMillis(en *EditableNode) (int64, error) {
	if en.Duration != "" {
		ms, err := ParseDuration(en.Duration)
		if err != nil {
			return 0, &CompileError{NodeID: en.ID, Message: err.Error()}
		}

		return ms, nil
	}

	ms, err := models.DelayDurationMs(en.Config)
	if err != nil {
		return 0, &CompileError{NodeID: en.ID, Message: err.Error()}
	}

	return ms, nil
}

// stripEditorKeys deep-copies a config, dropping top-level keys that only
// exist on the editable form and are not part of the execution contract.
func stripEditorKeys(config map[string]any) map[string]any {
	if config == nil {
		return nil
	}

	copied := make(map[string]any, len(config))

	for key, value := range config {
		switch key {
		case "duration", "position", "position_x", "position_y":
			continue
		}

		copied[key] = deepCopyValue(value)
	}

	return copied
}

func deepCopyValue(value any) any {
	switch v := value.(type) {
	case map[string]any:
		copied := make(map[string]any, len(v))
		for key, item := range v {
			copied[key] = deepCopyValue(item)
		}

		return copied
	case []any:
		items := make([]any, len(v))
		for i, item := range v {
			items[i] = deepCopyValue(item)
		}

		return items
	default:
		return v
	}
}
