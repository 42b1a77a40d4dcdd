package models

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/Knetic/govaluate"
)

// NodeType represents the kind of step a node performs.
type NodeType string

const (
	NodeTypeAction    NodeType = "action"    // Performs a side effect at execution time (email.send, task.create, ...)
	NodeTypeCondition NodeType = "condition" // Evaluates a boolean expression to gate downstream nodes
	NodeTypeDelay     NodeType = "delay"     // Waits a configured duration
	NodeTypeSplit     NodeType = "split"     // A/B branch point; branch semantics belong to the runtime
)

// Config keys understood by the core. Action configs additionally carry
// kind-specific parameters validated against the registry's schemas.
const (
	ConfigKeyActionKind = "action_kind"
	ConfigKeyExpr       = "expr"
	ConfigKeyDurationMs = "duration_ms"
	ConfigKeyLabel      = "label"
)

// Node is one step in a workflow graph. Positions live only on the editable
// form, not here: the normalized graph is the execution contract.
type Node struct {
	ID     string         `json:"id"     validate:"required"`
	Type   NodeType       `json:"type"   validate:"required,oneof=action condition delay split"`
	Name   string         `json:"name"`
	Config map[string]any `json:"config"`
}

// Edge is a directed, optionally guarded transition between two nodes.
// A nil Condition means the edge is unconditional.
type Edge struct {
	From      string  `json:"from" validate:"required"`
	To        string  `json:"to"   validate:"required"`
	Condition *string `json:"condition"`
}

// Graph holds the normalized workflow graph: nodes with unique ids and an
// ordered edge list. It is pure data; all methods are read-only except Clone.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// NodeCount returns the number of nodes, for summary display.
func (g *Graph) NodeCount() int {
	return len(g.Nodes)
}

// EdgeCount returns the number of edges, for summary display.
func (g *Graph) EdgeCount() int {
	return len(g.Edges)
}

// Node returns the node with the given id, or nil.
func (g *Graph) Node(id string) *Node {
	for _, n := range g.Nodes {
		if n.ID == id {
			return n
		}
	}

	return nil
}

// Validate checks the graph's structural invariants: unique node ids, no
// dangling edge references, per-type config shape, and at least one
// entry-point node when the graph is non-empty. Cycles are not a structural
// violation; cycle policy belongs to the execution runtime.
func (g *Graph) Validate() ValidationResult {
	var result ValidationResult

	seen := make(map[string]bool, len(g.Nodes))

	for _, node := range g.Nodes {
		if node.ID == "" {
			result.Add("NODE_ID_REQUIRED", "", "node id must not be empty")

			continue
		}

		if seen[node.ID] {
			result.Add("NODE_ID_DUPLICATE", node.ID, "node id is used more than once")

			continue
		}

		seen[node.ID] = true

		result.Merge(validateNodeConfig(node))
	}

	hasIncoming := make(map[string]bool, len(g.Nodes))

	for i, edge := range g.Edges {
		subject := fmt.Sprintf("edge[%d]", i)

		if !seen[edge.From] {
			result.Add("EDGE_FROM_DANGLING", subject, fmt.Sprintf("edge references unknown source node %q", edge.From))
		}

		if !seen[edge.To] {
			result.Add("EDGE_TO_DANGLING", subject, fmt.Sprintf("edge references unknown target node %q", edge.To))
		} else {
			hasIncoming[edge.To] = true
		}

		if edge.Condition != nil {
			if *edge.Condition == "" {
				result.Add("EDGE_CONDITION_EMPTY", subject, "edge condition must be omitted or non-empty")
			} else if err := CheckConditionSyntax(*edge.Condition); err != nil {
				result.Add("EDGE_CONDITION_MALFORMED", subject, err.Error())
			}
		}
	}

	if len(g.Nodes) > 0 {
		entry := false

		for _, node := range g.Nodes {
			if !hasIncoming[node.ID] {
				entry = true

				break
			}
		}

		if !entry {
			result.Add("GRAPH_NO_ENTRY_POINT", "", "non-empty graph must have at least one node with no incoming edges")
		}
	}

	return result
}

func validateNodeConfig(node *Node) ValidationResult {
	var result ValidationResult

	switch node.Type {
	case NodeTypeAction:
		kind, ok := node.Config[ConfigKeyActionKind].(string)
		if !ok || kind == "" {
			result.Add("ACTION_KIND_REQUIRED", node.ID, "action node requires a non-empty action_kind")
		}
	case NodeTypeCondition:
		expr, ok := node.Config[ConfigKeyExpr].(string)
		if !ok || expr == "" {
			result.Add("CONDITION_EXPR_REQUIRED", node.ID, "condition node requires a non-empty expr")

			break
		}

		if err := CheckConditionSyntax(expr); err != nil {
			result.Add("CONDITION_EXPR_MALFORMED", node.ID, err.Error())
		}
	case NodeTypeDelay:
		ms, err := DelayDurationMs(node.Config)
		if err != nil {
			result.Add("DELAY_DURATION_INVALID", node.ID, err.Error())

			break
		}

		if ms < 0 {
			result.Add("DELAY_DURATION_NEGATIVE", node.ID, "delay duration_ms must be non-negative")
		}
	case NodeTypeSplit:
		// The label is opaque to the core; only its type is checked.
		if label, exists := node.Config[ConfigKeyLabel]; exists {
			if _, ok := label.(string); !ok {
				result.Add("SPLIT_LABEL_INVALID", node.ID, "split label must be a string")
			}
		}
	default:
		result.Add("NODE_TYPE_UNKNOWN", node.ID, fmt.Sprintf("unknown node type %q", node.Type))
	}

	return result
}

// DelayDurationMs extracts the duration_ms value from a delay node config,
// accepting the numeric representations JSON decoding produces.
func DelayDurationMs(config map[string]any) (int64, error) {
	raw, exists := config[ConfigKeyDurationMs]
	if !exists {
		return 0, fmt.Errorf("delay node requires %s", ConfigKeyDurationMs)
	}

	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		if v != float64(int64(v)) {
			return 0, fmt.Errorf("%s must be an integer, got %v", ConfigKeyDurationMs, v)
		}

		return int64(v), nil
	case json.Number:
		ms, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("%s must be an integer, got %q", ConfigKeyDurationMs, v.String())
		}

		return ms, nil
	default:
		return 0, fmt.Errorf("%s must be a number, got %T", ConfigKeyDurationMs, raw)
	}
}

// templatePlaceholder matches "{{ ... }}" expressions resolved by the
// execution runtime. They are replaced with synthetic identifiers before the
// syntax check so the expression parser sees valid operands.
var templatePlaceholder = regexp.MustCompile(`\{\{[^}]+\}\}`)

// CheckConditionSyntax verifies a condition expression parses. Values behind
// templated placeholders are unknown until execution time, so only syntax is
// checked here.
func CheckConditionSyntax(expr string) error {
	counter := 0
	prepared := templatePlaceholder.ReplaceAllStringFunc(expr, func(string) string {
		counter++

		return fmt.Sprintf("placeholder_%d", counter)
	})

	if strings.TrimSpace(prepared) == "" {
		return fmt.Errorf("condition expression is empty")
	}

	if _, err := govaluate.NewEvaluableExpression(prepared); err != nil {
		return fmt.Errorf("condition expression %q does not parse: %w", expr, err)
	}

	return nil
}

// Clone returns a deep, independent copy of the graph. Node configs are
// copied recursively so no mutable structure is shared with the source.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}

	clone := &Graph{
		Nodes: make([]*Node, 0, len(g.Nodes)),
		Edges: make([]*Edge, 0, len(g.Edges)),
	}

	for _, node := range g.Nodes {
		copied := &Node{
			ID:   node.ID,
			Type: node.Type,
			Name: node.Name,
		}

		if node.Config != nil {
			copied.Config = cloneConfig(node.Config)
		}

		clone.Nodes = append(clone.Nodes, copied)
	}

	for _, edge := range g.Edges {
		copied := &Edge{From: edge.From, To: edge.To}

		if edge.Condition != nil {
			cond := *edge.Condition
			copied.Condition = &cond
		}

		clone.Edges = append(clone.Edges, copied)
	}

	return clone
}

func cloneConfig(config map[string]any) map[string]any {
	copied := make(map[string]any, len(config))

	for key, value := range config {
		switch v := value.(type) {
		case map[string]any:
			copied[key] = cloneConfig(v)
		case []any:
			copied[key] = cloneSlice(v)
		default:
			copied[key] = v
		}
	}

	return copied
}

func cloneSlice(values []any) []any {
	items := make([]any, len(values))

	for i, value := range values {
		switch v := value.(type) {
		case map[string]any:
			items[i] = cloneConfig(v)
		case []any:
			items[i] = cloneSlice(v)
		default:
			items[i] = v
		}
	}

	return items
}
