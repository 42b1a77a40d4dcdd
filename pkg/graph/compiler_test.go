package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/apexcrm/flowkit/pkg/models"
)

func strPtr(s string) *string {
	return &s
}

func sampleGraph() *models.Graph {
	return &models.Graph{
		Nodes: []*models.Node{
			{ID: "A", Type: models.NodeTypeAction, Name: "Send email", Config: map[string]any{
				models.ConfigKeyActionKind: "email.send",
				"to":                       "{{ lead.email }}",
				"subject":                  "Welcome",
			}},
			{ID: "B", Type: models.NodeTypeDelay, Name: "Wait a day", Config: map[string]any{
				models.ConfigKeyDurationMs: int64(86400000),
			}},
			{ID: "C", Type: models.NodeTypeCondition, Name: "Replied?", Config: map[string]any{
				models.ConfigKeyExpr: "{{ lead.replied }} == false",
			}},
			{ID: "D", Type: models.NodeTypeSplit, Name: "Experiment", Config: map[string]any{
				models.ConfigKeyLabel: "subject-line-test",
			}},
		},
		Edges: []*models.Edge{
			{From: "A", To: "B"},
			{From: "B", To: "C"},
			{From: "C", To: "D", Condition: strPtr("{{ lead.score }} > 10")},
		},
	}
}

func TestCompiler_RoundTrip(t *testing.T) {
	t.Parallel()

	compiler := NewCompiler()
	original := sampleGraph()

	editable, err := compiler.ToEditable(original)
	require.NoError(t, err)

	back, err := compiler.ToNormalized(editable)
	require.NoError(t, err)

	// Positions are editor-only and excluded from equality.
	assert.Equal(t, original, back)
}

func TestCompiler_ToEditable_AssignsPositionsAndDuration(t *testing.T) {
	t.Parallel()

	compiler := NewCompiler()

	editable, err := compiler.ToEditable(sampleGraph())
	require.NoError(t, err)
	require.Len(t, editable.Nodes, 4)

	for _, node := range editable.Nodes {
		assert.GreaterOrEqual(t, node.PositionX, 0)
		assert.Less(t, node.PositionX, canvasWidth)
		assert.GreaterOrEqual(t, node.PositionY, 0)
		assert.Less(t, node.PositionY, canvasHeight)
	}

	var delay *EditableNode

	for _, node := range editable.Nodes {
		if node.ID == "B" {
			delay = node
		}
	}

	require.NotNil(t, delay)
	assert.Equal(t, "1 days", delay.Duration)
}

// The end-to-end editor scenario: validate, compile out, compile back.
func TestCompiler_EditorSessionScenario(t *testing.T) {
	t.Parallel()

	g := &models.Graph{
		Nodes: []*models.Node{
			{ID: "A", Type: models.NodeTypeAction, Config: map[string]any{
				models.ConfigKeyActionKind: "task.create",
				"title":                    "Follow up",
			}},
			{ID: "B", Type: models.NodeTypeDelay, Config: map[string]any{
				models.ConfigKeyDurationMs: int64(86400000),
			}},
		},
		Edges: []*models.Edge{{From: "A", To: "B"}},
	}

	require.True(t, g.Validate().Valid())

	compiler := NewCompiler()

	editable, err := compiler.ToEditable(g)
	require.NoError(t, err)
	assert.Equal(t, "1 days", editable.Nodes[1].Duration)

	back, err := compiler.ToNormalized(editable)
	require.NoError(t, err)
	assert.Equal(t, int64(86400000), back.Nodes[1].Config[models.ConfigKeyDurationMs])
}

func TestCompiler_ToNormalized_EditedDurationLabelWins(t *testing.T) {
	t.Parallel()

	compiler := NewCompiler()

	editable := &EditableGraph{
		Nodes: []*EditableNode{
			{ID: "B", Type: models.NodeTypeDelay, Duration: "3 days", Config: map[string]any{
				models.ConfigKeyDurationMs: int64(1000), // stale; the label was edited
			}},
		},
	}

	normalized, err := compiler.ToNormalized(editable)
	require.NoError(t, err)
	assert.Equal(t, int64(3*86400000), normalized.Nodes[0].Config[models.ConfigKeyDurationMs])
}

func TestCompiler_ToNormalized_StripsEditorConfigKeys(t *testing.T) {
	t.Parallel()

	compiler := NewCompiler()

	editable := &EditableGraph{
		Nodes: []*EditableNode{
			{ID: "A", Type: models.NodeTypeAction, PositionX: 40, PositionY: 80, Config: map[string]any{
				models.ConfigKeyActionKind: "note.create",
				"content":                  "hello",
				"position":                 map[string]any{"x": 40, "y": 80},
				"duration":                 "2 days",
			}},
		},
	}

	normalized, err := compiler.ToNormalized(editable)
	require.NoError(t, err)

	config := normalized.Nodes[0].Config
	assert.NotContains(t, config, "position")
	assert.NotContains(t, config, "duration")
	assert.Equal(t, "hello", config["content"])
}

func TestCompiler_CompileErrors(t *testing.T) {
	t.Parallel()

	compiler := NewCompiler()

	var compileErr *CompileError

	// Delay node with a broken duration names the node.
	_, err := compiler.ToEditable(&models.Graph{
		Nodes: []*models.Node{
			{ID: "bad-delay", Type: models.NodeTypeDelay, Config: map[string]any{
				models.ConfigKeyDurationMs: "soon",
			}},
		},
	})
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "bad-delay", compileErr.NodeID)

	// Unknown node type is rejected in both directions.
	_, err = compiler.ToEditable(&models.Graph{
		Nodes: []*models.Node{{ID: "x", Type: "loop"}},
	})
	require.ErrorAs(t, err, &compileErr)

	_, err = compiler.ToNormalized(&EditableGraph{
		Nodes: []*EditableNode{{ID: "x", Type: "loop"}},
	})
	require.ErrorAs(t, err, &compileErr)

	// Unparseable duration label names the node.
	_, err = compiler.ToNormalized(&EditableGraph{
		Nodes: []*EditableNode{{ID: "b", Type: models.NodeTypeDelay, Duration: "a while"}},
	})
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "b", compileErr.NodeID)
}

func TestCompiler_ToEditable_DoesNotAliasSource(t *testing.T) {
	t.Parallel()

	compiler := NewCompiler()
	original := sampleGraph()

	editable, err := compiler.ToEditable(original)
	require.NoError(t, err)

	editable.Nodes[0].Config["subject"] = "changed"
	assert.Equal(t, "Welcome", original.Nodes[0].Config["subject"])
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	tests := []struct {
		ms       int64
		expected string
	}{
		{86400000, "1 days"},
		{3 * 86400000, "3 days"},
		{3600000, "1 hours"},
		{90 * 60000, "90 minutes"},
		{1000, "1 seconds"},
		{250, "250 ms"},
		{0, "0 ms"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDuration(tt.ms))

		parsed, err := ParseDuration(tt.expected)
		require.NoError(t, err)
		assert.Equal(t, tt.ms, parsed)
	}
}

func TestDecodeNormalized(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"nodes": [
			{"id": "a", "type": "action", "name": "Send", "config": {"action_kind": "email.send", "to": "x", "subject": "y"}},
			{"id": "b", "type": "delay", "config": {"duration_ms": 60000}}
		],
		"edges": [{"from": "a", "to": "b", "condition": null}]
	}`)

	g, err := DecodeNormalized(data)
	require.NoError(t, err)
	assert.Len(t, g.Nodes, 2)
	assert.Len(t, g.Edges, 1)
	assert.Nil(t, g.Edges[0].Condition)

	var compileErr *CompileError

	_, err = DecodeNormalized([]byte(`{"nodes": [{"type": "action"}]}`))
	require.ErrorAs(t, err, &compileErr)

	_, err = DecodeNormalized([]byte(`{"nodes": [{"id": "a", "type": "teleport"}]}`))
	require.ErrorAs(t, err, &compileErr)

	_, err = DecodeNormalized([]byte(`{"nodes": [], "edges": [{"from": "a"}]}`))
	require.ErrorAs(t, err, &compileErr)

	_, err = DecodeNormalized([]byte(`not json`))
	require.ErrorAs(t, err, &compileErr)
}

func TestDecodeNormalized_CanonicalDelayRoundTrip(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"nodes": [
			{"id": "a", "type": "action", "config": {"action_kind": "task.create", "title": "Follow up"}},
			{"id": "b", "type": "delay", "config": {"duration_ms": 86400000}}
		],
		"edges": [{"from": "a", "to": "b"}]
	}`)

	g, err := DecodeNormalized(data)
	require.NoError(t, err)
	assert.Equal(t, int64(86400000), g.Nodes[1].Config[models.ConfigKeyDurationMs])

	compiler := NewCompiler()

	editable, err := compiler.ToEditable(g)
	require.NoError(t, err)

	back, err := compiler.ToNormalized(editable)
	require.NoError(t, err)
	assert.Equal(t, g, back)

	// A broken duration is left for Validate to report, not for decode.
	g, err = DecodeNormalized([]byte(`{"nodes": [{"id": "b", "type": "delay", "config": {"duration_ms": "soon"}}]}`))
	require.NoError(t, err)
	assert.Equal(t, "soon", g.Nodes[0].Config[models.ConfigKeyDurationMs])
	assert.False(t, g.Validate().Valid())
}

func TestDecodeEditable(t *testing.T) {
	t.Parallel()

	data := []byte(`{
		"nodes": [
			{"id": "b", "type": "delay", "position_x": 100, "position_y": 200, "duration": "1 days", "config": {"duration_ms": 86400000}}
		],
		"edges": []
	}`)

	e, err := DecodeEditable(data)
	require.NoError(t, err)
	require.Len(t, e.Nodes, 1)
	assert.Equal(t, 100, e.Nodes[0].PositionX)
	assert.Equal(t, "1 days", e.Nodes[0].Duration)
}
