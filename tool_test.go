package scicalc_test

import (
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/scicalc"
	"github.com/njchilds90/scicalc/symbolic"
)

func call(t *testing.T, tool string, params map[string]interface{}) scicalc.ToolResponse {
	t.Helper()
	return scicalc.HandleToolCall(scicalc.ToolRequest{Tool: tool, Params: params})
}

func TestHandleToolCall_Derivative(t *testing.T) {
	resp := call(t, "derivative", map[string]interface{}{"expr": "x^2 + y^2", "var": "x"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "2*x", resp.String)
	assert.Equal(t, "2 x", resp.LaTeX)
}

func TestHandleToolCall_ExpressionTree(t *testing.T) {
	raw, err := symbolic.ToJSON(symbolic.MustParse("sin(x) + x"))
	require.NoError(t, err)
	var tree map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &tree))

	resp := call(t, "derivative", map[string]interface{}{"expr": tree})
	require.Empty(t, resp.Error)
	assert.Equal(t, "cos(x) + 1", resp.String)
}

func TestHandleToolCall_Integrals(t *testing.T) {
	resp := call(t, "indefinite_integral", map[string]interface{}{"expr": "x*2 + y*2", "var": "x"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "x^2 + 2*x*y", resp.String)

	resp = call(t, "definite_integral", map[string]interface{}{"expr": "x^2", "a": 0.0, "b": 1.0})
	require.Empty(t, resp.Error)
	assert.Equal(t, "1/3 ≈ 0.3333", resp.String)
	assert.Equal(t, `\frac{1}{3}`, resp.LaTeX)

	resp = call(t, "definite_integral", map[string]interface{}{"expr": "sin(x)", "a": "0", "b": "pi"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "2", resp.String)

	resp = call(t, "indefinite_integral", map[string]interface{}{"expr": "exp(x^2)"})
	assert.Contains(t, resp.Error, "no closed form")
}

func TestHandleToolCall_DeclaredVariables(t *testing.T) {
	resp := call(t, "derivative", map[string]interface{}{"expr": "x*z", "vars": "x,y"})
	assert.Contains(t, resp.Error, "z")

	resp = call(t, "derivative", map[string]interface{}{"expr": "x*z", "vars": "x,z", "var": "z"})
	require.Empty(t, resp.Error)
	assert.Equal(t, "x", resp.String)
}

func TestHandleToolCall_Trig(t *testing.T) {
	resp := call(t, "trig", map[string]interface{}{"angle": 30.0})
	require.Empty(t, resp.Error)
	lines, ok := resp.Result.([]scicalc.Line)
	require.True(t, ok)
	require.Len(t, lines, 6)
	assert.Equal(t, "sin(30°) = 0.5000", lines[0].Text)

	resp = call(t, "trig", map[string]interface{}{"angle": "45", "shift": true})
	require.Empty(t, resp.Error)
	assert.Contains(t, resp.String, "arctan(1) = 45.0000°")

	resp = call(t, "trig", map[string]interface{}{"angle": "45", "shift": "yes"})
	assert.Contains(t, resp.Error, "shift must be a boolean")
}

func TestHandleToolCall_InverseTrig(t *testing.T) {
	resp := call(t, "inverse_trig", map[string]interface{}{"func": "arcsin", "value": 0.5})
	require.Empty(t, resp.Error)
	assert.Equal(t, "arcsin(0.5) = 30.0000°", resp.String)
	assert.InDelta(t, 30.0, resp.Result, 1e-9)

	resp = call(t, "inverse_trig", map[string]interface{}{"func": "arccos", "value": 2.0})
	assert.Equal(t, scicalc.MsgInverseDomain, resp.Error)
}

func TestHandleToolCall_Matrix(t *testing.T) {
	resp := call(t, "matrix", map[string]interface{}{"op": "Multiply"})
	require.Empty(t, resp.Error)
	assert.Contains(t, resp.String, "A · B = [[19, 22], [43, 50]]")

	resp = call(t, "matrix", map[string]interface{}{
		"op": "Determinant",
		"a":  []interface{}{[]interface{}{2.0, 0.0}, []interface{}{0.0, 2.0}},
		"b":  "1 2; 3 4",
	})
	require.Empty(t, resp.Error)
	assert.Contains(t, resp.String, "det(A) = 4")
	assert.Contains(t, resp.String, "det(B) = -2")

	resp = call(t, "matrix", map[string]interface{}{"op": "Power"})
	assert.Equal(t, scicalc.MsgUnsupportedOperation, resp.Error)
}

func TestHandleToolCall_Render(t *testing.T) {
	resp := call(t, "render", map[string]interface{}{"angle": "90", "calc_op": scicalc.OpIndefiniteIntegral})
	require.Empty(t, resp.Error)
	page, ok := resp.Result.(scicalc.Page)
	require.True(t, ok)
	assert.Equal(t, "90", page.Form.Angle)
	assert.Equal(t, "sin(90°) = 1.0000", page.Trig.Lines[0].Text)
	assert.Equal(t, "∫ 2*x + 2*y dx = x^2 + 2*x*y + C", page.Calculus.Lines[1].Text)

	resp = call(t, "render", map[string]interface{}{"shift": "on"})
	assert.NotEmpty(t, resp.Error)
}

func TestHandleToolCall_Errors(t *testing.T) {
	tests := []struct {
		tool   string
		params map[string]interface{}
		want   string
	}{
		{"nope", nil, "unknown tool"},
		{"trig", nil, "missing param"},
		{"derivative", map[string]interface{}{"expr": 3.0}, "must be text or an expression object"},
		{"derivative", map[string]interface{}{"expr": "x +"}, "invalid expression syntax"},
		{"definite_integral", map[string]interface{}{"expr": "x", "a": 0.0}, "missing param: b"},
		{"matrix", map[string]interface{}{"op": "Add", "a": []interface{}{1.0}}, "a[0] must be an array"},
		{"derivative", map[string]interface{}{"expr": strings.Repeat("-", 1000) + "x"}, "nested more than"},
		{"derivative", map[string]interface{}{"expr": "0/0"}, "not finite"},
		{"definite_integral", map[string]interface{}{"expr": "1/x^2", "a": -1.0, "b": 1.0}, "not finite"},
	}
	for _, tt := range tests {
		resp := call(t, tt.tool, tt.params)
		assert.Contains(t, resp.Error, tt.want, "tool %s", tt.tool)
	}
}

func TestToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name        string `json:"name"`
			InputSchema struct {
				Required []string `json:"required"`
			} `json:"inputSchema"`
		} `json:"tools"`
	}
	require.NoError(t, json.Unmarshal([]byte(scicalc.ToolSpec()), &spec))

	var names []string
	for _, tool := range spec.Tools {
		names = append(names, tool.Name)
		// every advertised tool must be dispatchable
		resp := call(t, tool.Name, map[string]interface{}{})
		assert.NotContains(t, resp.Error, "unknown tool", tool.Name)
	}
	sort.Strings(names)
	want := []string{"definite_integral", "derivative", "indefinite_integral", "inverse_trig", "matrix", "render", "schema", "trig"}
	if diff := cmp.Diff(want, names); diff != "" {
		t.Errorf("tools mismatch (-want +got):\n%s", diff)
	}

	resp := call(t, "schema", nil)
	assert.JSONEq(t, scicalc.ToolSpec(), resp.String)
}
