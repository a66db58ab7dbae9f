package scicalc

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/njchilds90/scicalc/symbolic"
	"github.com/njchilds90/scicalc/trig"
)

// ============================================================
// JSON Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

func errResponse(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

// params wraps a request's params with typed getters.
type params map[string]interface{}

func (p params) str(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string", ErrBadParam, key)
	}
	return s, nil
}

func (p params) optStr(key, def string) (string, error) {
	if _, ok := p[key]; !ok {
		return def, nil
	}
	return p.str(key)
}

func (p params) optBool(key string) (bool, error) {
	v, ok := p[key]
	if !ok {
		return false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: %s must be a boolean", ErrBadParam, key)
	}
	return b, nil
}

// number accepts a JSON number or its text.
func (p params) number(key string) (string, error) {
	v, ok := p[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'g', -1, 64), nil
	case int:
		return strconv.Itoa(n), nil
	case json.Number:
		return n.String(), nil
	case string:
		return n, nil
	}
	return "", fmt.Errorf("%w: %s must be a number", ErrBadParam, key)
}

// expr accepts expression text or a tree as produced by symbolic.ToJSON.
func (p params) expr(key string) (symbolic.Expr, error) {
	v, ok := p[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingParam, key)
	}
	switch e := v.(type) {
	case string:
		return symbolic.Parse(e)
	case map[string]interface{}:
		return symbolic.FromJSON(e)
	}
	return nil, fmt.Errorf("%w: %s must be text or an expression object", ErrBadParam, key)
}

// matrix accepts "1 2; 3 4" or a JSON array of rows.
func (p params) matrix(key, def string) (string, error) {
	v, ok := p[key]
	if !ok {
		return def, nil
	}
	switch m := v.(type) {
	case string:
		return m, nil
	case []interface{}:
		rows := make([]string, len(m))
		for i, r := range m {
			cells, ok := r.([]interface{})
			if !ok {
				return "", fmt.Errorf("%w: %s[%d] must be an array", ErrBadParam, key, i)
			}
			parts := make([]string, len(cells))
			for j, cell := range cells {
				switch x := cell.(type) {
				case float64:
					parts[j] = strconv.FormatFloat(x, 'g', -1, 64)
				case int:
					parts[j] = strconv.Itoa(x)
				case json.Number:
					parts[j] = x.String()
				case string:
					parts[j] = x
				default:
					return "", fmt.Errorf("%w: %s[%d][%d] must be a number or text", ErrBadParam, key, i, j)
				}
			}
			rows[i] = strings.Join(parts, ", ")
		}
		return strings.Join(rows, "; "), nil
	}
	return "", fmt.Errorf("%w: %s must be text or an array of rows", ErrBadParam, key)
}

// vars returns the declared variables: the "vars" param when given, otherwise
// the free symbols of e plus v.
func (p params) vars(e symbolic.Expr, v string) ([]string, error) {
	if _, ok := p["vars"]; ok {
		text, err := p.str("vars")
		if err != nil {
			return nil, err
		}
		return symbolic.ParseSymbols(text)
	}
	names := symbolic.SortedSymbols(e)
	for _, n := range names {
		if n == v {
			return names, nil
		}
	}
	return append(names, v), nil
}

func respondExpr(e symbolic.Expr) ToolResponse {
	return ToolResponse{Result: symbolic.Tree(e), LaTeX: symbolic.LaTeX(e), String: symbolic.String(e)}
}

func respondSection(s Section) ToolResponse {
	if !s.OK() {
		return ToolResponse{Error: s.Error}
	}
	text := make([]string, len(s.Lines))
	tex := make([]string, 0, len(s.Lines))
	for i, l := range s.Lines {
		text[i] = l.Text
		if l.LaTeX != "" {
			tex = append(tex, l.LaTeX)
		}
	}
	return ToolResponse{Result: s.Lines, LaTeX: strings.Join(tex, ` \\ `), String: strings.Join(text, "\n")}
}

// HandleToolCall dispatches one JSON tool call. Errors are reported in the
// response, never as panics.
func (c *Calculator) HandleToolCall(req ToolRequest) ToolResponse {
	p := params(req.Params)
	switch req.Tool {
	case "trig":
		angle, err := p.number("angle")
		if err != nil {
			return errResponse(err)
		}
		shift, err := p.optBool("shift")
		if err != nil {
			return errResponse(err)
		}
		return respondSection(c.Trig(angle, shift))

	case "inverse_trig":
		name, err := p.str("func")
		if err != nil {
			return errResponse(err)
		}
		text, err := p.number("value")
		if err != nil {
			return errResponse(err)
		}
		v, err := parseNumber(text)
		if err != nil {
			return errResponse(err)
		}
		deg, err := trig.InverseFunc(name, v)
		if err != nil {
			return ToolResponse{Error: DisplayError(err)}
		}
		s := trig.FormatValue(deg, c.opts.Precision)
		return ToolResponse{Result: deg, String: fmt.Sprintf("%s(%s) = %s°", name, text, s), LaTeX: fmt.Sprintf(`\%s(%s) = %s^\circ`, name, text, s)}

	case "matrix":
		op, err := p.str("op")
		if err != nil {
			return errResponse(err)
		}
		a, err := p.matrix("a", SampleMatrixA)
		if err != nil {
			return errResponse(err)
		}
		b, err := p.matrix("b", SampleMatrixB)
		if err != nil {
			return errResponse(err)
		}
		return respondSection(c.Matrix(op, a, b))

	case "derivative", "indefinite_integral", "definite_integral":
		return c.calculusTool(req.Tool, p)

	case "render":
		f := DefaultForm()
		raw, err := json.Marshal(req.Params)
		if err != nil {
			return errResponse(err)
		}
		if err := json.Unmarshal(raw, &f); err != nil {
			return errResponse(fmt.Errorf("%w: %v", ErrBadParam, err))
		}
		page := c.Render(f)
		return ToolResponse{Result: page}

	case "schema":
		return ToolResponse{String: ToolSpec()}
	}
	return errResponse(fmt.Errorf("%w: %s", ErrUnknownTool, req.Tool))
}

func (c *Calculator) calculusTool(tool string, p params) ToolResponse {
	e, err := p.expr("expr")
	if err != nil {
		return errResponse(err)
	}
	v, err := p.optStr("var", "")
	if err != nil {
		return errResponse(err)
	}
	if v == "" {
		syms := symbolic.SortedSymbols(e)
		if len(syms) == 0 {
			syms = []string{"x"}
		}
		v = syms[0]
	}
	vars, err := p.vars(e, v)
	if err != nil {
		return errResponse(err)
	}
	if v, err = selectVar(vars, v); err != nil {
		return errResponse(err)
	}
	if err := checkDeclared(e, vars); err != nil {
		return errResponse(err)
	}

	switch tool {
	case "derivative":
		return respondExpr(symbolic.Diff(e, v))
	case "indefinite_integral":
		anti, ok := symbolic.Integrate(e, v)
		if !ok {
			return errResponse(fmt.Errorf("∫ %s d%s: %w", e, v, symbolic.ErrNoClosedForm))
		}
		return respondExpr(anti)
	}
	lo, err := p.number("a")
	if err != nil {
		return errResponse(err)
	}
	hi, err := p.number("b")
	if err != nil {
		return errResponse(err)
	}
	a, err := parseLimit("lower limit", lo)
	if err != nil {
		return errResponse(err)
	}
	b, err := parseLimit("upper limit", hi)
	if err != nil {
		return errResponse(err)
	}
	r, err := symbolic.DefiniteIntegrate(e, v, a, b)
	if err != nil {
		return errResponse(err)
	}
	resp := respondExpr(r)
	if approx, ok := c.approximate(r); ok {
		resp.String += " ≈ " + approx
	}
	return resp
}

// HandleToolCall uses a calculator with default options.
func HandleToolCall(req ToolRequest) ToolResponse { return defaultCalculator.HandleToolCall(req) }

// ToolSpec describes every tool as JSON schema, for agent registration.
func ToolSpec() string {
	tools := []map[string]interface{}{
		ts("trig", "Trigonometric table for an angle in degrees; shift=true gives the inverse functions",
			[]string{"angle"}, map[string]string{"angle": "number", "shift": "boolean"}),
		ts("inverse_trig", "arcsin, arccos or arctan of a value, in degrees",
			[]string{"func", "value"}, map[string]string{"func": "string", "value": "number"}),
		ts("matrix", "Matrix operation: Add, Subtract, Multiply, Determinant, Inverse, Transpose. a and b default to the sample matrices",
			[]string{"op"}, map[string]string{"op": "string", "a": "string", "b": "string"}),
		ts("derivative", "Derivative of expr with respect to var",
			[]string{"expr"}, map[string]string{"expr": "string", "var": "string", "vars": "string"}),
		ts("indefinite_integral", "Antiderivative of expr with respect to var (without + C)",
			[]string{"expr"}, map[string]string{"expr": "string", "var": "string", "vars": "string"}),
		ts("definite_integral", "Integral of expr over [a, b]; exact when possible, numeric otherwise",
			[]string{"expr", "a", "b"}, map[string]string{"expr": "string", "var": "string", "vars": "string", "a": "number", "b": "number"}),
		ts("render", "Render the whole calculator page from form fields",
			[]string{}, map[string]string{
				"angle": "string", "shift": "boolean", "matrix_op": "string", "matrix_a": "string", "matrix_b": "string",
				"expr": "string", "vars": "string", "calc_op": "string", "var": "string", "lower": "string", "upper": "string",
			}),
		ts("schema", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
