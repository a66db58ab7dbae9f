package symbolic

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ============================================================
// JSON Serialization
// ============================================================
//
// Trees are objects tagged by "type": num, sym, const, add, mul, pow, func.
// Numbers carry their exact value as a rational string ("3/2").

func ToJSON(e Expr) (string, error) {
	b, err := json.Marshal(e.toJSON())
	return string(b), err
}

// Tree returns the decoded-JSON form of e, for embedding in a larger document.
func Tree(e Expr) map[string]interface{} { return e.toJSON() }

// ParseJSON decodes a tree produced by ToJSON.
func ParseJSON(data []byte) (Expr, error) {
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("expression tree: %w", err)
	}
	return FromJSON(m)
}

// FromJSON builds an expression from a decoded tree. Trees nested deeper than
// Parse accepts are rejected.
func FromJSON(data map[string]interface{}) (Expr, error) {
	return fromJSON(data, 0)
}

func fromJSON(data map[string]interface{}, depth int) (Expr, error) {
	if depth > maxNesting {
		return nil, fmt.Errorf("expression nested more than %d levels deep", maxNesting)
	}
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typ, ok := data["type"].(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subObj := func(field string) (map[string]interface{}, error) {
		m, ok := data[field].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return m, nil
	}

	subExprs := func(field string) ([]Expr, error) {
		raw, ok := data[field].([]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an array", typ, field)
		}
		out := make([]Expr, len(raw))
		for i, it := range raw {
			m, ok := it.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%s: %q[%d] must be an object", typ, field, i)
			}
			e, err := fromJSON(m, depth+1)
			if err != nil {
				return nil, fmt.Errorf("%s: %s[%d]: %w", typ, field, i, err)
			}
			out[i] = e
		}
		return out, nil
	}

	subString := func(field string) (string, error) {
		s, ok := data[field].(string)
		if !ok || s == "" {
			return "", fmt.Errorf("%s: %q must be a non-empty string", typ, field)
		}
		return s, nil
	}

	switch typ {
	case "num":
		val, err := subString("value")
		if err != nil {
			return nil, err
		}
		r, ok := new(big.Rat).SetString(val)
		if !ok {
			return nil, fmt.Errorf("invalid num value: %s", val)
		}
		inexact, _ := data["inexact"].(bool)
		return &Num{val: r, inexact: inexact}, nil

	case "sym":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		if !isIdent(name) {
			return nil, fmt.Errorf("%w: %q", ErrBadSymbol, name)
		}
		return S(name), nil

	case "const":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		c, ok := constNamed(name)
		if !ok {
			return nil, fmt.Errorf("unknown constant: %s", name)
		}
		return c, nil

	case "add":
		terms, err := subExprs("terms")
		if err != nil {
			return nil, err
		}
		return AddOf(terms...), nil

	case "mul":
		factors, err := subExprs("factors")
		if err != nil {
			return nil, err
		}
		return MulOf(factors...), nil

	case "pow":
		baseM, err := subObj("base")
		if err != nil {
			return nil, err
		}
		expM, err := subObj("exp")
		if err != nil {
			return nil, err
		}
		base, err := fromJSON(baseM, depth+1)
		if err != nil {
			return nil, fmt.Errorf("pow: base: %w", err)
		}
		exp, err := fromJSON(expM, depth+1)
		if err != nil {
			return nil, fmt.Errorf("pow: exp: %w", err)
		}
		return PowOf(base, exp), nil

	case "func":
		name, err := subString("name")
		if err != nil {
			return nil, err
		}
		argM, err := subObj("arg")
		if err != nil {
			return nil, err
		}
		arg, err := fromJSON(argM, depth+1)
		if err != nil {
			return nil, fmt.Errorf("func: arg: %w", err)
		}
		e, ok := Apply(name, arg)
		if !ok {
			return nil, fmt.Errorf("unknown function: %s", name)
		}
		return e, nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}
