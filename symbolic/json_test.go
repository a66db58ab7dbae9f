package symbolic_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/njchilds90/scicalc/symbolic"
)

func TestToJSON_Num(t *testing.T) {
	s, err := symbolic.ToJSON(symbolic.F(3, 2))
	if err != nil {
		t.Fatal(err)
	}
	if s != `{"type":"num","value":"3/2"}` {
		t.Errorf("unexpected JSON: %s", s)
	}
}

func TestToJSON_Inexact(t *testing.T) {
	n, _ := symbolic.NFloat(0.5)
	s, err := symbolic.ToJSON(n)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(s, `"inexact":true`) {
		t.Errorf("inexact flag missing: %s", s)
	}
	back, err := symbolic.ParseJSON([]byte(s))
	if err != nil {
		t.Fatal(err)
	}
	if bn, ok := back.(*symbolic.Num); !ok || bn.IsExact() {
		t.Errorf("want an inexact number back, got %s", back)
	}
}

func TestFromJSON_RoundTrip(t *testing.T) {
	for _, in := range []string{"sin(x)^2 + 3*x/2", "pi*x - E", "log(abs(x))/y", "sqrt(x + 1)"} {
		e := symbolic.MustParse(in)
		s, err := symbolic.ToJSON(e)
		if err != nil {
			t.Fatal(err)
		}
		back, err := symbolic.ParseJSON([]byte(s))
		if err != nil {
			t.Errorf("%s: %v", in, err)
			continue
		}
		if !back.Equal(e) {
			t.Errorf("round trip of %s: got %s", in, back)
		}
	}
}

func TestFromJSON_Errors(t *testing.T) {
	bad := []string{
		`{}`,
		`{"type":"num","value":"abc"}`,
		`{"type":"sym","name":"1x"}`,
		`{"type":"func","name":"frob","arg":{"type":"sym","name":"x"}}`,
		`{"type":"const","name":"tau"}`,
		`{"type":"add","terms":[1]}`,
		`{"type":"pow","base":{"type":"sym","name":"x"}}`,
		`{"type":"matrix"}`,
	}
	for _, in := range bad {
		var m map[string]interface{}
		if err := json.Unmarshal([]byte(in), &m); err != nil {
			t.Fatal(err)
		}
		if e, err := symbolic.FromJSON(m); err == nil {
			t.Errorf("FromJSON(%s): want error, got %s", in, e)
		}
	}
}

func TestFromJSON_TooDeep(t *testing.T) {
	tree := map[string]interface{}{"type": "sym", "name": "x"}
	for i := 0; i < 300; i++ {
		tree = map[string]interface{}{"type": "func", "name": "sin", "arg": tree}
	}
	if e, err := symbolic.FromJSON(tree); err == nil || !strings.Contains(err.Error(), "nested more than") {
		t.Errorf("want a nesting error, got %v, %v", e, err)
	}
}
