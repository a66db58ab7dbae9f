package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/scicalc"
)

// run executes the command tree with a config path that does not exist, so
// only defaults and the environment apply.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(""))
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestTrig(t *testing.T) {
	out, err := run(t, "--plain", "trig", "30")
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Trigonometric Functions",
		"sin(30°) = 0.5000",
		"cos(30°) = 0.8660",
		"tan(30°) = 0.5774",
		"csc(30°) = 2.0000",
		"sec(30°) = 1.1547",
		"cot(30°) = 1.7321",
	}, "\n")+"\n", out)

	out, err = run(t, "--plain", "trig", "--shift", "--", "-30")
	require.NoError(t, err)
	assert.Contains(t, out, "arcsin(-0.5) = -30.0000°")
}

func TestTrig_Invalid(t *testing.T) {
	out, err := run(t, "--plain", "trig", "north")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "not a number")
}

func TestMatrix(t *testing.T) {
	out, err := run(t, "--plain", "matrix", "Multiply")
	require.NoError(t, err)
	assert.Contains(t, out, "A · B = [[19, 22], [43, 50]]")

	out, err = run(t, "--plain", "matrix", "Determinant", "--a", "2 0; 0 3")
	require.NoError(t, err)
	assert.Contains(t, out, "det(A) = 6")
	assert.Contains(t, out, "det(B) = -2")

	out, err = run(t, "--plain", "matrix", "Power")
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, scicalc.MsgUnsupportedOperation)
}

func TestDiff(t *testing.T) {
	out, err := run(t, "--plain", "diff", "x^2 + y^2")
	require.NoError(t, err)
	assert.Contains(t, out, "d/dx (x^2 + y^2) = 2*x")

	out, err = run(t, "--plain", "diff", "x^2 + y^2", "--var", "y")
	require.NoError(t, err)
	assert.Contains(t, out, "d/dy (x^2 + y^2) = 2*y")

	_, err = run(t, "--plain", "diff", "x*z", "--vars", "x")
	assert.ErrorIs(t, err, errReported)
}

func TestIntegrate(t *testing.T) {
	out, err := run(t, "--plain", "integrate", "2*x")
	require.NoError(t, err)
	assert.Contains(t, out, "∫ 2*x dx = x^2 + C")

	out, err = run(t, "--plain", "integrate", "x^2", "--from", "0", "--to", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "∫[0, 1] x^2 dx = 1/3")
	assert.Contains(t, out, "≈ 0.3333")

	_, err = run(t, "--plain", "integrate", "x", "--from", "0")
	assert.ErrorContains(t, err, "--from and --to")
}

func TestMarkdownOutput(t *testing.T) {
	sec := scicalc.New(scicalc.Options{}).Calculus(scicalc.CalculusInput{
		Expr: "x^2", Vars: "x", Op: scicalc.OpDerivative,
	})
	md := markdown(sec)
	assert.True(t, strings.HasPrefix(md, "## Calculus\n\n```text\n"))
	assert.Contains(t, md, "d/dx (x^2) = 2*x\n```")
	assert.Contains(t, md, "```latex\n\\frac{d}{dx}\\left(x^{2}\\right) = 2 x\n```")

	failed := scicalc.New(scicalc.Options{}).Matrix("Power", "1", "1")
	assert.Equal(t, "## Matrix Operations\n\n> **Unsupported Operation**\n", markdown(failed))

	out, err := run(t, "diff", "x^2")
	require.NoError(t, err)
	assert.Contains(t, out, "Calculus")
	assert.Contains(t, out, "2*x")
}

func TestTool(t *testing.T) {
	out, err := run(t, "tool", `{"tool":"definite_integral","params":{"expr":"x^2","a":0,"b":1}}`)
	require.NoError(t, err)
	var resp scicalc.ToolResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "1/3 ≈ 0.3333", resp.String)

	out, err = run(t, "tool", `{"tool":"nope"}`)
	assert.ErrorIs(t, err, errReported)
	assert.Contains(t, out, "unknown tool")

	_, err = run(t, "tool", `{`)
	assert.ErrorContains(t, err, "invalid tool request")
}

func TestSchema(t *testing.T) {
	out, err := run(t, "schema")
	require.NoError(t, err)
	assert.JSONEq(t, scicalc.ToolSpec(), out)
}

func TestConfigApplies(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scicalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("precision: 2\n"), 0644))

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"--config", path, "--plain", "trig", "30"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "cos(30°) = 0.87")
	assert.NotContains(t, out.String(), "0.8660")
}

func TestConfigInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scicalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0644))

	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--config", path, "schema"})
	assert.ErrorContains(t, cmd.Execute(), "logging.level")
}
