// Package tui is the terminal version of the calculator page: one form, one
// results pane, re-rendered on every edit.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/njchilds90/scicalc"
)

type fieldKind int

const (
	textField fieldKind = iota
	toggleField
	choiceField
)

// Field order on screen.
const (
	fAngle = iota
	fShift
	fMatrixOp
	fMatrixA
	fMatrixB
	fExpr
	fVars
	fCalcOp
	fVar
	fLower
	fUpper
	numFields
)

type field struct {
	label   string
	kind    fieldKind
	input   textinput.Model
	on      bool
	choices []string
	choice  int
}

func (f field) value() string {
	switch f.kind {
	case choiceField:
		return f.choices[f.choice]
	case toggleField:
		return fmt.Sprint(f.on)
	}
	return f.input.Value()
}

type styles struct {
	title, label, focused, section, errText, muted lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212")).Padding(0, 1),
		label:   lipgloss.NewStyle().Width(14).Foreground(lipgloss.Color("245")),
		focused: lipgloss.NewStyle().Width(14).Bold(true).Foreground(lipgloss.Color("42")),
		section: lipgloss.NewStyle().Bold(true).Underline(true).MarginTop(1),
		errText: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Model is the bubbletea model. The zero value is not usable; call New.
type Model struct {
	calc     *scicalc.Calculator
	fields   []field
	focus    int
	page     scicalc.Page
	viewport viewport.Model
	ready    bool
	styles   styles
}

func New(calc *scicalc.Calculator, defaults scicalc.Form) Model {
	m := Model{
		calc:     calc,
		fields:   make([]field, numFields),
		styles:   defaultStyles(),
		viewport: viewport.New(80, 20),
	}
	text := func(label, value string) field {
		ti := textinput.New()
		ti.Prompt = ""
		ti.CharLimit = 256
		ti.Width = 40
		ti.SetValue(value)
		ti.CursorEnd()
		return field{label: label, kind: textField, input: ti}
	}
	choice := func(label string, choices []string, value string) field {
		f := field{label: label, kind: choiceField, choices: choices}
		for i, c := range choices {
			if c == value {
				f.choice = i
			}
		}
		return f
	}

	m.fields[fAngle] = text("Angle (°)", defaults.Angle)
	m.fields[fShift] = field{label: "Shift", kind: toggleField, on: defaults.Shift}
	m.fields[fMatrixOp] = choice("Matrix op", scicalc.MatrixOps, defaults.MatrixOp)
	m.fields[fMatrixA] = text("Matrix A", defaults.MatrixA)
	m.fields[fMatrixB] = text("Matrix B", defaults.MatrixB)
	m.fields[fExpr] = text("Expression", defaults.Expr)
	m.fields[fVars] = text("Variables", defaults.Vars)
	m.fields[fCalcOp] = choice("Calculus op", scicalc.CalculusOps, defaults.CalcOp)
	m.fields[fVar] = text("With respect", defaults.Var)
	m.fields[fLower] = text("Lower limit", defaults.Lower)
	m.fields[fUpper] = text("Upper limit", defaults.Upper)

	m.fields[fAngle].input.Focus()
	m.recompute()
	return m
}

// Form reads the current field values.
func (m Model) Form() scicalc.Form {
	return scicalc.Form{
		Angle:    m.fields[fAngle].value(),
		Shift:    m.fields[fShift].on,
		MatrixOp: m.fields[fMatrixOp].value(),
		MatrixA:  m.fields[fMatrixA].value(),
		MatrixB:  m.fields[fMatrixB].value(),
		Expr:     m.fields[fExpr].value(),
		Vars:     m.fields[fVars].value(),
		CalcOp:   m.fields[fCalcOp].value(),
		Var:      m.fields[fVar].value(),
		Lower:    m.fields[fLower].value(),
		Upper:    m.fields[fUpper].value(),
	}
}

// Page is the last rendered page.
func (m Model) Page() scicalc.Page { return m.page }

func (m *Model) recompute() {
	m.page = m.calc.Render(m.Form())
	m.viewport.SetContent(m.renderPage())
}

func (m Model) Init() tea.Cmd { return textinput.Blink }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-numFields-4, 3)
		m.ready = true
		m.viewport.SetContent(m.renderPage())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "tab", "down":
			return m, m.moveFocus(1)
		case "shift+tab", "up":
			return m, m.moveFocus(-1)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

		f := &m.fields[m.focus]
		switch f.kind {
		case toggleField:
			switch msg.String() {
			case " ", "enter", "left", "right":
				f.on = !f.on
				m.recompute()
			}
			return m, nil
		case choiceField:
			switch msg.String() {
			case " ", "enter", "right":
				f.choice = (f.choice + 1) % len(f.choices)
				m.recompute()
			case "left":
				f.choice = (f.choice + len(f.choices) - 1) % len(f.choices)
				m.recompute()
			}
			return m, nil
		}

		before := f.input.Value()
		var cmd tea.Cmd
		f.input, cmd = f.input.Update(msg)
		if f.input.Value() != before {
			m.recompute()
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.fields[m.focus].input, cmd = m.fields[m.focus].input.Update(msg)
	return m, cmd
}

func (m *Model) moveFocus(delta int) tea.Cmd {
	if m.fields[m.focus].kind == textField {
		m.fields[m.focus].input.Blur()
	}
	m.focus = (m.focus + delta + len(m.fields)) % len(m.fields)
	if m.fields[m.focus].kind == textField {
		return m.fields[m.focus].input.Focus()
	}
	return nil
}

func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.styles.title.Render("🧮 Scientific Calculator"))
	b.WriteString("\n\n")
	for i, f := range m.fields {
		label := m.styles.label
		if i == m.focus {
			label = m.styles.focused
		}
		b.WriteString(label.Render(f.label))
		switch f.kind {
		case toggleField:
			if f.on {
				b.WriteString("[x] inverse functions")
			} else {
				b.WriteString("[ ] inverse functions")
			}
		case choiceField:
			b.WriteString("‹ " + f.value() + " ›")
		default:
			b.WriteString(f.input.View())
		}
		b.WriteString("\n")
	}
	b.WriteString(m.viewport.View())
	b.WriteString("\n")
	b.WriteString(m.styles.muted.Render("tab/↑↓ move • space/←→ change • pgup/pgdn scroll • esc quit"))
	return b.String()
}

func (m Model) renderPage() string {
	var b strings.Builder
	for _, sec := range m.page.Sections() {
		b.WriteString(m.styles.section.Render(sec.Title))
		b.WriteString("\n")
		if !sec.OK() {
			b.WriteString(m.styles.errText.Render(sec.Error))
			b.WriteString("\n")
			continue
		}
		for _, l := range sec.Lines {
			b.WriteString("  " + l.Text + "\n")
		}
	}
	return b.String()
}

// Run starts the program on the terminal and blocks until the user quits.
func Run(calc *scicalc.Calculator, defaults scicalc.Form) error {
	_, err := tea.NewProgram(New(calc, defaults), tea.WithAltScreen()).Run()
	return err
}
