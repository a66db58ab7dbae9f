package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/njchilds90/scicalc"
)

const wordWrap = 100

// print writes a section to stdout. A failed section is printed like any
// other and then reported through the exit status.
func (a *app) print(cmd *cobra.Command, sec scicalc.Section) error {
	out := plainText(sec)
	if !a.plain {
		md := markdown(sec)
		out = md
		r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(wordWrap))
		if err == nil {
			out, err = r.Render(md)
		}
		if err != nil {
			a.logger.Debug("markdown rendering failed", zap.Error(err))
			out = md
		}
	}
	if _, err := fmt.Fprint(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if !sec.OK() {
		a.logger.Debug("section failed", zap.String("section", sec.Title), zap.Error(sec.Err))
		return errReported
	}
	return nil
}

func plainText(sec scicalc.Section) string {
	var b strings.Builder
	b.WriteString(sec.Title + "\n")
	if !sec.OK() {
		b.WriteString(sec.Error + "\n")
		return b.String()
	}
	for _, l := range sec.Lines {
		b.WriteString(l.Text + "\n")
	}
	return b.String()
}

// markdown fences the lines so "*" and "_" in expressions stay literal.
func markdown(sec scicalc.Section) string {
	var b strings.Builder
	b.WriteString("## " + sec.Title + "\n\n")
	if !sec.OK() {
		b.WriteString("> **" + sec.Error + "**\n")
		return b.String()
	}
	b.WriteString("```text\n")
	for _, l := range sec.Lines {
		b.WriteString(l.Text + "\n")
	}
	b.WriteString("```\n")

	var tex []string
	for _, l := range sec.Lines {
		if l.LaTeX != "" {
			tex = append(tex, l.LaTeX)
		}
	}
	if len(tex) > 0 {
		b.WriteString("\nLaTeX:\n\n```latex\n" + strings.Join(tex, "\n") + "\n```\n")
	}
	return b.String()
}
