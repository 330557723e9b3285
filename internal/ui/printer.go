// Package ui renders user-facing console output.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes colored lines to an output. Colors are dropped automatically
// when the output is not a terminal.
type Printer struct {
	out     io.Writer
	success lipgloss.Style
	notice  lipgloss.Style
	failure lipgloss.Style
	muted   lipgloss.Style
}

// NewPrinter creates a printer bound to out
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		out:     out,
		success: r.NewStyle().Foreground(lipgloss.Color("2")),
		notice:  r.NewStyle().Foreground(lipgloss.Color("3")),
		failure: r.NewStyle().Foreground(lipgloss.Color("1")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Success prints a green line
func (p *Printer) Success(format string, args ...any) {
	p.line(p.success, format, args...)
}

// Notice prints a yellow line
func (p *Printer) Notice(format string, args ...any) {
	p.line(p.notice, format, args...)
}

// Failure prints a red line
func (p *Printer) Failure(format string, args ...any) {
	p.line(p.failure, format, args...)
}

// Plain prints an uncolored line
func (p *Printer) Plain(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Indexed prints "<index> -: <text>" with the text highlighted
func (p *Printer) Indexed(index int, text string) {
	fmt.Fprintf(p.out, "%d -: %s\n", index, p.success.Render(text))
}

// Muted renders s in a dim color without printing it
func (p *Printer) Muted(s string) string {
	return p.muted.Render(s)
}

func (p *Printer) line(style lipgloss.Style, format string, args ...any) {
	fmt.Fprintln(p.out, style.Render(fmt.Sprintf(format, args...)))
}
