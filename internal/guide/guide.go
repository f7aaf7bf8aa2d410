// Package guide holds the user guide shown by the web help page and the
// guide command.
package guide

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/charmbracelet/glamour"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed guide.md
var markdown []byte

// Markdown returns the raw guide source.
func Markdown() string {
	return string(markdown)
}

// HTML renders the guide with GitHub-flavoured tables.
func HTML() (template.HTML, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert(markdown, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}

// Terminal renders the guide for a terminal of the given width. Zero or
// negative widths fall back to 80 columns.
func Terminal(width int, styled bool) (string, error) {
	if width <= 0 {
		width = 80
	}
	style := glamour.WithStandardStyle("notty")
	if styled {
		style = glamour.WithAutoStyle()
	}
	renderer, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err != nil {
		return "", err
	}
	return renderer.Render(Markdown())
}
