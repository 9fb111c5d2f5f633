package handlers

import (
	"bytes"
	_ "embed"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed content/home.md
var homeMarkdown []byte

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// renderMarkdown converts trusted, embedded markdown to HTML.
func renderMarkdown(src []byte) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert(src, &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
