package web

import (
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// md converts assistant responses (bold headers, bullet lists) to HTML.
// Raw HTML in the source is escaped, not passed through.
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// renderMarkdown converts message markdown to HTML for the transcript
// view.
func renderMarkdown(source string) (template.HTML, error) {
	var b strings.Builder
	if err := md.Convert([]byte(source), &b); err != nil {
		return "", err
	}
	return template.HTML(b.String()), nil
}
