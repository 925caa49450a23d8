// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown turns post bodies into HTML using goldmark. Bodies are
// written either as Markdown or as raw HTML from the admin editor; both
// render through the same path because raw HTML passes through unchanged.
package markdown

import (
	"bytes"
	"html"
	"html/template"
	"log/slog"
	"strings"

	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks, task lists
		extension.Typographer, // smart quotes and dashes
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithUnsafe(), // posts saved from the HTML editor
		gmhtml.WithHardWraps(),
	),
)

// ToHTML converts Markdown source into HTML. Raw HTML embedded in the
// Markdown is passed through unchanged.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// IsHTML reports whether content already looks like an HTML fragment.
func IsHTML(content string) bool {
	s := strings.TrimSpace(content)
	return strings.HasPrefix(s, "<") && strings.Contains(s, ">")
}

// Render returns a post body ready for a template. HTML fragments are used
// as they are; anything else is treated as Markdown. A conversion failure
// falls back to escaped text.
func Render(content string) template.HTML {
	if IsHTML(content) {
		return template.HTML(content)
	}
	out, err := ToHTML(content)
	if err != nil {
		slog.Warn("markdown render failed", "error", err)
		return template.HTML("<p>" + html.EscapeString(content) + "</p>")
	}
	return template.HTML(out)
}
