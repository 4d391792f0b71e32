package main

import (
	"fmt"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/Sternrassler/loadmore/pkg/dom"
)

const (
	formatHTML     = "html"
	formatMarkdown = "markdown"
)

func checkFormat(format string) error {
	switch format {
	case formatHTML, formatMarkdown:
		return nil
	default:
		return fmt.Errorf("unknown format %q (want %s or %s)", format, formatHTML, formatMarkdown)
	}
}

func newMarkdownConverter() *converter.Converter {
	return converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
}

// render serializes doc. Relative links resolve against the document URL
// in Markdown output.
func render(md *converter.Converter, doc *dom.Document, format string) (string, error) {
	out, err := doc.HTML()
	if err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	if format != formatMarkdown {
		return out, nil
	}

	text, err := md.ConvertString(out, converter.WithDomain(doc.URL()))
	if err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return text + "\n", nil
}
