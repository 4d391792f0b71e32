package dom

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("loadmore.pkg.dom")

// ErrFragmentNotFound is returned when a fetched page has no element
// matching the container selector.
var ErrFragmentNotFound = errors.New("fragment container not found")

// ExtractFragment parses a fetched page and returns the inner markup of the
// first element matching selector.
func ExtractFragment(ctx context.Context, r io.Reader, selector string) (string, error) {
	_, span := tracer.Start(ctx, "ExtractFragment")
	defer span.End()
	span.SetAttributes(attribute.String("selector", selector))

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "parse response")
		return "", fmt.Errorf("parse response: %w", err)
	}

	s := doc.Find(selector).First()
	if s.Length() == 0 {
		span.SetStatus(codes.Error, "container missing")
		return "", fmt.Errorf("%w: %s", ErrFragmentNotFound, selector)
	}

	markup, err := s.Html()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "render fragment")
		return "", fmt.Errorf("render fragment: %w", err)
	}

	span.SetAttributes(attribute.Int("bytes", len(markup)))
	return markup, nil
}
