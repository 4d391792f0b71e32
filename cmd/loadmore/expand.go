package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/Sternrassler/loadmore/pkg/pagination"
	"github.com/spf13/cobra"
)

func newExpandCommand(a *app) *cobra.Command {
	var format, out string

	cmd := &cobra.Command{
		Use:   "expand <url>...",
		Short: "Expand listings and print the resulting documents",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out)
				if err != nil {
					return fmt.Errorf("create output: %w", err)
				}
				defer f.Close()
				w = f
			}

			return a.runExpand(cmd.Context(), args, format, w)
		},
	}

	cmd.Flags().StringVar(&format, "format", formatHTML, "output format (html, markdown)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write output to file instead of stdout")
	return cmd
}

// runExpand writes every expanded document, partial ones included, in
// argument order and returns the batch error afterwards.
func (a *app) runExpand(ctx context.Context, urls []string, format string, w io.Writer) error {
	fetcher, err := a.newClient()
	if err != nil {
		return err
	}

	rdb := a.newRedis()
	if rdb != nil {
		defer rdb.Close()
	}

	scroller := a.newScroller(fetcher, rdb)
	batch := pagination.NewBatchScroller(scroller, a.cfg.Scroller())

	results, batchErr := batch.ExpandAll(ctx, urls)

	md := newMarkdownConverter()
	for _, u := range urls {
		exp, ok := results[u]
		if !ok || exp.Doc == nil {
			continue
		}

		body, err := render(md, exp.Doc, format)
		if err != nil {
			return errors.Join(batchErr, err)
		}
		if _, err := io.WriteString(w, body); err != nil {
			return fmt.Errorf("write output: %w", err)
		}

		a.logger.Info().
			Str("url", u).
			Int("pages", exp.Stats.Pages).
			Str("stop", string(exp.Stats.Stop)).
			Msg("Listing written")
	}

	return batchErr
}
