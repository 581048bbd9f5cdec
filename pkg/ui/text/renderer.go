// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/ui/display"
)

// Renderer provides plain text output without colors or styling
type Renderer struct {
	output io.Writer
}

// New creates a new text renderer
func New(output io.Writer) *Renderer {
	return &Renderer{output: output}
}

// RenderResult renders known results as aligned plain text. Unknown types
// are printed with %+v.
func (r *Renderer) RenderResult(result interface{}) error {
	res, ok := display.FromResult(result)
	if !ok {
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}

	var b strings.Builder
	b.WriteString(res.Command)
	if res.DryRun {
		b.WriteString(" (dry run)")
	}
	b.WriteString("\n")

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	for _, f := range res.Fields {
		fmt.Fprintf(tw, "  %s:\t%s\n", f.Label, f.Value)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if res.Table != nil {
		fmt.Fprintf(&b, "\n%s:\n", res.Table.Title)
		tw = tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "  %s\n", strings.Join(upper(res.Table.Header), "\t"))
		for _, row := range res.Table.Rows {
			fmt.Fprintf(tw, "  %s\n", strings.Join(row, "\t"))
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	for _, list := range res.Lists {
		fmt.Fprintf(&b, "\n%s:\n", list.Title)
		for _, item := range list.Items {
			fmt.Fprintf(&b, "  %s\n", item)
		}
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

// RenderError renders an error and its details, one per line
func (r *Renderer) RenderError(err error) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Error: %v\n", err)
	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, "  %s: %v\n", k, details[k])
	}
	_, werr := io.WriteString(r.output, b.String())
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}

func upper(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = strings.ToUpper(c)
	}
	return out
}
