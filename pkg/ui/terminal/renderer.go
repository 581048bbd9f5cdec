// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/arthur-debert/pkgweave/pkg/errors"
	"github.com/arthur-debert/pkgweave/pkg/ui/display"
	"github.com/arthur-debert/pkgweave/pkg/ui/styles"
	"github.com/pterm/pterm"
)

// Renderer draws results with the named styles and pterm tables
type Renderer struct {
	output io.Writer
}

// New creates a new terminal renderer
func New(w io.Writer) *Renderer {
	return &Renderer{output: w}
}

// RenderResult renders known results; unknown types are printed with %+v
func (r *Renderer) RenderResult(result interface{}) error {
	res, ok := display.FromResult(result)
	if !ok {
		_, err := fmt.Fprintf(r.output, "%+v\n", result)
		return err
	}

	var b strings.Builder
	b.WriteString(styles.Render("Header", res.Command))
	if res.DryRun {
		b.WriteString(" " + styles.Render("DryRunBanner", "dry run"))
	}
	b.WriteString("\n")

	for _, f := range res.Fields {
		b.WriteString(styles.Render("Label", f.Label) + styles.Render("Value", f.Value) + "\n")
	}

	if res.Table != nil {
		b.WriteString(styles.Render("SubHeader", res.Table.Title) + "\n")
		table, err := renderTable(res.Table)
		if err != nil {
			return err
		}
		b.WriteString(table)
	}

	for _, list := range res.Lists {
		b.WriteString(styles.Render("SubHeader", list.Title) + "\n")
		for _, item := range list.Items {
			b.WriteString(styles.Render("Bullet", "•") + " " + styles.Render("FilePath", item) + "\n")
		}
	}

	_, err := io.WriteString(r.output, b.String())
	return err
}

func renderTable(t *display.Table) (string, error) {
	data := pterm.TableData{t.Header}
	data = append(data, t.Rows...)
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", fmt.Errorf("failed to render table: %w", err)
	}
	return out + "\n", nil
}

// RenderError renders a badge with the error code, the message and any
// details.
func (r *Renderer) RenderError(err error) error {
	var b strings.Builder
	code := errors.GetErrorCode(err)
	b.WriteString(styles.Render("ErrorBadge", string(code)) + " " + styles.Render("Error", message(err)) + "\n")

	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		b.WriteString(styles.Render("Label", k) + fmt.Sprint(details[k]) + "\n")
	}

	_, werr := io.WriteString(r.output, b.String())
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, styles.Render("Info", msg))
	return err
}

// message drops the "[CODE] " prefix of coded errors since the badge
// already shows it.
func message(err error) string {
	var weaveErr *errors.WeaveError
	if errors.As(err, &weaveErr) {
		return strings.TrimPrefix(err.Error(), "["+string(weaveErr.Code)+"] ")
	}
	return err.Error()
}
