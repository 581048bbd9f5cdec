// Package json provides machine-readable JSON output
package json

import (
	"encoding/json"
	"io"

	"github.com/arthur-debert/pkgweave/pkg/errors"
)

// Renderer writes one indented JSON document per call
type Renderer struct {
	encoder *json.Encoder
}

type errorObject struct {
	Error   string                 `json:"error"`
	Code    errors.ErrorCode       `json:"code,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// New creates a new JSON renderer
func New(output io.Writer) *Renderer {
	encoder := json.NewEncoder(output)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return &Renderer{encoder: encoder}
}

// RenderResult encodes result as is; result types carry their own json tags
func (r *Renderer) RenderResult(result interface{}) error {
	return r.encoder.Encode(result)
}

// RenderError encodes the message, and for coded errors the code and details
func (r *Renderer) RenderError(err error) error {
	obj := errorObject{Error: err.Error()}
	var weaveErr *errors.WeaveError
	if errors.As(err, &weaveErr) {
		obj.Code = weaveErr.Code
		if len(weaveErr.Details) > 0 {
			obj.Details = weaveErr.Details
		}
	}
	return r.encoder.Encode(obj)
}

// RenderMessage renders a simple message as JSON
func (r *Renderer) RenderMessage(msg string) error {
	return r.encoder.Encode(map[string]string{"message": msg})
}
