// Package api defines result shapes returned to callers of conversion and
// patch operations and maps errors to transport status codes.
package api

import (
	"errors"
	"net/http"

	"docconv/common"
	"docconv/convert"
	"docconv/patch"
)

type Warning struct {
	Message  string          `json:"message"`
	Severity common.Severity `json:"severity"`
}

type ConvertResponse struct {
	Success  bool                    `json:"success"`
	HTML     string                  `json:"html"`
	CSS      string                  `json:"css,omitempty"`
	Method   common.ConversionMethod `json:"method"`
	Warnings []Warning               `json:"warnings"`
	Fidelity int                     `json:"fidelity"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	// Change is index of offending patch change, if any.
	Change *int `json:"change,omitempty"`
}

type PatchResponse struct {
	Document        string `json:"document"`
	RevisionCreated bool   `json:"revisionCreated"`
	RevisionID      string `json:"revisionId,omitempty"`
}

func NewConvertResponse(res *convert.Result) *ConvertResponse {
	out := &ConvertResponse{
		Success:  true,
		HTML:     res.HTML,
		CSS:      res.CSS,
		Method:   res.Method,
		Warnings: make([]Warning, 0, len(res.Warnings)),
		Fidelity: res.Fidelity,
	}
	for _, w := range res.Warnings {
		out.Warnings = append(out.Warnings, Warning{Message: w.Message, Severity: w.Severity})
	}
	return out
}

func NewErrorResponse(err error) *ErrorResponse {
	out := &ErrorResponse{Error: err.Error()}
	var ce *patch.ChangeError
	if errors.As(err, &ce) && ce.Index >= 0 {
		idx := ce.Index
		out.Change = &idx
	}
	return out
}

// StatusFor maps error to HTTP status code. Client errors are reported as
// 400, everything else as 500.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, convert.ErrUnsupportedFormat),
		errors.Is(err, convert.ErrInvalidInput),
		errors.Is(err, patch.ErrInvalidPatch):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
