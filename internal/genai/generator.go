// Package genai provides the client for the external text-generation service.
package genai

import "context"

// Request carries one generation call to the backing service.
type Request struct {
	// System is the system instruction, empty to omit.
	System string
	// Prompt is the user-facing prompt body.
	Prompt string
	// SchemaName names the structured-output schema, empty for free text.
	SchemaName string
	// Schema is a JSON schema constraining the response shape. Backends
	// that ignore response formats may still wrap output in a markdown
	// fence, so callers decode defensively either way.
	Schema map[string]any
}

// Generator is the narrow interface to the remote text-generation service.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}
