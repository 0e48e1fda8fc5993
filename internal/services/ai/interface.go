// File: internal/services/ai/interface.go
package ai

import "context"

// CompletionProvider handles chat completions
type CompletionProvider interface {
	// GetJSONCompletion asks for a single JSON object answering prompt
	// under the given system instructions.
	GetJSONCompletion(ctx context.Context, system, prompt string) (string, error)
}
