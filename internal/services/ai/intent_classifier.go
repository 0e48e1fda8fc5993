// File: internal/services/ai/intent_classifier.go
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iyunix/go-taskmate/internal/services/intent"
)

// historyTurns is how much of the conversation the model sees.
const historyTurns = 4

const classifierInstructions = `You classify messages sent to a personal task manager.
Answer with a JSON object {"category": C, "confidence": X} where C is one of
CREATE, LIST, COMPLETE, UPDATE, DELETE, CASUAL or UNKNOWN and X is a number
between 0 and 1.
CREATE adds a task, LIST shows tasks, COMPLETE marks a task done or not done,
UPDATE changes a task's title or description, DELETE removes a task,
CASUAL is small talk. Use UNKNOWN when none of these fit.`

// IntentClassifier asks a completion model to classify messages the
// rule battery could not.
type IntentClassifier struct {
	provider CompletionProvider
}

func NewIntentClassifier(provider CompletionProvider) (*IntentClassifier, error) {
	if provider == nil {
		return nil, configError("completion provider is required")
	}
	return &IntentClassifier{provider: provider}, nil
}

type classification struct {
	Category   string  `json:"category"`
	Confidence float64 `json:"confidence"`
}

func (c *IntentClassifier) Classify(ctx context.Context, message string, history []intent.Turn) (intent.Category, float64, error) {
	raw, err := c.provider.GetJSONCompletion(ctx, classifierInstructions, buildPrompt(message, history))
	if err != nil {
		return intent.CategoryUnknown, 0, err
	}

	var out classification
	if err := json.Unmarshal([]byte(stripFence(raw)), &out); err != nil {
		return intent.CategoryUnknown, 0, responseError("classify", "response is not valid JSON", err)
	}
	category, ok := intent.ParseCategory(out.Category)
	if !ok {
		return intent.CategoryUnknown, 0, responseError("classify", fmt.Sprintf("unknown category %q", out.Category), nil)
	}

	confidence := out.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return category, confidence, nil
}

func buildPrompt(message string, history []intent.Turn) string {
	if len(history) > historyTurns {
		history = history[len(history)-historyTurns:]
	}
	var b strings.Builder
	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, t := range history {
			fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Message to classify: %s", message)
	return b.String()
}

// stripFence removes a markdown code fence some models wrap JSON in.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
