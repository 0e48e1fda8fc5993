// File: internal/services/tools/schemas.go
package tools

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/xeipuuv/gojsonschema"
)

const (
	MaxTitleLength       = 500
	MaxDescriptionLength = 2000
)

var schemaSources = map[Name]string{
	NameListTasks: `{
		"type": "object",
		"required": ["user_id"],
		"additionalProperties": false,
		"properties": {
			"user_id":   {"type": "string", "minLength": 1},
			"completed": {"type": "boolean"},
			"priority":  {"type": "string", "enum": ["low", "medium", "high"]}
		}
	}`,
	NameAddTask: fmt.Sprintf(`{
		"type": "object",
		"required": ["user_id", "title"],
		"additionalProperties": false,
		"properties": {
			"user_id":     {"type": "string", "minLength": 1},
			"title":       {"type": "string", "minLength": 1, "maxLength": %d},
			"description": {"type": "string", "maxLength": %d},
			"priority":    {"type": "string", "enum": ["low", "medium", "high"]},
			"due_date":    {"type": "string", "format": "date"}
		}
	}`, MaxTitleLength, MaxDescriptionLength),
	NameCompleteTask: `{
		"type": "object",
		"required": ["user_id", "task_id", "completed"],
		"additionalProperties": false,
		"properties": {
			"user_id":   {"type": "string", "minLength": 1},
			"task_id":   {"type": "integer", "minimum": 1},
			"completed": {"type": "boolean"}
		}
	}`,
	NameUpdateTask: fmt.Sprintf(`{
		"type": "object",
		"required": ["user_id", "task_id"],
		"additionalProperties": false,
		"anyOf": [{"required": ["title"]}, {"required": ["description"]}],
		"properties": {
			"user_id":     {"type": "string", "minLength": 1},
			"task_id":     {"type": "integer", "minimum": 1},
			"title":       {"type": "string", "minLength": 1, "maxLength": %d},
			"description": {"type": "string", "maxLength": %d}
		}
	}`, MaxTitleLength, MaxDescriptionLength),
	NameDeleteTask: `{
		"type": "object",
		"required": ["user_id", "task_id"],
		"additionalProperties": false,
		"properties": {
			"user_id": {"type": "string", "minLength": 1},
			"task_id": {"type": "integer", "minimum": 1}
		}
	}`,
}

func compileSchemas() (map[Name]*gojsonschema.Schema, error) {
	schemas := make(map[Name]*gojsonschema.Schema, len(schemaSources))
	for name, src := range schemaSources {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
		if err != nil {
			return nil, errors.Wrapf(err, "compile schema for %s", name)
		}
		schemas[name] = schema
	}
	return schemas, nil
}

// validationMessage flattens schema errors into one readable line.
func validationMessage(result *gojsonschema.Result) string {
	parts := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		if e.Type() == "number_any_of" {
			parts = append(parts, "a new title or description is required")
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}
	return strings.Join(parts, "; ")
}
