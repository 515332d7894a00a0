package ai

import (
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Model replies are untrusted input. Each reply is schema-checked before
// anything decodes it into domain types.

const tickReplySchema = `{
  "type": "object",
  "required": ["events"],
  "properties": {
    "events": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["description", "significance"],
        "properties": {
          "description": {"type": "string", "minLength": 1},
          "significance": {"enum": ["ambient", "minor", "moderate", "major", "dramatic"]},
          "effects": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["type"],
              "properties": {"type": {"type": "string"}}
            }
          },
          "chronicle": {
            "type": "object",
            "required": ["summary"],
            "properties": {
              "type": {"type": "string"},
              "summary": {"type": "string", "minLength": 1},
              "zone": {"type": "string"},
              "characters": {"type": "array", "items": {"type": "string"}},
              "threads": {"type": "array", "items": {"type": "string"}}
            }
          }
        }
      }
    }
  }
}`

const consequenceReplySchema = `{
  "type": "object",
  "required": ["summary"],
  "properties": {
    "summary": {"type": "string", "minLength": 1},
    "state_changes": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["character_id"],
        "properties": {
          "character_id": {"type": "string"},
          "mood": {"type": "string"},
          "new_goal": {"type": "string"}
        }
      }
    },
    "threads": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id"],
        "properties": {
          "id": {"type": "string"},
          "summary": {"type": "string"},
          "tension_delta": {"type": "integer"},
          "resolve": {"type": "boolean"}
        }
      }
    },
    "deferred": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["description", "condition"],
        "properties": {
          "description": {"type": "string"},
          "condition": {"type": "string"}
        }
      }
    }
  }
}`

const conditionReplySchema = `{
  "type": "object",
  "required": ["holds"],
  "properties": {"holds": {"type": "boolean"}}
}`

var (
	tickSchema        = jsonschema.MustCompileString("tick-reply.json", tickReplySchema)
	consequenceSchema = jsonschema.MustCompileString("consequence-reply.json", consequenceReplySchema)
	conditionSchema   = jsonschema.MustCompileString("condition-reply.json", conditionReplySchema)
)

// validateReply checks raw JSON against a compiled schema.
func validateReply(schema *jsonschema.Schema, raw string) error {
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return fmt.Errorf("parsing reply: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("reply failed validation: %w", err)
	}
	return nil
}
