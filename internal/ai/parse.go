package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pixil98/go-story/internal/world"
)

// ExtractJSON pulls the first JSON object or array out of a model reply,
// tolerating markdown fences and prose around it.
func ExtractJSON(text string) (string, error) {
	text = strings.TrimSpace(text)

	if i := strings.Index(text, "```"); i >= 0 {
		rest := text[i+3:]
		rest = strings.TrimPrefix(rest, "json")
		if j := strings.Index(rest, "```"); j >= 0 {
			text = strings.TrimSpace(rest[:j])
		}
	}

	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", fmt.Errorf("no json found in reply")
	}

	open := text[start]
	var closer byte = '}'
	if open == '[' {
		closer = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		switch {
		case escaped:
			escaped = false
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == open:
			depth++
		case ch == closer:
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}

	return "", fmt.Errorf("unbalanced json in reply")
}

// rawEffect is the wire shape of an effect: a type discriminator plus the
// variant's own fields, flattened.
type rawEffect struct {
	Type string `json:"type"`
}

// DecodeEffect turns one effect object from a model reply into its typed
// variant.
func DecodeEffect(raw json.RawMessage) (world.Effect, error) {
	var head rawEffect
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("decoding effect head: %w", err)
	}

	decode := func(v any) error {
		if err := json.Unmarshal(raw, v); err != nil {
			return fmt.Errorf("decoding %s effect: %w", head.Type, err)
		}
		return nil
	}

	switch head.Type {
	case "character_move":
		var e world.CharacterMove
		return e, decode(&e)
	case "character_spawn":
		var e world.CharacterSpawn
		return e, decode(&e)
	case "character_remove":
		var e world.CharacterRemove
		return e, decode(&e)
	case "character_state":
		var e world.CharacterStateChange
		return e, decode(&e)
	case "weather_change":
		var e world.WeatherChange
		return e, decode(&e)
	case "lighting_change":
		var e world.LightingChange
		return e, decode(&e)
	case "object_spawn":
		var e world.ObjectSpawn
		return e, decode(&e)
	case "object_remove":
		var e world.ObjectRemove
		return e, decode(&e)
	case "narration":
		var e world.Narration
		return e, decode(&e)
	case "zone_modify":
		var e world.ZoneModify
		return e, decode(&e)
	default:
		return nil, fmt.Errorf("unknown effect type %q", head.Type)
	}
}

// DecodeEffects decodes a list, skipping entries that fail so one bad
// effect cannot void a whole batch. The error count comes back for
// logging.
func DecodeEffects(raws []json.RawMessage) ([]world.Effect, int) {
	var out []world.Effect
	var failed int
	for _, raw := range raws {
		e, err := DecodeEffect(raw)
		if err != nil {
			failed++
			continue
		}
		out = append(out, e)
	}
	return out, failed
}
