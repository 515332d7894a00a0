package ai

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"
)

var templateFuncs = sprig.TxtFuncMap()

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(text))
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing %s template: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}

const tickSystemPrompt = `You are the hidden narrator of a living world. Given the current
situation, decide what happens next. Most moments nothing notable happens;
return an empty list freely. Reply with JSON only, matching the schema you
were shown. Effects must reference characters and zones by the exact ids
given.`

var tickPrompt = mustTemplate("tick", `## Situation
Game time: {{ .GameTime }} ({{ .TimeOfDay }})
Weather: {{ .Weather | default "clear" }}
Player zone: {{ .PlayerZone }}
{{- if .Nearby }}
Nearby characters: {{ join ", " .Nearby }}
{{- end }}

{{ .Window }}

## Task
Decide what, if anything, happens in the world right now. Reply with JSON:
{"events": [{"description": "...", "significance": "ambient|minor|moderate|major|dramatic",
"effects": [{"type": "...", ...}],
"chronicle": {"type": "event", "summary": "...", "zone": "...", "characters": [], "threads": []}}]}
Omit "chronicle" for ambient events not worth recording.`)

const consequenceSystemPrompt = `You judge the lasting consequences of conversations in a living
world. Be conservative: most conversations change little. Reply with JSON
only.`

var consequencePrompt = mustTemplate("consequence", `## Conversation with {{ .CharacterName }}
{{- range .Turns }}
{{ .Speaker }}: {{ .Text }}
{{- end }}

{{ .Window }}

## Task
Summarize the conversation in one sentence and decide its consequences.
Reply with JSON:
{"summary": "...",
"state_changes": [{"character_id": "...", "mood": "...", "new_goal": "..."}],
"threads": [{"id": "...", "summary": "...", "tension_delta": 0, "resolve": false}],
"deferred": [{"description": "...", "condition": "..."}]}`)

const compressionSystemPrompt = `You compress game event logs into short narrative prose. Keep names,
places, and unresolved tensions. Two or three sentences, past tense.`

var compressionPrompt = mustTemplate("compression", `{{- if .RecentSummary }}
## Earlier
{{ .RecentSummary }}

{{ end -}}
## Events to fold in
{{ .Entries }}

Write a compact summary of these events, continuing from the earlier
summary if one is given. Reply with the prose only.`)

const conditionSystemPrompt = `You judge whether a trigger condition for a pending story event now
holds. Reply with JSON only: {"holds": true} or {"holds": false}.`

var conditionPrompt = mustTemplate("condition", `## Condition
{{ .Condition }}

## Situation
Game time: {{ .GameTime }} ({{ .TimeOfDay }})
Player zone: {{ .PlayerZone }}
{{- if .Nearby }}
Nearby characters: {{ join ", " .Nearby }}
{{- end }}

{{ .Window }}

Does the condition hold right now?`)
