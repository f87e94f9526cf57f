package domain

import "strings"

// PromptOutcome is the structured result of a vision/text model call.
// Generated is false when the model refused. It does not reflect the
// prompt's length: an empty or too-short reply can still carry
// Generated=true, and Usable applies the length rule on top of it.
type PromptOutcome struct {
	Prompt    string
	Generated bool
}

// MinPromptLength is the shortest trimmed prompt the orchestrator accepts
// as usable, per spec's Stage-1/Stage-2 "empty or too-short" rule.
const MinPromptLength = 3

// Usable reports whether this outcome can feed the next stage: it was
// generated and its trimmed text clears the minimum length.
func (o PromptOutcome) Usable() bool {
	return o.Generated && len(strings.TrimSpace(o.Prompt)) >= MinPromptLength
}

// refusalMarkers are lowercase substrings that mark a model reply as a
// decline rather than a prompt.
var refusalMarkers = []string{
	"i'm sorry",
	"i can't assist",
	"can't help",
	"cannot",
	"unable to",
}

// ClassifyReply applies the refusal-keyword heuristic to a free-text model
// reply and returns the resulting outcome, with the reply trimmed.
func ClassifyReply(reply string) PromptOutcome {
	trimmed := strings.TrimSpace(reply)
	lower := strings.ToLower(trimmed)
	for _, marker := range refusalMarkers {
		if strings.Contains(lower, marker) {
			return PromptOutcome{Prompt: trimmed, Generated: false}
		}
	}
	return PromptOutcome{Prompt: trimmed, Generated: true}
}
