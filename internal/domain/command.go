package domain

import (
	"regexp"
	"strings"
)

type Action string

const (
	ActionAdvance         Action = "advance"
	ActionRetreat         Action = "retreat"
	ActionClearField      Action = "clear_field"
	ActionRemoveLastPoint Action = "remove_last_point"
	ActionJumpTo          Action = "jump_to"
	ActionDictate         Action = "dictate"
)

// TextUtterancePrefix marks source payloads that already hold recognized text
// rather than audio.
const TextUtterancePrefix = "__TEXT__:"

const jumpPrefix = "go to"

// exactCommands maps a normalized utterance to its navigation or edit action.
var exactCommands = map[string]Action{
	"next":              ActionAdvance,
	"skip":              ActionAdvance,
	"back":              ActionRetreat,
	"clear this field":  ActionClearField,
	"delete last point": ActionRemoveLastPoint,
}

var segmentSeparator = regexp.MustCompile(`(?i)\bnext\s+point\b`)

type Command struct {
	Action  Action
	Target  string
	RawText string
}

// Classify maps one finalized utterance to a command. It never fails:
// anything that is not a recognized command is dictation.
func Classify(utterance string) Command {
	normalized := normalize(utterance)

	if action, ok := exactCommands[normalized]; ok {
		return Command{Action: action, RawText: utterance}
	}

	if normalized == jumpPrefix || strings.HasPrefix(normalized, jumpPrefix+" ") {
		return Command{
			Action:  ActionJumpTo,
			Target:  jumpTarget(utterance),
			RawText: utterance,
		}
	}

	return Command{Action: ActionDictate, RawText: utterance}
}

// SplitSegments breaks dictated text on the spoken "next point" separator and
// returns the non-empty trimmed pieces.
func SplitSegments(text string) []string {
	var segments []string
	for _, part := range segmentSeparator.Split(text, -1) {
		if s := strings.TrimSpace(part); s != "" {
			segments = append(segments, s)
		}
	}
	return segments
}

func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// jumpTarget strips the "go to" prefix while keeping the target's casing.
func jumpTarget(utterance string) string {
	words := strings.Fields(utterance)
	if len(words) <= 2 {
		return ""
	}
	return strings.Join(words[2:], " ")
}
