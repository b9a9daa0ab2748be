package domain

import "strings"

// State is one editing session: the template's fields, what has been dictated
// into them, and which field is active.
type State struct {
	Fields FieldOrder
	Buffer FieldBuffer
	Cursor Cursor
}

// NewState starts an empty session positioned on the first field.
func NewState(fields FieldOrder) State {
	return State{
		Fields: append(FieldOrder(nil), fields...),
		Buffer: FieldBuffer{},
	}
}

// CurrentKey returns the active field, or "" when there are no fields.
func (s State) CurrentKey() string {
	if len(s.Fields) == 0 {
		return ""
	}
	return s.Fields[s.Cursor.Clamp(len(s.Fields))]
}

// ProcessUtterance applies one finalized utterance and returns the next state.
// Misheard or out-of-range commands leave the state unchanged instead of failing.
func ProcessUtterance(s State, utterance string) State {
	n := len(s.Fields)
	if n == 0 {
		return s
	}

	cmd := Classify(utterance)
	next := State{Fields: s.Fields, Buffer: s.Buffer, Cursor: s.Cursor.Clamp(n)}
	key := next.CurrentKey()

	switch cmd.Action {
	case ActionAdvance:
		next.Cursor = next.Cursor.Advance(n)
	case ActionRetreat:
		next.Cursor = next.Cursor.Retreat()
	case ActionJumpTo:
		next.Cursor = next.Cursor.JumpTo(s.Fields, cmd.Target)
	case ActionClearField:
		next.Buffer = s.Buffer.Clear(key)
	case ActionRemoveLastPoint:
		next.Buffer = s.Buffer.RemoveLastLine(key)
	case ActionDictate:
		if len(SplitSegments(cmd.RawText)) == 0 {
			return next
		}
		next.Buffer = s.Buffer.Append(key, cmd.RawText)
		next.Cursor = next.Cursor.Advance(n)
	}

	return next
}

// Snapshot is the persisted form of a session.
type Snapshot struct {
	Template string              `json:"template"`
	Values   map[string][]string `json:"filled_values"`
	Cursor   int                 `json:"cursor"`
}

// TakeSnapshot copies the session state for persistence.
func TakeSnapshot(s State, templateName string) Snapshot {
	return Snapshot{
		Template: templateName,
		Values:   s.Buffer.Clone(),
		Cursor:   int(s.Cursor),
	}
}

// LoadState rebuilds a session from a snapshot against the template's fields.
func LoadState(snap Snapshot, fields FieldOrder) State {
	s := NewState(fields)
	s.Buffer = FieldBuffer(snap.Values).Clone()
	s.Cursor = Cursor(snap.Cursor).Clamp(len(fields))
	return s
}

// Summary lists each field with its fill status, marking the active one.
func (s State) Summary() string {
	var sb strings.Builder
	for i, key := range s.Fields {
		marker := " "
		if Cursor(i) == s.Cursor {
			marker = ">"
		}
		status := "empty"
		if s.Buffer.Filled(key) {
			status = "filled"
		}
		sb.WriteString(marker + " " + key + " (" + status + ")\n")
	}
	return sb.String()
}
