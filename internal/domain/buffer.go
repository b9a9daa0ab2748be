package domain

// BulletPrefix starts every dictated line.
const BulletPrefix = "- "

// FieldBuffer maps a placeholder key to its dictated lines.
// Operations return a new buffer; the receiver is never modified.
type FieldBuffer map[string][]string

// Clone returns a deep copy.
func (b FieldBuffer) Clone() FieldBuffer {
	out := make(FieldBuffer, len(b))
	for k, lines := range b {
		if lines == nil {
			out[k] = nil
			continue
		}
		out[k] = append(make([]string, 0, len(lines)), lines...)
	}
	return out
}

// Lines returns a copy of the lines stored under key.
func (b FieldBuffer) Lines(key string) []string {
	return append([]string(nil), b[key]...)
}

// Filled reports whether key holds at least one line.
func (b FieldBuffer) Filled(key string) bool {
	return len(b[key]) > 0
}

// Append splits text into dictation segments and adds one bullet line per segment.
func (b FieldBuffer) Append(key, text string) FieldBuffer {
	segments := SplitSegments(text)
	if len(segments) == 0 {
		return b.Clone()
	}
	out := b.Clone()
	for _, s := range segments {
		out[key] = append(out[key], BulletPrefix+s)
	}
	return out
}

// Clear empties the field.
func (b FieldBuffer) Clear(key string) FieldBuffer {
	out := b.Clone()
	out[key] = []string{}
	return out
}

// RemoveLastLine drops the newest line of the field, if any.
func (b FieldBuffer) RemoveLastLine(key string) FieldBuffer {
	out := b.Clone()
	if lines := out[key]; len(lines) > 0 {
		out[key] = lines[:len(lines)-1]
	}
	return out
}
