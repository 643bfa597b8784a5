package playback

// TriggerLog keeps the most recent trigger descriptions, newest first.
type TriggerLog struct {
	limit   int
	entries []string
}

// NewTriggerLog returns a log holding at most limit entries.
func NewTriggerLog(limit int) *TriggerLog {
	if limit < 1 {
		limit = 1
	}
	return &TriggerLog{limit: limit}
}

// Add records entry as the newest line, dropping the oldest beyond the limit.
func (l *TriggerLog) Add(entry string) {
	entries := make([]string, 0, min(len(l.entries)+1, l.limit))
	entries = append(entries, entry)
	for _, e := range l.entries {
		if len(entries) == l.limit {
			break
		}
		entries = append(entries, e)
	}
	l.entries = entries
}

// Entries returns a copy of the log, newest first.
func (l *TriggerLog) Entries() []string {
	out := make([]string, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *TriggerLog) Len() int { return len(l.entries) }

// Clear empties the log.
func (l *TriggerLog) Clear() { l.entries = nil }
