package engine

// BotMemory records the hypotheses a bot has already been asked, so an
// identical question is answered at most once. One BotMemory exists per bot
// per session; the session owns the map and hands the right entry to the
// revelation step, so no state leaks across sessions.
type BotMemory struct {
	seen map[string]struct{}
}

// NewBotMemory returns an empty memory.
func NewBotMemory() *BotMemory {
	return &BotMemory{seen: make(map[string]struct{})}
}

// Seen reports whether this exact hypothesis was already asked.
func (m *BotMemory) Seen(h Hypothesis) bool {
	_, ok := m.seen[h.Key()]
	return ok
}

// Record marks the hypothesis as asked. Recording happens before resolution,
// so even a no-reveal answer is never reprocessed.
func (m *BotMemory) Record(h Hypothesis) {
	m.seen[h.Key()] = struct{}{}
}

// Len returns the number of distinct hypotheses recorded.
func (m *BotMemory) Len() int { return len(m.seen) }
