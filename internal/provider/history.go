package provider

import "sync"

const maxHistoryTurns = 10

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// history keeps a bounded per-conversation message log so backends can answer
// with context. Keys are group ids or sender ids.
type history struct {
	mu    sync.Mutex
	turns map[string][]chatMessage
}

func newHistory() *history {
	return &history{turns: make(map[string][]chatMessage)}
}

// messages returns the system prompt (if any) plus the stored turns plus the
// new question, ready to send.
func (h *history) messages(key, systemPrompt, question string) []chatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()

	var msgs []chatMessage
	if systemPrompt != "" {
		msgs = append(msgs, chatMessage{Role: "system", Content: systemPrompt})
	}
	msgs = append(msgs, h.turns[key]...)
	msgs = append(msgs, chatMessage{Role: "user", Content: question})
	return msgs
}

// record stores a completed question/answer turn, trimming the oldest
// exchanges past the cap.
func (h *history) record(key, question, answer string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	turns := append(h.turns[key],
		chatMessage{Role: "user", Content: question},
		chatMessage{Role: "assistant", Content: answer},
	)
	if len(turns) > maxHistoryTurns*2 {
		turns = turns[len(turns)-maxHistoryTurns*2:]
	}
	h.turns[key] = turns
}
