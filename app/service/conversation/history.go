package conversation

import (
	"fmt"
	"strings"
	"time"
)

// Only the recent tail of a chat is relevant for extraction.
const maxHistoryLen = 20

type chatMessage struct {
	Sender    string
	Text      string
	Timestamp time.Time
}

type chatHistory struct {
	messages []chatMessage
}

func (h *chatHistory) add(msg chatMessage) {
	h.messages = append(h.messages, msg)
	if len(h.messages) > maxHistoryLen {
		h.messages = h.messages[len(h.messages)-maxHistoryLen:]
	}
}

func (h *chatHistory) format() string {
	if len(h.messages) == 0 {
		return "(empty)"
	}

	var sb strings.Builder
	for _, msg := range h.messages {
		sb.WriteString(fmt.Sprintf("[%s] %s: %s\n",
			msg.Timestamp.Format("15:04"), msg.Sender, msg.Text))
	}

	return sb.String()
}
