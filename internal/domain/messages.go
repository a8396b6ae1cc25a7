package domain

// Message - исходящее сообщение. ThreadID == 0 означает основной чат.
type Message struct {
	Destination string
	Text        string
	ThreadID    int
}

// InboundMessage - входящее сообщение из мессенджера
type InboundMessage struct {
	ChatID   string
	ThreadID int
	IsTopic  bool
	FromID   int64
	Text     string
	Command  string // без "/" и "@botname", пусто если это не команда
}

// ReplyTo адресует ответ в тот же чат и, если нужно, в ту же тему.
func (m InboundMessage) ReplyTo(text string) Message {
	msg := Message{Destination: m.ChatID, Text: text}
	if m.IsTopic {
		msg.ThreadID = m.ThreadID
	}
	return msg
}
