package domain

import "time"

// Replies used when the model gives nothing usable.
const (
	EmptyReply       = "I'm sorry, I couldn't generate a response."
	UnavailableReply = "I'm having trouble connecting right now. Please try again in a moment."
)

// Message is one turn of a chat conversation.
type Message struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Reply is the assistant's answer to a message.
type Reply struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId"`
}
