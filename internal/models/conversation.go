package models

// Sender identifies who authored a message. It is a closed set: every
// persisted message is either from the end user or from the assistant.
type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// Conversation is one chat thread. CreatedAt is set once at creation and
// never changes; LastMessage caches the text of the most recently written
// message and is empty until the first write.
type Conversation struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	CreatedAt   int64  `json:"createdAt"` // epoch milliseconds
	LastMessage string `json:"lastMessage"`
}

// Message belongs to exactly one conversation. Timestamp (epoch
// milliseconds) orders messages within a conversation; insertion order
// breaks ties.
type Message struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversationId"`
	Sender         Sender `json:"sender"`
	Text           string `json:"text"`
	Timestamp      int64  `json:"timestamp"`
}

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"sessionId,omitempty"`
}

type ChatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}
