package api

// ChatInput is the chat request body
type ChatInput struct {
	Message string `json:"message"`
	UserID  string `json:"userId,omitempty"`
}

// ChatReply is the chat response. UserID is set only when a new user
// was created for this conversation.
type ChatReply struct {
	Reply  string `json:"reply"`
	UserID string `json:"userId,omitempty"`
}

// JournalInput is the journal sync request body. Entry may be an object
// or a bare string.
type JournalInput struct {
	UserID string      `json:"userId"`
	Entry  interface{} `json:"entry"`
}

// JournalResult is the journal sync response
type JournalResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// DeleteResult confirms a resource deletion
type DeleteResult struct {
	Message string `json:"message"`
}
