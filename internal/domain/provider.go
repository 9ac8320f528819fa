package domain

import "context"

// ChatProvider is the uniform "answer a question" capability every
// conversational backend implements. conversationKey scopes history: the
// group id for group chats, the sender id otherwise.
type ChatProvider interface {
	Name() string
	Answer(ctx context.Context, question, conversationKey string) (string, error)
}

// TextExtractor is the OCR collaborator: image bytes (base64) in, recognized
// text out. An empty string with a nil error means no usable text was found.
type TextExtractor interface {
	ExtractText(ctx context.Context, imageBase64 string) (string, error)
}
