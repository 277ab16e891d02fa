package conversation

import "context"

// Roles used on the provider side. Transcript roles (RoleUser, RoleModel)
// map onto these in turnRequest.
const (
	ChatRoleSystem    = "system"
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ChatMessage is one turn sent to a generation provider.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// TokenUsage is reported per consultation turn.
type TokenUsage struct {
	InputTokens  int32
	OutputTokens int32
	TotalTokens  int32
}

// LLMRequest is one consultation turn: the session's system instruction,
// the visible conversation so far and the client's newest message last.
type LLMRequest struct {
	Model       string
	System      []string
	Messages    []ChatMessage
	MaxTokens   int32
	Temperature float32
	TopP        float32
}

type LLMResponse struct {
	Text       string
	Usage      TokenUsage
	StopReason string
}

// LLMClient is the conversational generation service boundary. Providers
// wrap ErrGenerationRejected for authentication and validation failures so
// callers can tell them apart from transient ones.
type LLMClient interface {
	Complete(ctx context.Context, req LLMRequest) (LLMResponse, error)
}

// turnRequest builds the request for one client message. Notices, save
// notices and data blocks never reach the provider.
func turnRequest(instruction string, history []Message, userText string) LLMRequest {
	turns := chatTurns(history)
	messages := make([]ChatMessage, 0, len(turns)+1)
	for _, msg := range turns {
		role := ChatRoleUser
		if msg.Role == RoleModel {
			role = ChatRoleAssistant
		}
		messages = append(messages, ChatMessage{Role: role, Content: msg.Text})
	}
	messages = append(messages, ChatMessage{Role: ChatRoleUser, Content: userText})

	var system []string
	if instruction != "" {
		system = []string{instruction}
	}
	return LLMRequest{System: system, Messages: messages}
}
