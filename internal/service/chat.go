package service

import (
	"context"
	"errors"
	"log/slog"
	"unicode/utf8"

	"github.com/organizai/organizai/internal/assistant"
	"github.com/organizai/organizai/internal/metrics"
	"github.com/organizai/organizai/internal/model"
	"github.com/organizai/organizai/internal/sanitize"
)

const (
	maxChatMessages      = 20
	maxChatMessageLength = 4000
)

// Completer sends a conversation to a chat model.
type Completer interface {
	Complete(ctx context.Context, key, model string, messages []assistant.Message) (string, error)
}

// KeyResolver finds the user's own key for a provider.
type KeyResolver interface {
	ResolveKey(ctx context.Context, userID, provider string) (key, modelName string, err error)
}

// Snapshotter returns the data the assistant is grounded on.
type Snapshotter interface {
	Get(ctx context.Context, userID string) (*Dashboard, error)
}

// ChatService runs the finance assistant.
type ChatService struct {
	llm      Completer
	keys     KeyResolver
	snapshot Snapshotter
	metrics  metrics.Recorder
	logger   *slog.Logger
}

// NewChatService creates a new ChatService. snapshot may be nil.
func NewChatService(llm Completer, keys KeyResolver, snapshot Snapshotter, recorder metrics.Recorder, logger *slog.Logger) *ChatService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ChatService{llm: llm, keys: keys, snapshot: snapshot, metrics: recorder, logger: logger}
}

// Chat answers the last user message of a conversation.
func (s *ChatService) Chat(ctx context.Context, userID string, messages []assistant.Message) (*assistant.Message, error) {
	clean, err := cleanConversation(messages)
	if err != nil {
		return nil, err
	}

	var snap any
	if s.snapshot != nil {
		d, err := s.snapshot.Get(ctx, userID)
		if err != nil {
			s.logger.Warn("assistant snapshot unavailable", "user_id", userID, "error", err)
		} else {
			snap = d
		}
	}

	key, modelName, err := s.keys.ResolveKey(ctx, userID, model.ProviderGroq)
	if err != nil {
		return nil, err
	}

	conversation := make([]assistant.Message, 0, len(clean)+1)
	conversation = append(conversation, assistant.Message{Role: assistant.RoleSystem, Content: assistant.SystemPrompt(snap)})
	conversation = append(conversation, clean...)

	reply, err := s.llm.Complete(ctx, key, modelName, conversation)
	if err != nil {
		s.metrics.IncProviderCall(model.ProviderGroq, "error")
		if errors.Is(err, assistant.ErrNoAPIKey) {
			return nil, ErrNotConfigured
		}
		s.logger.Error("assistant completion failed", "user_id", userID, "error", err)
		return nil, &ProviderError{
			Provider: model.ProviderGroq,
			Message:  "The assistant is unavailable right now, please try again later.",
			Err:      err,
		}
	}
	s.metrics.IncProviderCall(model.ProviderGroq, "ok")

	return &assistant.Message{Role: assistant.RoleAssistant, Content: reply}, nil
}

// cleanConversation sanitizes client messages. Only user and assistant
// turns are accepted and the last one must come from the user.
func cleanConversation(messages []assistant.Message) ([]assistant.Message, error) {
	if len(messages) == 0 {
		return nil, invalid("messages", "is required")
	}
	if len(messages) > maxChatMessages {
		return nil, invalid("messages", "too many messages")
	}

	out := make([]assistant.Message, 0, len(messages))
	for _, m := range messages {
		if m.Role != assistant.RoleUser && m.Role != assistant.RoleAssistant {
			return nil, invalid("messages", "role must be user or assistant")
		}
		if utf8.RuneCountInString(m.Content) > maxChatMessageLength {
			return nil, invalid("messages", "message is too long")
		}
		content := sanitize.Text(m.Content, maxChatMessageLength)
		if content == "" {
			return nil, invalid("messages", "message cannot be empty")
		}
		out = append(out, assistant.Message{Role: m.Role, Content: content})
	}
	if out[len(out)-1].Role != assistant.RoleUser {
		return nil, invalid("messages", "last message must come from the user")
	}
	return out, nil
}
