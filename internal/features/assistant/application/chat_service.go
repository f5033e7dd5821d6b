package application

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"devcraft-studio/backend/internal/config"
	"devcraft-studio/backend/internal/features/assistant/domain"
	configdomain "devcraft-studio/backend/internal/features/config/domain"
	"devcraft-studio/backend/internal/llm"
	"devcraft-studio/backend/internal/storage"
)

var ErrEmptyMessage = errors.New("message is required")

// ChatService answers free-form questions about a project. Conversations are
// keyed by a session id chosen by the caller or issued on the first message.
type ChatService struct {
	messages *storage.Table[domain.Message]
	client   llm.Client
	configs  config.AppConfigService
	logger   *slog.Logger
	now      func() time.Time
}

func NewChatService(messages *storage.Table[domain.Message], client llm.Client, configs config.AppConfigService, logger *slog.Logger) *ChatService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatService{messages: messages, client: client, configs: configs, logger: logger, now: time.Now}
}

// Reply stores message in the conversation sessionID and answers it. An empty
// sessionID starts a new conversation. Model failures produce a canned reply.
func (s *ChatService) Reply(ctx context.Context, sessionID, message string) (domain.Reply, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.Reply{}, ErrEmptyMessage
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	cfg := config.LoadOrDefault(s.configs, s.logger)
	prompt := []llm.Message{{Role: llm.RoleSystem, Content: cfg.WithContext(cfg.RolePrompt(configdomain.RoleAssistant))}}
	for _, m := range s.History(sessionID) {
		prompt = append(prompt, llm.Message{Role: m.Role, Content: m.Content})
	}
	prompt = append(prompt, llm.Message{Role: llm.RoleUser, Content: message})
	s.store(sessionID, llm.RoleUser, message)

	answer, err := s.client.Complete(ctx, llm.Request{
		Messages:    prompt,
		Model:       cfg.ModelParams.Model,
		Temperature: cfg.ModelParams.Temperature,
		MaxTokens:   cfg.ModelParams.MaxTokens,
	})
	switch {
	case err != nil:
		s.logger.Warn("chat reply failed", "session_id", sessionID, "error", err)
		answer = domain.UnavailableReply
	case strings.TrimSpace(answer) == "":
		answer = domain.EmptyReply
	}
	s.store(sessionID, llm.RoleAssistant, answer)
	return domain.Reply{Message: answer, SessionID: sessionID}, nil
}

// History returns the conversation sessionID, oldest message first.
func (s *ChatService) History(sessionID string) []domain.Message {
	return s.messages.Filter(func(m domain.Message) bool {
		return m.SessionID == sessionID
	})
}

func (s *ChatService) store(sessionID, role, content string) {
	s.messages.Insert(func(id int64) domain.Message {
		return domain.Message{ID: id, SessionID: sessionID, Role: role, Content: content, CreatedAt: s.now()}
	})
}
