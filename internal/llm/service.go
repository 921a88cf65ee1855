package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/luminagear/lumina-support/internal/db"
	"github.com/luminagear/lumina-support/internal/models"
	"github.com/luminagear/lumina-support/internal/prompt"
	"go.uber.org/zap"
)

// MaxMessageChars caps the trimmed length of an inbound chat message.
const MaxMessageChars = 2000

// Title length for conversations created from a first message.
const titleChars = 30

// FallbackReply is persisted when the provider returns empty text.
const FallbackReply = "I'm sorry, I couldn't generate a response. Please try again."

// Service turns a raw user message into a persisted, provider-generated
// reply. Each request runs to completion or failure on its own; the store
// is the only shared state.
type Service struct {
	provider      Provider
	store         *db.Store
	logger        *zap.Logger
	profile       prompt.StoreProfile
	params        GenerationParams
	historyWindow int
	now           func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithHistoryWindow sets how many recent messages are sent to the provider.
func WithHistoryWindow(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.historyWindow = n
		}
	}
}

// WithClock overrides the time source, used by tests to control ids and
// timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithStoreProfile overrides the static store context.
func WithStoreProfile(p prompt.StoreProfile) Option {
	return func(s *Service) { s.profile = p }
}

// WithGenerationParams overrides temperature and output token cap.
func WithGenerationParams(p GenerationParams) Option {
	return func(s *Service) { s.params = p }
}

func NewService(provider Provider, store *db.Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		provider:      provider,
		store:         store,
		logger:        logger,
		profile:       prompt.DefaultStoreProfile,
		params:        DefaultGenerationParams,
		historyWindow: 20,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateReply validates the message, resolves the session, persists the
// user message, calls the provider with the assembled prompt, and persists
// the reply. On provider failure the already-saved user message stays put
// so the conversation survives for a retry.
func (s *Service) GenerateReply(ctx context.Context, text, sessionID string) (*models.ChatResponse, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, ErrEmptyMessage
	}
	if len([]rune(trimmed)) > MaxMessageChars {
		return nil, ErrMessageTooLong
	}

	if sessionID == "" {
		now := s.now().UnixMilli()
		sessionID = fmt.Sprintf("sess_%d", now)
		if _, err := s.store.CreateConversation(sessionID, deriveTitle(trimmed), now); err != nil {
			return nil, fmt.Errorf("failed to create conversation: %w", err)
		}
		s.logger.Info("created conversation", zap.String("sessionId", sessionID))
	}

	// The user message is saved before the provider call so a provider
	// failure never loses the user's input.
	userTime := s.now().UnixMilli()
	userMsg := &models.Message{
		ID:             fmt.Sprintf("msg_u_%d", userTime),
		ConversationID: sessionID,
		Sender:         models.SenderUser,
		Text:           trimmed,
		Timestamp:      userTime,
	}
	if err := s.store.SaveMessage(userMsg); err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	history, err := s.store.RecentMessages(sessionID, s.historyWindow)
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	contents := prompt.Assemble(prompt.BuildStoreContext(s.profile), history, trimmed)
	s.logger.Debug("assembled prompt",
		zap.String("sessionId", sessionID),
		zap.Int("segments", len(contents)),
		zap.Int("tokenEstimate", prompt.EstimateTokens(contents)))

	reply, err := s.provider.Complete(ctx, prompt.SystemInstruction, contents, s.params)
	if err != nil {
		perr := ClassifyProviderError(err)
		s.logger.Error("provider call failed",
			zap.String("sessionId", sessionID),
			zap.String("kind", string(perr.Kind)),
			zap.Error(perr.Err))
		return nil, perr
	}
	if reply == "" {
		reply = FallbackReply
	}

	replyTime := s.now().UnixMilli()
	assistantMsg := &models.Message{
		ID:             fmt.Sprintf("msg_a_%d", replyTime),
		ConversationID: sessionID,
		Sender:         models.SenderAssistant,
		Text:           reply,
		Timestamp:      replyTime,
	}
	if err := s.store.SaveMessage(assistantMsg); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	return &models.ChatResponse{Reply: reply, SessionID: sessionID}, nil
}

// deriveTitle labels a new conversation with the first 30 characters of
// its opening message plus an ellipsis marker.
func deriveTitle(text string) string {
	runes := []rune(text)
	if len(runes) > titleChars {
		runes = runes[:titleChars]
	}
	return string(runes) + "..."
}
