package assistant

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cvault/cvault/pkg/entity"
	"github.com/cvault/cvault/pkg/storage"
)

const welcomeMessage = "Hello! I'm your CV assistant. I've analyzed your CV and I'm here to help. What would you like to know?"

// systemPrompt frames the completion model as a CV advisor with the CV text
// inlined.
func systemPrompt(cvContent string) string {
	return fmt.Sprintf(
		"You are a helpful CV assistant. You help users improve their CVs and provide career advice. "+
			"You have access to the user's CV with the following content:\n\n%s\n\n"+
			"When providing feedback or answering questions:\n"+
			"1. Be specific and reference actual content from the CV\n"+
			"2. Provide constructive criticism when needed\n"+
			"3. Suggest concrete improvements\n"+
			"4. Keep responses concise but helpful\n"+
			"5. Focus on professional development",
		cvContent)
}

// Service runs the chat loop against the storage context and the completion
// client.
type Service struct {
	store  *storage.Context
	client *Client
	logger *zap.Logger
}

// NewService wires the chat service.
func NewService(store *storage.Context, client *Client, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, client: client, logger: logger}
}

// StartChat opens (or reopens) the session for a user/CV pair and stores the
// welcome message. The caller must own the CV, and the request counts
// against the rate limit.
func (s *Service) StartChat(ctx context.Context, userID, cvID string) (*entity.ChatMessage, error) {
	allowed, err := s.store.CheckAndUpdateLimit(userID)
	if err != nil {
		return nil, otherError("Failed to check rate limit")
	}
	if !allowed {
		return nil, invalidData("Rate limit exceeded")
	}

	cv, err := s.store.GetCV(cvID)
	if err != nil {
		if storage.IsKind(err, storage.KindNotFound) {
			return nil, notFound("CV not found")
		}
		return nil, otherError("Failed to load CV")
	}
	if cv.UserID != userID {
		return nil, accessDenied("Access denied to this CV")
	}

	session, err := s.store.CreateSession(userID, cvID)
	if err != nil {
		return nil, otherError("Failed to create chat session")
	}

	welcome := &entity.ChatMessage{
		ID:        fmt.Sprintf("msg_%s_welcome", session.ID),
		Content:   welcomeMessage,
		FromAI:    true,
		Timestamp: s.store.Now(),
	}
	if err := s.store.StoreMessage(welcome); err != nil {
		return nil, otherError("Failed to store welcome message")
	}
	s.logger.Info("chat started",
		zap.String("session_id", session.ID), zap.String("user_id", userID))
	return welcome, nil
}

// SendMessage stores the user's turn, asks the completion endpoint for a
// reply with the CV and prior history as context, and stores the reply.
func (s *Service) SendMessage(ctx context.Context, sessionID, userID, content string) (*entity.ChatMessage, error) {
	allowed, err := s.store.CheckAndUpdateLimit(userID)
	if err != nil {
		return nil, otherError("Failed to check rate limit")
	}
	if !allowed {
		return nil, invalidData("Rate limit exceeded")
	}

	session, err := s.store.GetSession(sessionID)
	if err != nil {
		if storage.IsKind(err, storage.KindNotFound) {
			return nil, notFound("Chat session not found")
		}
		return nil, otherError("Failed to load chat session")
	}
	if session.UserID != userID {
		return nil, accessDenied("Access denied to this chat session")
	}

	userMsg := &entity.ChatMessage{
		ID:        fmt.Sprintf("msg_%s_%d", sessionID, s.store.Now()),
		Content:   content,
		Timestamp: s.store.Now(),
	}
	if err := s.store.StoreMessage(userMsg); err != nil {
		return nil, otherError("Failed to store message")
	}
	if err := s.store.TouchSession(sessionID); err != nil {
		return nil, otherError("Failed to update session")
	}

	// History errors degrade to an empty context rather than failing the
	// turn.
	var history []Message
	if msgs, err := s.store.SessionMessages(sessionID); err == nil {
		for _, m := range msgs {
			role := "user"
			if m.FromAI {
				role = "assistant"
			}
			history = append(history, Message{Role: role, Content: m.Content})
		}
	}

	cv, err := s.store.GetCV(session.CVID)
	if err != nil {
		return nil, otherError("Failed to load CV for session")
	}

	messages := make([]Message, 0, len(history)+2)
	messages = append(messages, Message{Role: "system", Content: systemPrompt(cv.Content)})
	messages = append(messages, history...)
	messages = append(messages, Message{Role: "user", Content: content})

	reply, err := s.client.Complete(ctx, messages)
	if err != nil {
		s.logger.Error("completion failed", zap.Error(err))
		return nil, otherError("Failed to generate AI response")
	}

	aiMsg := &entity.ChatMessage{
		ID:        fmt.Sprintf("msg_%s_%d_ai", sessionID, s.store.Now()),
		Content:   reply,
		FromAI:    true,
		Timestamp: s.store.Now(),
	}
	if err := s.store.StoreMessage(aiMsg); err != nil {
		return nil, otherError("Failed to store AI response")
	}
	return aiMsg, nil
}

// History returns all messages of a session the caller owns, oldest first.
func (s *Service) History(sessionID, userID string) ([]*entity.ChatMessage, error) {
	session, err := s.store.GetSession(sessionID)
	if err != nil {
		if storage.IsKind(err, storage.KindNotFound) {
			return nil, notFound("Chat session not found")
		}
		return nil, otherError("Failed to load chat session")
	}
	if session.UserID != userID {
		return nil, accessDenied("Access denied to this chat session")
	}
	msgs, err := s.store.SessionMessages(sessionID)
	if err != nil {
		return nil, otherError("Failed to retrieve chat history")
	}
	return msgs, nil
}
