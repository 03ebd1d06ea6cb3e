package storage

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cvault/cvault/pkg/entity"
	"github.com/cvault/cvault/pkg/store"
)

// CreateSession stores the session for a user/CV pair. The id is derived
// deterministically, so starting a new chat on the same CV overwrites the
// prior session record.
func (c *Context) CreateSession(userID, cvID string) (*entity.ChatSession, error) {
	now := c.clock()
	session := &entity.ChatSession{
		ID:              entity.SessionID(userID, cvID),
		UserID:          userID,
		CVID:            cvID,
		CreatedAt:       now,
		LastInteraction: now,
	}
	if _, err := c.sessions.Insert(entity.DeriveKey(session.ID), session.Encode()); err != nil {
		return nil, SystemError("store chat session", err)
	}
	c.logger.Info("chat session created",
		zap.String("session_id", session.ID), zap.String("user_id", userID))
	return session, nil
}

// GetSession loads a session by id.
func (c *Context) GetSession(id string) (*entity.ChatSession, error) {
	data, err := c.sessions.Get(entity.DeriveKey(id))
	if err == store.ErrKeyNotFound {
		return nil, NotFound("Chat session not found")
	}
	if err != nil {
		return nil, SystemError("load chat session", err)
	}
	session, err := entity.DecodeChatSession(data)
	if err != nil {
		return nil, SystemError("decode chat session", err)
	}
	return session, nil
}

// TouchSession refreshes a session's last-interaction timestamp.
func (c *Context) TouchSession(id string) error {
	session, err := c.GetSession(id)
	if err != nil {
		return err
	}
	session.LastInteraction = c.clock()
	if _, err := c.sessions.Insert(entity.DeriveKey(id), session.Encode()); err != nil {
		return SystemError("store chat session", err)
	}
	return nil
}

// StoreMessage persists one chat turn. The message id carries the session
// binding as a prefix; SessionMessages relies on it. Message keys are hashed
// because the ids exceed the key budget.
func (c *Context) StoreMessage(msg *entity.ChatMessage) error {
	if _, err := c.messages.Insert(entity.HashKey(msg.ID), msg.Encode()); err != nil {
		return SystemError("store chat message", err)
	}
	return nil
}

// SessionMessages returns every message bound to the session, ordered by
// timestamp. Membership is an id-prefix match over a full partition scan,
// not a foreign key.
func (c *Context) SessionMessages(sessionID string) ([]*entity.ChatMessage, error) {
	prefix := "msg_" + sessionID + "_"
	var out []*entity.ChatMessage
	err := c.messages.Iterate(func(_ entity.Key, data []byte) error {
		msg, err := entity.DecodeChatMessage(data)
		if err != nil {
			return err
		}
		if strings.HasPrefix(msg.ID, prefix) {
			out = append(out, msg)
		}
		return nil
	})
	if err != nil {
		return nil, SystemError("scan chat messages", err)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp < out[j].Timestamp
	})
	return out, nil
}
