package entity

// ChatSessionSize is the encoded length of a ChatSession record. The id
// field carries the wider chat budget because session ids compose the owner
// and CV identifiers.
const ChatSessionSize = ChatIDSize + 2*FixedStringSize + 2*timestampSize

// ChatMessageSize is the encoded length of a ChatMessage record.
const ChatMessageSize = ChatIDSize + MessageSize + 1 + timestampSize

// ChatSession ties a user to an assistant conversation about one CV. The id
// is derived deterministically from owner and CV, so starting a new chat on
// the same CV overwrites the prior session.
type ChatSession struct {
	ID              string `json:"id"`
	UserID          string `json:"user_id"`
	CVID            string `json:"cv_id"`
	CreatedAt       uint64 `json:"created_at"`
	LastInteraction uint64 `json:"last_interaction"`
}

// SessionID derives the deterministic session identifier for a user/CV pair.
func SessionID(userID, cvID string) string {
	return "chat_" + userID + "_" + cvID
}

// Encode serializes the session to its fixed ChatSessionSize layout.
func (s *ChatSession) Encode() []byte {
	b := newRecordBuf(ChatSessionSize)
	b.putString(s.ID, ChatIDSize)
	b.putString(s.UserID, FixedStringSize)
	b.putString(s.CVID, FixedStringSize)
	b.putUint64(s.CreatedAt)
	b.putUint64(s.LastInteraction)
	return b.data
}

// DecodeChatSession rebuilds a session from its fixed layout.
func DecodeChatSession(data []byte) (*ChatSession, error) {
	if len(data) != ChatSessionSize {
		return nil, ErrBadRecord
	}
	b := wrapRecordBuf(data)
	s := &ChatSession{}
	s.ID = b.getString(ChatIDSize)
	s.UserID = b.getString(FixedStringSize)
	s.CVID = b.getString(FixedStringSize)
	s.CreatedAt = b.getUint64()
	s.LastInteraction = b.getUint64()
	return s, nil
}

// ChatMessage is one turn in a session. Messages carry their session binding
// inside the id ("msg_<session>_..."); retrieval is an id-prefix scan, not a
// true foreign key.
type ChatMessage struct {
	ID        string `json:"id"`
	Content   string `json:"content"`
	FromAI    bool   `json:"is_ai"`
	Timestamp uint64 `json:"timestamp"`
}

// Encode serializes the message to its fixed ChatMessageSize layout.
func (m *ChatMessage) Encode() []byte {
	b := newRecordBuf(ChatMessageSize)
	b.putString(m.ID, ChatIDSize)
	b.putString(m.Content, MessageSize)
	b.putBool(m.FromAI)
	b.putUint64(m.Timestamp)
	return b.data
}

// DecodeChatMessage rebuilds a message from its fixed layout.
func DecodeChatMessage(data []byte) (*ChatMessage, error) {
	if len(data) != ChatMessageSize {
		return nil, ErrBadRecord
	}
	b := wrapRecordBuf(data)
	m := &ChatMessage{}
	m.ID = b.getString(ChatIDSize)
	m.Content = b.getString(MessageSize)
	m.FromAI = b.getBool()
	m.Timestamp = b.getUint64()
	return m, nil
}
