package assistant

import "fmt"

// ChatErrorKind is the narrow error taxonomy for the chat subsystem,
// separate from the storage taxonomy.
type ChatErrorKind uint8

const (
	ChatNotFound ChatErrorKind = iota
	ChatStorageFull
	ChatAccessDenied
	ChatInvalidData
	ChatOther
)

func (k ChatErrorKind) String() string {
	switch k {
	case ChatNotFound:
		return "not_found"
	case ChatStorageFull:
		return "storage_full"
	case ChatAccessDenied:
		return "access_denied"
	case ChatInvalidData:
		return "invalid_data"
	default:
		return "other"
	}
}

// ChatError is the typed error chat operations return.
type ChatError struct {
	Kind    ChatErrorKind
	Message string
}

func (e *ChatError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func notFound(msg string) *ChatError {
	return &ChatError{Kind: ChatNotFound, Message: msg}
}

func accessDenied(msg string) *ChatError {
	return &ChatError{Kind: ChatAccessDenied, Message: msg}
}

func invalidData(msg string) *ChatError {
	return &ChatError{Kind: ChatInvalidData, Message: msg}
}

func otherError(msg string) *ChatError {
	return &ChatError{Kind: ChatOther, Message: msg}
}
