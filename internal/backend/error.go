package backend

import "fmt"

const genericMessage = "đã có lỗi xảy ra, vui lòng thử lại"

// Error carries the backend's rejection message and HTTP status so callers
// can surface the backend's own wording, with a generic fallback when the
// body had none.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("backend rejected request (%d): %s", e.StatusCode, e.Message)
}

// UserMessage is the text safe to show the user.
func (e *Error) UserMessage() string {
	if e.Message == "" {
		return genericMessage
	}
	return e.Message
}
