package service

import "net/http"

// ServiceError is an application error that carries the HTTP status the
// error middleware should answer with.
type ServiceError struct {
	Code    int
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) StatusCode() int {
	return e.Code
}

var (
	ErrConversationNotFound = &ServiceError{Code: http.StatusNotFound, Message: "conversation not found"}
	ErrCourseNotFound       = &ServiceError{Code: http.StatusNotFound, Message: "course not found"}
	ErrInvalidLevel         = &ServiceError{Code: http.StatusBadRequest, Message: "invalid level"}
	ErrEmptyConversation    = &ServiceError{Code: http.StatusBadRequest, Message: "no user or assistant message to answer"}
)
