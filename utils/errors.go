package utils

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyTerm         = errors.New("term is empty")
	ErrUnsupportedFormat = errors.New("no reader available for this data format")
	ErrBinaryContent     = errors.New("file content is not text")
	ErrFileTooLarge      = errors.New("file exceeds maximum size")
)

type ErrorType int

const (
	ConfigError ErrorType = iota
	ReadError
	LoadError
	FormatError
)

func (t ErrorType) String() string {
	switch t {
	case ConfigError:
		return "config"
	case ReadError:
		return "read"
	case LoadError:
		return "load"
	case FormatError:
		return "format"
	default:
		return "unknown"
	}
}

type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

func NewError(errType ErrorType, message string, err error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// IsErrorType reports whether err wraps an AppError of the given type.
func IsErrorType(err error, errType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errType
	}
	return false
}
