package apperror

import (
	"errors"
)

const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
	ExitPartial = 3
)

type Error struct {
	Code     string
	Message  string
	ExitCode int
	Internal error
}

func (e *Error) Error() string {
	if e.Internal != nil {
		return e.Message + ": " + e.Internal.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Internal
}

var (
	ErrUnreadableSource = &Error{
		Code:     "unreadable_source",
		Message:  "The source image could not be opened or decoded",
		ExitCode: ExitFailure,
	}

	ErrInvalidLogo = &Error{
		Code:     "invalid_logo",
		Message:  "The logo image is missing or cannot be decoded",
		ExitCode: ExitFailure,
	}

	// ErrFontLoad is only logged. Font resolution always degrades to a built-in face.
	ErrFontLoad = &Error{
		Code:     "font_load_failure",
		Message:  "The requested font could not be loaded",
		ExitCode: ExitFailure,
	}

	ErrUnsafeOutputDirectory = &Error{
		Code:     "unsafe_output_directory",
		Message:  "Refusing to export into the source directory; choose another output directory",
		ExitCode: ExitUsage,
	}

	ErrInvalidOutputDirectory = &Error{
		Code:     "invalid_output_directory",
		Message:  "The output directory is missing or cannot be created",
		ExitCode: ExitUsage,
	}

	ErrWriteFailure = &Error{
		Code:     "write_failure",
		Message:  "The output image could not be encoded or written",
		ExitCode: ExitFailure,
	}

	ErrInvalidConfig = &Error{
		Code:     "invalid_config",
		Message:  "The watermark configuration is invalid",
		ExitCode: ExitUsage,
	}

	ErrNoInput = &Error{
		Code:     "no_input",
		Message:  "No supported image files were found",
		ExitCode: ExitUsage,
	}

	ErrPartialBatch = &Error{
		Code:     "partial_batch",
		Message:  "Some images could not be processed",
		ExitCode: ExitPartial,
	}

	ErrInternal = &Error{
		Code:     "internal_error",
		Message:  "An unexpected error occurred",
		ExitCode: ExitFailure,
	}
)

func New(code, message string, exitCode int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Wrap(err error, appErr *Error) *Error {
	return &Error{
		Code:     appErr.Code,
		Message:  appErr.Message,
		ExitCode: appErr.ExitCode,
		Internal: err,
	}
}

func WrapWithMessage(err error, code, message string, exitCode int) *Error {
	return &Error{
		Code:     code,
		Message:  message,
		ExitCode: exitCode,
		Internal: err,
	}
}

func Is(err error, target *Error) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}
	return ExitFailure
}

func SafeMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return ErrInternal.Message
}

func Code(err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ErrInternal.Code
}
