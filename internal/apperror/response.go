package apperror

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

func Response(err error) ErrorResponse {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Wrap(err, ErrInternal)
	}

	resp := ErrorResponse{
		Error:   appErr.Code,
		Code:    appErr.Code,
		Message: appErr.Message,
	}
	if appErr.Internal != nil {
		resp.Detail = appErr.Internal.Error()
	}
	return resp
}

// WriteJSON logs err and writes its ErrorResponse to w.
func WriteJSON(w io.Writer, log *slog.Logger, err error) error {
	resp := Response(err)

	if resp.Detail != "" {
		log.Error("command failed", "code", resp.Code, "internal_error", resp.Detail)
	} else {
		log.Warn("command failed", "code", resp.Code)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}
