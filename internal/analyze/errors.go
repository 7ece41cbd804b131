package analyze

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"radar-backend/internal/analyses"
	"radar-backend/internal/llm"
	"radar-backend/internal/llm/openai"
)

// ErrInvalidRequest signals missing required request fields. No
// persistence happens before this check.
var ErrInvalidRequest = errors.New("inputText, userId and userEmail are required")

func classifyFailure(err error) string {
	if err == nil {
		return analyses.ErrorCodeInternal
	}
	var missing *llm.MissingCapabilityError
	if errors.As(err, &missing) {
		return analyses.ErrorCodeCapability
	}
	var runFailed *openai.RunFailedError
	if errors.As(err, &runFailed) {
		return analyses.ErrorCodeRunFailed
	}
	if errors.Is(err, openai.ErrRunTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return analyses.ErrorCodeRunTimeout
	}
	if errors.Is(err, ErrInvalidRequest) {
		return analyses.ErrorCodeValidation
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "submission") || strings.Contains(msg, "analysis") || strings.Contains(msg, "action item") {
		return analyses.ErrorCodeStorage
	}
	return analyses.ErrorCodeInternal
}

func sanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	msg = strings.ReplaceAll(msg, "\r", " ")
	msg = strings.TrimSpace(msg)
	const maxLen = 500
	if len(msg) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	return msg
}
