package agent

import "errors"

// ErrEmptyPrompt marks invalid-input failures: the caller sent nothing for
// the model to answer.
var ErrEmptyPrompt = errors.New("prompt must not be empty")

// ErrBackendUnavailable marks failures of the hosted model backend. Callers
// can distinguish it from invalid input via errors.Is.
var ErrBackendUnavailable = errors.New("model backend unavailable")
