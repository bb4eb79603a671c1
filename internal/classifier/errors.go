package classifier

import "errors"

var (
	// ErrModelNotLoaded is returned by inference before any model pair is installed.
	ErrModelNotLoaded = errors.New("model not loaded")
	// ErrModelLoad wraps every reason a persisted model pair could not be used.
	ErrModelLoad = errors.New("failed to load model")
	// ErrModelSave wraps a failure to persist a freshly trained pair.
	ErrModelSave = errors.New("failed to save model")
)
