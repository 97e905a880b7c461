package engine

import "errors"

var (
	// ErrNoParser is returned by ClassifyRaw when no parser was configured.
	ErrNoParser = errors.New("no record parser configured")

	// ErrAmbiguous is returned by Learn when the decision was a tie.
	ErrAmbiguous = errors.New("classification is ambiguous")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("engine closed")
)
