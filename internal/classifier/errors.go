package classifier

import "errors"

// Classification errors. None are transient; callers fix the bank or the
// parameters before retrying.
var (
	// ErrEmptyBank indicates no same-faction candidates exist.
	ErrEmptyBank = errors.New("no same-faction entries in knowledge bank")

	// ErrInsufficientNeighbours indicates fewer than k same-faction candidates.
	ErrInsufficientNeighbours = errors.New("fewer same-faction entries than k")

	// ErrInvalidParameters indicates parameters rejected before any computation.
	ErrInvalidParameters = errors.New("invalid classification parameters")
)
