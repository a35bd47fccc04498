package lexer

import (
	"errors"
	"fmt"
)

// ErrExhausted is returned by Next once the end of the text was signaled.
var ErrExhausted = errors.New("lexer: Next called after end of text")

// errMidToken guards the between-tokens invariant; Next never leaves the
// machine inside a token.
var errMidToken = errors.New("lexer: Next called while a token is open")

// PreconditionError reports a call to Next in a state that does not allow it.
type PreconditionError struct {
	State string
	Err   error
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("%v (state %s)", e.Err, e.State)
}

func (e *PreconditionError) Unwrap() error { return e.Err }
