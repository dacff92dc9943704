package commands

import "fmt"

// PublicError is an error whose message is shown directly to the invoker
type PublicError struct {
	msg string
}

func (p *PublicError) Error() string {
	return p.msg
}

func NewPublicError(a ...interface{}) error {
	return &PublicError{msg: fmt.Sprint(a...)}
}

func NewPublicErrorF(f string, a ...interface{}) error {
	return &PublicError{msg: fmt.Sprintf(f, a...)}
}
