package llm

import "errors"

// ParseError is returned when a model reply cannot be turned into the fields a
// prompt asked for. Msg is written for the model, so callers can send it back
// verbatim when re-prompting.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string {
	return e.Msg
}

func IsParseError(err error) bool {
	var pe *ParseError
	return errors.As(err, &pe)
}
