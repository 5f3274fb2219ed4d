package lexicon

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument matches every validation failure via errors.Is.
var ErrInvalidArgument = errors.New("invalid argument")

// Reason enumerates the validation failures. The value is the message.
type Reason string

const (
	ReasonNotDictionary       Reason = "A resource dictionary is expected"
	ReasonResourcePath        Reason = "Invalid resource path"
	ReasonResourceDefinition  Reason = "Resource definition invalid"
	ReasonMethod              Reason = "Invalid method"
	ReasonDoc                 Reason = "Resource documentation invalid"
	ReasonID                  Reason = "Resource id invalid"
	ReasonPresence            Reason = "Parameter presence indicator invalid"
	ReasonParamType           Reason = "Parameter type invalid"
	ReasonDefaultWhenRequired Reason = "parameter should not have a default value when required"
	ReasonPathInvalid         Reason = "path invalid"
)

// InvalidArgumentError reports a rejected input. Error returns the bare
// reason; Resource and Param locate the offending entry when known.
type InvalidArgumentError struct {
	Reason   Reason
	Resource string
	Param    string
}

func NewInvalidArgument(reason Reason) *InvalidArgumentError {
	return &InvalidArgumentError{Reason: reason}
}

func (e *InvalidArgumentError) Error() string { return string(e.Reason) }

func (e *InvalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// Detail includes the location, for people rather than for matching.
func (e *InvalidArgumentError) Detail() string {
	switch {
	case e.Resource != "" && e.Param != "":
		return fmt.Sprintf("%s (resource %q, parameter %q)", e.Reason, e.Resource, e.Param)
	case e.Resource != "":
		return fmt.Sprintf("%s (resource %q)", e.Reason, e.Resource)
	default:
		return string(e.Reason)
	}
}
