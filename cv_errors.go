package convoker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// HelpAskedErr routes an action into the help screen through the error chain.
// The default error handler never prints it.
var HelpAskedErr = errors.New("help asked")

// ProgrammingError wraps errors caused by incorrect library setup or use.
// These are bugs in the code using convoker, not user input errors.
type ProgrammingError struct {
	msg string
}

func (e *ProgrammingError) Error() string {
	return e.msg
}

func NewProgrammingError(msg string) *ProgrammingError {
	return &ProgrammingError{msg: msg}
}

// UnknownOptionError is reported for a flag token no command declares.
type UnknownOptionError struct {
	Key   string
	Short bool
}

func (e *UnknownOptionError) Error() string {
	if e.Short {
		return fmt.Sprintf("unknown option: -%s", e.Key)
	}
	return fmt.Sprintf("unknown option: --%s", e.Key)
}

// MissingOptionValueError is reported when a value-taking option is the last
// token and nothing follows it.
type MissingOptionValueError struct {
	Key   string
	Short bool
}

func (e *MissingOptionValueError) Error() string {
	if e.Short {
		return fmt.Sprintf("option -%s requires a value", e.Key)
	}
	return fmt.Sprintf("option --%s requires a value", e.Key)
}

type MissingRequiredOptionError struct {
	Key   string
	Names []string
}

func (e *MissingRequiredOptionError) Error() string {
	return fmt.Sprintf("missing required option: %s", formatOptionNames(e.Names))
}

type MissingRequiredArgumentError struct {
	Key string
}

func (e *MissingRequiredArgumentError) Error() string {
	return fmt.Sprintf("missing required argument: <%s>", e.Key)
}

// TooManyArgumentsError carries every positional token nothing claimed.
type TooManyArgumentsError struct {
	Extra []string
}

func (e *TooManyArgumentsError) Error() string {
	return fmt.Sprintf("too many arguments: %s", strings.Join(e.Extra, " "))
}

// InputValidationError is reported when a Validator rejects a raw value.
type InputValidationError struct {
	Key    string
	Value  string
	Issues []string
}

func (e *InputValidationError) Error() string {
	return fmt.Sprintf("invalid value for %s: %s", e.Key, strings.Join(e.Issues, "; "))
}

// ConversionError is reported when a raw value doesn't parse as its basic kind.
type ConversionError struct {
	Key   string
	Value string
	Kind  Kind
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("invalid %s value for %s: %q", e.Kind, e.Key, e.Value)
}

func formatOptionNames(names []string) string {
	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, optionFlag(name))
	}
	return strings.Join(parts, ", ")
}

func optionFlag(name string) string {
	if len(name) == 1 {
		return "-" + name
	}
	return "--" + name
}

// joinErrors aggregates errs, or returns nil when there is nothing to report.
func joinErrors(errs []error) error {
	var merr *multierror.Error
	for _, err := range errs {
		if err == nil || errors.Is(err, HelpAskedErr) {
			continue
		}
		merr = multierror.Append(merr, err)
	}
	return merr.ErrorOrNil()
}
