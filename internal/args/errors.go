package args

import (
	"errors"
	"fmt"
)

var (
	// ErrDuplicateOption indicates --bin, --target, or --manifest-path appeared twice.
	ErrDuplicateOption = errors.New("multiple arguments of same type provided")
	// ErrInvalidPath indicates a --manifest-path value could not be canonicalized.
	ErrInvalidPath = errors.New("--manifest-path invalid")
	// ErrIllegalCombination indicates --bin was passed to the test subcommand.
	ErrIllegalCombination = errors.New("no `--bin` argument allowed for `bootimage test`")
	// ErrAlreadySet indicates a mutator was called for a value that is already present.
	ErrAlreadySet = errors.New("value already set")
)

// OptionError reports which option triggered a parse failure.
type OptionError struct {
	Option string
	Value  string
	Err    error
}

func (e *OptionError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s: %v", e.Option, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Option, e.Value, e.Err)
}

func (e *OptionError) Unwrap() error {
	return e.Err
}

// IsUsage reports whether err stems from malformed command-line input.
func IsUsage(err error) bool {
	return errors.Is(err, ErrDuplicateOption) ||
		errors.Is(err, ErrInvalidPath) ||
		errors.Is(err, ErrIllegalCombination)
}
