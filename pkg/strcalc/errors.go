package strcalc

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidArgument is matched by every error returned from Add and Parse.
var ErrInvalidArgument = errors.New("invalid argument")

// NegativeNumbersError reports all negative numbers found in the input, in
// order. Numbers holds their decimal text so values beyond int range are kept.
type NegativeNumbersError struct {
	Numbers []string
}

func (e *NegativeNumbersError) Error() string {
	return "negatives not allowed: " + strings.Join(e.Numbers, ", ")
}

func (e *NegativeNumbersError) Is(target error) bool { return target == ErrInvalidArgument }

// SyntaxError describes malformed input. Offset is the byte offset into the
// original text where the problem was found.
type SyntaxError struct {
	Offset int
	Token  string
	Msg    string
}

func (e *SyntaxError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("%s at offset %d: %q", e.Msg, e.Offset, e.Token)
	}
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Offset)
}

func (e *SyntaxError) Is(target error) bool { return target == ErrInvalidArgument }
