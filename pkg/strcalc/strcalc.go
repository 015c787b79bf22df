// Package strcalc implements the string calculator kata: it sums the integers
// found in a delimited string.
//
// The default delimiters are "," and "\n". An optional header overrides them:
//
//	//;\n1;2             single-character delimiter
//	//[***]\n1***2***3   delimiter of any length
//	//[*][%]\n1*2%3      several delimiters
//
// Numbers above the ceiling (1000 by default) are ignored and negative numbers
// are rejected. All functions are pure and safe for concurrent use.
package strcalc

import (
	"errors"
	"strconv"
	"strings"
)

// DefaultCeiling is the largest number that still counts towards a sum.
const DefaultCeiling = 1000

// Summer sums a delimited string of integers.
type Summer interface {
	Add(text string) (int, error)
}

// Calculator is a Summer with a configurable ceiling. The zero value uses
// DefaultCeiling.
type Calculator struct {
	Ceiling int
}

// Result is the outcome of a successful evaluation.
type Result struct {
	Sum        int
	Delimiters []string
	// Ignored holds the terms that were above the ceiling.
	Ignored []string
}

var std = Calculator{}

// Add sums text using DefaultCeiling.
func Add(text string) (int, error) { return std.Add(text) }

func (c Calculator) ceiling() int {
	if c.Ceiling <= 0 {
		return DefaultCeiling
	}
	return c.Ceiling
}

// Add returns the sum of the numbers in text.
func (c Calculator) Add(text string) (int, error) {
	res, err := c.Evaluate(text)
	if err != nil {
		return 0, err
	}
	return res.Sum, nil
}

// Evaluate parses text and returns the sum together with the delimiters that
// were in effect.
func (c Calculator) Evaluate(text string) (Result, error) {
	expr, err := Parse(text)
	if err != nil {
		return Result{}, err
	}
	limit := c.ceiling()
	res := Result{Delimiters: expr.Delimiters}
	var negatives []string
	for _, t := range expr.Terms {
		tok := strings.TrimSpace(t.Text)
		n, err := strconv.Atoi(tok)
		if err != nil {
			if !errors.Is(err, strconv.ErrRange) {
				return Result{}, &SyntaxError{Offset: t.Offset, Token: tok, Msg: "invalid number"}
			}
			// out of int range: still a number, just too big or too small
			if strings.HasPrefix(tok, "-") {
				negatives = append(negatives, tok)
			} else {
				res.Ignored = append(res.Ignored, tok)
			}
			continue
		}
		switch {
		case n < 0:
			negatives = append(negatives, strconv.Itoa(n))
		case n > limit:
			res.Ignored = append(res.Ignored, tok)
		default:
			res.Sum += n
		}
	}
	if len(negatives) > 0 {
		return Result{}, &NegativeNumbersError{Numbers: negatives}
	}
	return res, nil
}
