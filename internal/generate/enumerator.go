// Package generate implements exhaustive candidate generation: the odometer
// enumerator, the structural/constraint filter, the multi-length sequence and
// the pausable background controller.
package generate

import (
	"fmt"
	"math/big"

	"github.com/uberswe/domaingen/pkg/domain"
)

// Enumerator yields every string of one length over an alphabet in odometer
// order. The rightmost position moves fastest.
type Enumerator struct {
	alphabet []byte
	digits   []int
	done     bool
	buf      []byte
}

// NewEnumerator starts at the first string of the given length
func NewEnumerator(alphabet string, length int) *Enumerator {
	e := &Enumerator{
		alphabet: []byte(alphabet),
		digits:   make([]int, max(length, 0)),
		buf:      make([]byte, max(length, 0)),
	}
	e.done = length < 1 || len(alphabet) == 0
	return e
}

// ResumeEnumerator continues from a cursor previously taken with Cursor
func ResumeEnumerator(alphabet string, c domain.Cursor) (*Enumerator, error) {
	if c.Length < 1 || len(c.Digits) != c.Length {
		return nil, fmt.Errorf("cursor has %d digits for length %d", len(c.Digits), c.Length)
	}
	for i, d := range c.Digits {
		if d < 0 || d >= len(alphabet) {
			return nil, fmt.Errorf("cursor digit %d at position %d is outside alphabet of size %d", d, i, len(alphabet))
		}
	}

	e := NewEnumerator(alphabet, c.Length)
	copy(e.digits, c.Digits)
	e.done = c.Exhausted
	return e, nil
}

// Next returns the string at the cursor and advances it
func (e *Enumerator) Next() (string, bool) {
	if e.done {
		return "", false
	}
	for i, d := range e.digits {
		e.buf[i] = e.alphabet[d]
	}
	s := string(e.buf)
	e.advance()
	return s, true
}

// advance increments the rightmost digit and carries leftwards
func (e *Enumerator) advance() {
	radix := len(e.alphabet)
	pos := len(e.digits) - 1
	for pos >= 0 {
		e.digits[pos]++
		if e.digits[pos] < radix {
			return
		}
		e.digits[pos] = 0
		pos--
	}
	e.done = true
}

// Cursor returns a copy of the position of the next string
func (e *Enumerator) Cursor() domain.Cursor {
	return domain.Cursor{
		Length:    len(e.digits),
		Digits:    append([]int(nil), e.digits...),
		Exhausted: e.done,
	}
}

// Total is the number of strings of the given length over radix symbols
func Total(radix, length int) *big.Int {
	return new(big.Int).Exp(big.NewInt(int64(radix)), big.NewInt(int64(length)), nil)
}
