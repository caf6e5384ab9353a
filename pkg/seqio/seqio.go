// Package seqio reads and writes integer sequences in the "n, then n
// integers" whitespace-separated format.
package seqio

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// maxTokenBytes bounds a single token. Any valid int64 fits in far less.
const maxTokenBytes = 64 * 1024

// Sentinel errors. Every malformed-input error wraps ErrInput.
var (
	// ErrInput is the root of all malformed-input errors.
	ErrInput = errors.New("invalid input")
	// ErrNotInteger indicates a token that does not parse as a 64-bit integer.
	ErrNotInteger = fmt.Errorf("%w: not an integer", ErrInput)
	// ErrLength indicates a declared length that is negative or too large.
	ErrLength = fmt.Errorf("%w: length out of range", ErrInput)
	// ErrShortSequence indicates fewer integers than the declared length.
	ErrShortSequence = fmt.Errorf("%w: fewer integers than declared", ErrInput)
)

// InputError describes a malformed input at a token position.
type InputError struct {
	// Token is the 1-based token index, counting the length token.
	Token int
	// Text is the offending token, empty when input ended early.
	Text string
	// Err is one of ErrNotInteger, ErrLength or ErrShortSequence.
	Err error
}

func (e *InputError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("token %d: %v", e.Token, e.Err)
	}

	return fmt.Sprintf("token %d %q: %v", e.Token, e.Text, e.Err)
}

func (e *InputError) Unwrap() error {
	return e.Err
}

// Read consumes a declared length followed by that many integers from r.
// Input with no tokens at all is the empty sequence. Tokens past the
// declared length are ignored. The whole sequence is read before Read
// returns, so callers never start work on a partial input.
func Read(r io.Reader, maxLen int) ([]int64, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, bufio.MaxScanTokenSize), maxTokenBytes)
	scanner.Split(bufio.ScanWords)

	if !scanner.Scan() {
		scanErr := scanner.Err()
		if scanErr != nil {
			return nil, fmt.Errorf("read input: %w", scanErr)
		}

		return []int64{}, nil
	}

	lengthText := scanner.Text()

	n, err := strconv.ParseInt(lengthText, 10, 64)
	if err != nil {
		return nil, &InputError{Token: 1, Text: lengthText, Err: ErrNotInteger}
	}

	if n < 0 || n > int64(maxLen) {
		return nil, &InputError{
			Token: 1,
			Text:  lengthText,
			Err:   fmt.Errorf("%w: %d not in [0, %d]", ErrLength, n, maxLen),
		}
	}

	seq := make([]int64, 0, n)

	for i := range int(n) {
		if !scanner.Scan() {
			scanErr := scanner.Err()
			if scanErr != nil {
				return nil, fmt.Errorf("read input: %w", scanErr)
			}

			return nil, &InputError{
				Token: i + 2,
				Err:   fmt.Errorf("%w: got %d of %d", ErrShortSequence, i, n),
			}
		}

		text := scanner.Text()

		value, parseErr := strconv.ParseInt(text, 10, 64)
		if parseErr != nil {
			return nil, &InputError{Token: i + 2, Text: text, Err: ErrNotInteger}
		}

		seq = append(seq, value)
	}

	return seq, nil
}

// Parse reads a sequence from a string.
func Parse(text string, maxLen int) ([]int64, error) {
	return Read(strings.NewReader(text), maxLen)
}

// Write formats seq as its length on the first line and the elements on the
// second.
func Write(w io.Writer, seq []int64) error {
	var sb strings.Builder

	sb.WriteString(strconv.Itoa(len(seq)))
	sb.WriteByte('\n')

	for i, v := range seq {
		if i > 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(strconv.FormatInt(v, 10))
	}

	if len(seq) > 0 {
		sb.WriteByte('\n')
	}

	_, err := io.WriteString(w, sb.String())
	if err != nil {
		return fmt.Errorf("write sequence: %w", err)
	}

	return nil
}

// Digest is a content hash of a sequence, usable as a map key.
type Digest [sha256.Size]byte

// Sum hashes seq. Sequences that differ in length or any element hash
// differently.
func Sum(seq []int64) Digest {
	hasher := sha256.New()

	var buf [8]byte

	binary.BigEndian.PutUint64(buf[:], uint64(len(seq)))
	hasher.Write(buf[:])

	for _, v := range seq {
		binary.BigEndian.PutUint64(buf[:], uint64(v))
		hasher.Write(buf[:])
	}

	var d Digest

	copy(d[:], hasher.Sum(nil))

	return d
}
