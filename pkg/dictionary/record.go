// Package dictionary loads phrase corpora from disk and turns them into the
// normalized records the completer is built from.
//
// Two on-disk formats are understood. Text corpora hold one record per line,
// either "phrase" or "phrase:frequency". Binary dictionaries hold a
// little-endian int32 entry count followed by entries of a uint16 phrase
// length, the UTF-8 phrase bytes and a uint32 frequency.
package dictionary

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/bastiangx/wordrank/internal/utils"
)

// DefaultFrequency is assigned to lines that carry no frequency digits.
const DefaultFrequency = 1

// maxLineSize bounds a single corpus line.
const maxLineSize = 1 << 20

// ErrFrequencyRange is returned for frequencies that do not fit in an int.
var ErrFrequencyRange = errors.New("frequency out of range")

// Record is one corpus entry. Phrase is lowercase-normalized and Frequency is
// at least 1.
type Record struct {
	Phrase    string
	Frequency int
}

// ParseLine parses "phrase" or "phrase:frequency".
//
// The line is split at the first ':'. Every ASCII digit after the delimiter is
// part of the frequency, anything else there is ignored, so "cat: 1,200" reads
// as 1200. No digits means DefaultFrequency, and 0 is raised to 1.
func ParseLine(line string) (Record, error) {
	line = strings.TrimSuffix(line, "\r")
	phrase, rest, found := strings.Cut(line, ":")

	rec := Record{Phrase: utils.Normalize(phrase), Frequency: DefaultFrequency}
	if !found {
		return rec, nil
	}

	digits := make([]byte, 0, len(rest))
	for i := 0; i < len(rest); i++ {
		if c := rest[i]; c >= '0' && c <= '9' {
			digits = append(digits, c)
		}
	}
	if len(digits) == 0 {
		return rec, nil
	}

	freq, err := strconv.Atoi(string(digits))
	if err != nil {
		return Record{}, fmt.Errorf("%w: %q", ErrFrequencyRange, rest)
	}
	if freq > 0 {
		rec.Frequency = freq
	}
	return rec, nil
}

// ReadText reads a text corpus. Blank lines are skipped.
// Parse failures are returned as *LoadError carrying the line number.
func ReadText(r io.Reader) ([]Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var records []Record
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if strings.TrimSuffix(line, "\r") == "" {
			continue
		}
		rec, err := ParseLine(line)
		if err != nil {
			return nil, &LoadError{Line: lineNo, Err: err}
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, &LoadError{Line: lineNo + 1, Err: err}
	}
	return records, nil
}
