package dataparser

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// Mode selects how the lines of a raw log are turned into samples.
type Mode int

const (
	// Triplet reads cyclictest verbose output: "<thread>:<loop>:<latency>".
	Triplet Mode = iota
	// BootTime reads one boot duration in seconds per line.
	BootTime
)

func (m Mode) String() string {
	switch m {
	case Triplet:
		return "triplet"
	case BootTime:
		return "boottime"
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

const maxLineBytes = 1024 * 1024

var nonNumeric = regexp.MustCompile(`[^0-9:]`)

// ErrMalformedLine is returned by ParseBootTimes for a line that is not a number.
var ErrMalformedLine = errors.New("malformed line")

// Parse dispatches to the parser for mode.
func Parse(r io.Reader, mode Mode) ([]float64, error) {
	switch mode {
	case Triplet:
		return ParseTriplets(r)
	case BootTime:
		return ParseBootTimes(r)
	}
	return nil, fmt.Errorf("unsupported parse mode %s", mode)
}

// ParseTriplets extracts the third field of every colon-delimited record.
// Each line is reduced to digits and colons first; a line is kept only when
// that leaves exactly three fields and the third is an integer. Every other
// line is skipped without error.
func ParseTriplets(r io.Reader) ([]float64, error) {
	var data []float64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		if v, ok := parseTripletLine(scanner.Text()); ok {
			data = append(data, v)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

func parseTripletLine(line string) (float64, bool) {
	line = nonNumeric.ReplaceAllString(line, "")
	parts := strings.Split(line, ":")
	if len(parts) != 3 {
		return 0, false
	}
	v, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil {
		return 0, false
	}
	return float64(v), true
}

// ParseBootTimes reads one float per line and converts seconds to
// milliseconds. Blank lines are ignored, anything else that is not a number
// fails the whole file.
func ParseBootTimes(r io.Reader) ([]float64, error) {
	var data []float64

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		v, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w: %q", lineNo, ErrMalformedLine, line)
		}
		data = append(data, v*1000)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return data, nil
}
