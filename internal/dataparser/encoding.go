package dataparser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"
)

const (
	DefaultEncoding  = "UTF-8"
	FallbackEncoding = "UTF-16LE"
)

// ErrEncoding marks a file that could not be decoded with the requested
// text encoding. Callers use it to decide whether to retry with
// FallbackEncoding.
var ErrEncoding = errors.New("text encoding error")

// ParseFile decodes path with the named encoding and parses it.
func ParseFile(path, encodingName string, mode Mode) ([]float64, error) {
	text, err := DecodeFile(path, encodingName)
	if err != nil {
		return nil, err
	}
	return Parse(strings.NewReader(text), mode)
}

// DecodeFile reads path and decodes it into a UTF-8 string. UTF-8 input is
// validated strictly so that UTF-16 files with a byte order mark are
// rejected instead of silently producing garbage.
func DecodeFile(path, encodingName string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	t, err := decoderFor(encodingName)
	if err != nil {
		return "", err
	}

	out, _, err := transform.Bytes(t, raw)
	if err != nil {
		return "", fmt.Errorf("%w: decoding %s as %s: %v", ErrEncoding, path, encodingName, err)
	}

	return strings.TrimPrefix(string(out), "\ufeff"), nil
}

func decoderFor(name string) (transform.Transformer, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), "_", "-")) {
	case "", "utf-8", "utf8":
		return encoding.UTF8Validator, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", name, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return enc.NewDecoder(), nil
}
