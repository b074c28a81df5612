// Package metric defines the closed set of measurement kinds the toolkit
// knows how to clean, load and plot.
package metric

import (
	"encoding/json"
	"fmt"
	"strings"
)

type Type int

const (
	Latency Type = iota
	Boot
	CPU
	Memory
)

// All lists every metric type in declaration order.
var All = []Type{Latency, Boot, CPU, Memory}

func (t Type) String() string {
	switch t {
	case Latency:
		return "latency"
	case Boot:
		return "boot"
	case CPU:
		return "cpu"
	case Memory:
		return "memory"
	}
	return fmt.Sprintf("metric(%d)", int(t))
}

// Parse maps a manifest "type" string onto a Type. Matching ignores case and
// surrounding whitespace; anything else is an error.
func Parse(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "latency":
		return Latency, nil
	case "boot":
		return Boot, nil
	case "cpu":
		return CPU, nil
	case "memory":
		return Memory, nil
	}
	return 0, fmt.Errorf("unsupported metric type %q", s)
}

func (t Type) Valid() bool {
	switch t {
	case Latency, Boot, CPU, Memory:
		return true
	}
	return false
}

// Scale converts a cached sample into the unit the type is plotted in.
// Every cached array is first divided by 1000 (us to ms for latency, ms to s
// for boot time); CPU and memory samples then get their own factor.
func (t Type) Scale(v float64) float64 {
	v = v / 1000
	switch t {
	case Latency, Boot:
		return v
	case CPU:
		return v * 1000
	case Memory:
		return v * 1000 / 1024
	}
	return v
}

// HasInterval reports whether configurations of this type carry a
// cyclictest interval range.
func (t Type) HasInterval() bool {
	return t == Latency
}

func (t Type) MarshalJSON() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("cannot marshal %s", t)
	}
	return json.Marshal(t.String())
}

func (t *Type) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("metric type must be a string: %w", err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Type) MarshalYAML() (interface{}, error) {
	return t.String(), nil
}
