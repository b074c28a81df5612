package datahandeling

import (
	"errors"
	"fmt"
	"strings"

	"unik-bench/internal/dataparser"
	"unik-bench/internal/logging"
	"unik-bench/internal/storage"

	"github.com/sirupsen/logrus"
)

// DataHandler turns the parsed samples of one raw log into the cached array
// that is persisted for it.
type DataHandler interface {
	Name() string
	Mode() dataparser.Mode
	Process(samples []float64) []float64
}

// LatencyHandler removes the cyclictest warm-up and sorts the rest so the
// loader can trim percentiles from both ends later.
type LatencyHandler struct{}

func (LatencyHandler) Name() string { return "cyclictest" }

func (LatencyHandler) Mode() dataparser.Mode { return dataparser.Triplet }

func (LatencyHandler) Process(samples []float64) []float64 {
	return TrimWarmup(samples)
}

// BootTimeHandler keeps boot times as read; unit conversion already happened
// in the parser.
type BootTimeHandler struct{}

func (BootTimeHandler) Name() string { return "boottime" }

func (BootTimeHandler) Mode() dataparser.Mode { return dataparser.BootTime }

func (BootTimeHandler) Process(samples []float64) []float64 {
	out := make([]float64, len(samples))
	copy(out, samples)
	return out
}

// Cleaner parses raw logs, applies a DataHandler and writes the cached array.
type Cleaner struct {
	handler  DataHandler
	encoding string
	logger   *logrus.Logger
}

func NewCleaner(handler DataHandler, encoding string) *Cleaner {
	if encoding == "" {
		encoding = dataparser.DefaultEncoding
	}
	return &Cleaner{
		handler:  handler,
		encoding: encoding,
		logger:   logging.GetLogger(),
	}
}

// CleanFile processes src and stores the result at dest. It returns the
// number of samples written.
func (c *Cleaner) CleanFile(src, dest string) (int, error) {
	samples, err := c.parse(src)
	if err != nil {
		return 0, err
	}

	out := c.handler.Process(samples)
	if err := storage.WriteArray(dest, out); err != nil {
		return 0, fmt.Errorf("failed to write %s: %w", dest, err)
	}

	c.logger.WithFields(logrus.Fields{
		"source":  src,
		"dest":    dest,
		"samples": len(out),
		"handler": c.handler.Name(),
	}).Info("Cleaned raw log")
	return len(out), nil
}

// parse decodes src with the configured encoding and retries once with
// UTF-16LE when the first decode fails.
func (c *Cleaner) parse(src string) ([]float64, error) {
	samples, err := dataparser.ParseFile(src, c.encoding, c.handler.Mode())
	if err == nil {
		return samples, nil
	}
	if !errors.Is(err, dataparser.ErrEncoding) || strings.EqualFold(c.encoding, dataparser.FallbackEncoding) {
		return nil, err
	}

	c.logger.WithFields(logrus.Fields{
		"source":   src,
		"encoding": c.encoding,
		"fallback": dataparser.FallbackEncoding,
	}).WithError(err).Warn("Decoding failed, retrying with fallback encoding")

	samples, err = dataparser.ParseFile(src, dataparser.FallbackEncoding, c.handler.Mode())
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", src, err)
	}
	return samples, nil
}
