package syscalls

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"unik-bench/internal/logging"

	"github.com/cenkalti/backoff/v4"
	"github.com/sirupsen/logrus"
)

const (
	TableURLTemplate = "https://raw.githubusercontent.com/torvalds/linux/refs/tags/v%s/arch/x86/entry/syscalls/syscall_64.tbl"
	FetchTimeout     = 10 * time.Second
	DefaultRetries   = 3
	NotFound         = "NOT FOUND"
)

// ErrTableFetch marks a syscall table that could not be downloaded.
var ErrTableFetch = errors.New("failed to fetch syscall_64.tbl")

// Table maps x86_64 syscall numbers to names.
type Table map[int]string

// Mapping is one resolved syscall.
type Mapping struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
}

// Map resolves numbers against the table, keeping their order. Unknown
// numbers are reported as NotFound.
func (t Table) Map(numbers []int) []Mapping {
	out := make([]Mapping, 0, len(numbers))
	for _, n := range numbers {
		name, ok := t[n]
		if !ok {
			name = NotFound
		}
		out = append(out, Mapping{Number: n, Name: name})
	}
	return out
}

// ParseTable reads syscall_64.tbl rows "<number> <abi> <name> [entry]".
// Blank lines, comments and malformed rows are skipped.
func ParseTable(r io.Reader) (Table, error) {
	table := make(Table)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		columns := strings.Fields(line)
		if len(columns) < 3 {
			continue
		}
		n, err := strconv.Atoi(columns[0])
		if err != nil {
			continue
		}
		table[n] = columns[2]
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return table, nil
}

func LoadTableFile(path string) (Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseTable(f)
}

// TableURL returns the location of the table for a kernel tag such as
// "6.8-rc1"; a leading "v" is accepted.
func TableURL(kernelVersion string) string {
	return fmt.Sprintf(TableURLTemplate, strings.TrimPrefix(strings.TrimSpace(kernelVersion), "v"))
}

type TableFetcher struct {
	Client      *http.Client
	URLTemplate string
	Retries     uint64
	logger      *logrus.Logger
}

func NewTableFetcher() *TableFetcher {
	return &TableFetcher{
		Client:      &http.Client{Timeout: FetchTimeout},
		URLTemplate: TableURLTemplate,
		Retries:     DefaultRetries,
		logger:      logging.GetLogger(),
	}
}

// Fetch downloads and parses the table of a kernel version. Network errors
// and server errors are retried with exponential backoff; client errors
// such as an unknown tag fail immediately. Every failure wraps
// ErrTableFetch.
func (f *TableFetcher) Fetch(ctx context.Context, kernelVersion string) (Table, error) {
	url := fmt.Sprintf(f.URLTemplate, strings.TrimPrefix(strings.TrimSpace(kernelVersion), "v"))

	var table Table
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		resp, err := f.Client.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			err := fmt.Errorf("unexpected status %s", resp.Status)
			if resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
				return backoff.Permanent(err)
			}
			return err
		}

		parsed, err := ParseTable(resp.Body)
		if err != nil {
			return err
		}
		table = parsed
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 500 * time.Millisecond
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, f.Retries), ctx)

	notify := func(err error, wait time.Duration) {
		f.logger.WithFields(logrus.Fields{
			"url":  url,
			"wait": wait,
		}).WithError(err).Warn("Syscall table fetch failed, retrying")
	}

	if err := backoff.RetryNotify(operation, policy, notify); err != nil {
		return nil, fmt.Errorf("%w from %s: %v", ErrTableFetch, url, err)
	}

	f.logger.WithFields(logrus.Fields{
		"url":      url,
		"syscalls": len(table),
	}).Debug("Fetched syscall table")
	return table, nil
}
