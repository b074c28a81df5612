package syscalls

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

const tableText = `#
# 64-bit system call numbers and entry vectors
#
# The format is:
# <number> <abi> <name> <entry point>

0	common	read			sys_read
1	common	write			sys_write
60	common	exit			sys_exit
broken line
x	common	bogus			sys_bogus
`

func TestParseTable(t *testing.T) {
	table, err := ParseTable(strings.NewReader(tableText))
	require.NoError(t, err)
	require.Equal(t, Table{0: "read", 1: "write", 60: "exit"}, table)
}

func TestTableMap_NotFound(t *testing.T) {
	table := Table{0: "read", 60: "exit"}
	got := table.Map([]int{0, 60, 999})
	require.Equal(t, []Mapping{
		{Number: 0, Name: "read"},
		{Number: 60, Name: "exit"},
		{Number: 999, Name: NotFound},
	}, got)
}

func TestLoadTableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "syscall_64.tbl")
	require.NoError(t, os.WriteFile(path, []byte(tableText), 0o644))
	table, err := LoadTableFile(path)
	require.NoError(t, err)
	require.Len(t, table, 3)
}

func TestTableURL(t *testing.T) {
	want := "https://raw.githubusercontent.com/torvalds/linux/refs/tags/v6.8/arch/x86/entry/syscalls/syscall_64.tbl"
	require.Equal(t, want, TableURL("6.8"))
	require.Equal(t, want, TableURL("v6.8"))
}

func testFetcher(server *httptest.Server) *TableFetcher {
	f := NewTableFetcher()
	f.Client = server.Client()
	f.URLTemplate = server.URL + "/v%s/syscall_64.tbl"
	f.Retries = 2
	return f
}

func TestFetch_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v6.1/syscall_64.tbl" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, tableText)
	}))
	defer server.Close()

	table, err := testFetcher(server).Fetch(context.Background(), "6.1")
	require.NoError(t, err)
	require.Equal(t, "write", table[1])
}

func TestFetch_NotFoundIsNotRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := testFetcher(server).Fetch(context.Background(), "0.0")
	require.True(t, errors.Is(err, ErrTableFetch))
	require.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetch_ServerErrorIsRetried(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, tableText)
	}))
	defer server.Close()

	table, err := testFetcher(server).Fetch(context.Background(), "6.1")
	require.NoError(t, err)
	require.Len(t, table, 3)
	require.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestFetch_GivesUpAfterRetries(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := testFetcher(server).Fetch(context.Background(), "6.1")
	require.ErrorIs(t, err, ErrTableFetch)
	require.Equal(t, int32(3), atomic.LoadInt32(&calls))
}
