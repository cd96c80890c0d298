package main

import (
	"io"
	"strings"
	"testing"
)

func TestParseArgs_FlagsAfterCommand(t *testing.T) {
	// Flags placed after the command word, exactly as the usage shows.
	got, err := parseArgs([]string{"-tenant", "t1", "check", "-name", "Jon Smith", "-email", "jon@co.com"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs: %v", err)
	}
	if got.tenant != "t1" || got.cmd != "check" || got.name != "Jon Smith" || got.email != "jon@co.com" {
		t.Fatalf("unexpected args: %+v", got)
	}

	got, err = parseArgs([]string{"-tenant", "t1", "backfill", "-force"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs backfill: %v", err)
	}
	if !got.force {
		t.Fatalf("-force after backfill was not parsed: %+v", got)
	}

	got, err = parseArgs([]string{"-tenant", "t1", "refresh", "-candidate", "c1", "-force"}, io.Discard)
	if err != nil {
		t.Fatalf("parseArgs refresh: %v", err)
	}
	if got.candidateID != "c1" || !got.force {
		t.Fatalf("refresh flags not parsed: %+v", got)
	}

	got, err = parseArgs([]string{"-tenant", "t1", "stats"}, io.Discard)
	if err != nil || got.cmd != "stats" {
		t.Fatalf("parseArgs stats = %+v, %v", got, err)
	}
}

func TestParseArgs_Validation(t *testing.T) {
	cases := []struct {
		args    []string
		wantSub string
	}{
		{[]string{"-tenant", "t1"}, "missing command"},
		{[]string{"check", "-name", "X"}, "-tenant is required"},
		{[]string{"-tenant", "t1", "check"}, "-name is required"},
		{[]string{"-tenant", "t1", "refresh"}, "-candidate is required"},
		{[]string{"-tenant", "t1", "purge"}, "unknown command"},
		{[]string{"-tenant", "t1", "stats", "extra"}, "unexpected arguments"},
	}
	for _, tc := range cases {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			_, err := parseArgs(tc.args, io.Discard)
			if err == nil || !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("parseArgs(%v) err = %v; want %q", tc.args, err, tc.wantSub)
			}
		})
	}
}
