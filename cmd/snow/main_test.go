package main

import (
	"bytes"
	"testing"
)

func TestFlagsExist(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)

	for _, name := range []string{"dir", "out", "debug", "trace"} {
		if cmd.Flags().Lookup(name) == nil {
			t.Errorf("expected flag --%s to exist", name)
		}
	}
}

func TestNoSourcesIsArgumentError(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{})
	if err := cmd.Execute(); err == nil {
		t.Error("expected an error when no sources or -d dirs are given")
	}
}

func TestUnwiredParserReportsClearError(t *testing.T) {
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs([]string{"nonexistent.snow"})
	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected an error, since no .snow parser is wired into this build")
	}
}

func TestResolveOutName(t *testing.T) {
	if got := resolveOutName("prog", []string{"a.snow"}); got != "prog.water" {
		t.Errorf("resolveOutName(prog) = %q, want prog.water", got)
	}
	if got := resolveOutName("prog.water", []string{"a.snow"}); got != "prog.water" {
		t.Errorf("resolveOutName(prog.water) = %q, want prog.water", got)
	}
	if got := resolveOutName("", []string{"dir/main.snow"}); got != "main.water" {
		t.Errorf("resolveOutName(\"\") = %q, want main.water", got)
	}
}
