package commands

import (
	"bytes"
	"errors"
	"testing"
)

func TestRootCommand_Help(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"--help"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("root --help returned error: %v", err)
	}

	output := buf.String()
	assertContains(t, output, "hunkstage")
	assertContains(t, output, "without disturbing any other change")
}

func TestVersionCommand(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"version"})

	err := rootCmd.Execute()
	if err != nil {
		t.Fatalf("version command returned error: %v", err)
	}
	assertContains(t, buf.String(), "hunkstage dev")
	assertContains(t, buf.String(), "go:")
}

func TestRootCommand_HasSubcommands(t *testing.T) {
	expected := map[string]bool{
		"show":    false,
		"stage":   false,
		"unstage": false,
		"revert":  false,
		"version": false,
	}

	for _, cmd := range rootCmd.Commands() {
		if _, ok := expected[cmd.Name()]; ok {
			expected[cmd.Name()] = true
		}
	}

	for name, found := range expected {
		if !found {
			t.Errorf("expected subcommand %q to be registered, but it was not", name)
		}
	}
}

func TestRootCommand_GlobalFlags(t *testing.T) {
	flags := []string{"json", "verbose", "no-color", "context", "config"}

	for _, name := range flags {
		flag := rootCmd.PersistentFlags().Lookup(name)
		if flag == nil {
			t.Errorf("expected global flag --%s to be registered", name)
		}
	}
	if f := rootCmd.PersistentFlags().ShorthandLookup("U"); f == nil || f.Name != "context" {
		t.Error("expected -U to be shorthand for --context")
	}
}

func TestApplyCommands_Flags(t *testing.T) {
	for _, name := range []string{"stage", "unstage", "revert"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil {
			t.Fatalf("finding %s: %v", name, err)
		}
		for _, flag := range []string{"hunk", "line", "lines", "row", "dry-run"} {
			if cmd.Flags().Lookup(flag) == nil {
				t.Errorf("expected %s to have --%s", name, flag)
			}
		}
		hasYes := cmd.Flags().Lookup("yes") != nil
		if hasYes != (name == "revert") {
			t.Errorf("%s: unexpected --yes presence %v", name, hasYes)
		}
	}
}

func TestRevertCommand_RequiresConfirmation(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"revert", "f.txt", "--hunk", "1"})

	err := rootCmd.Execute()
	if !errors.Is(err, ErrNotConfirmed) {
		t.Errorf("expected ErrNotConfirmed, got %v", err)
	}
}

func TestUnstageCommand_ExclusiveSelectionFlags(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"unstage", "f.txt", "--hunk", "1", "--line", "2", "--lines", "2-3"})

	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error when --line and --lines are both given")
	}
}

func TestShowCommand_RequiresPath(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"show"})

	if err := rootCmd.Execute(); err == nil {
		t.Error("expected error when no path is given")
	}
}
