package cli

import (
	"testing"

	"github.com/vvka-141/bestiary/pkg/bestiary"
)

func TestImportCmd_ArgsValidation(t *testing.T) {
	err := importCmd.Args(importCmd, []string{})
	if err == nil {
		t.Fatal("Expected error for missing args")
	}
	exitCode := bestiary.ExitCodeForError(err)
	if exitCode != bestiary.ExitUsageError {
		t.Errorf("Expected exit code %d (usage), got %d for: %v", bestiary.ExitUsageError, exitCode, err)
	}
}

func TestImportCmd_ArgsValidation_TooMany(t *testing.T) {
	err := importCmd.Args(importCmd, []string{"a", "b"})
	if err == nil {
		t.Fatal("Expected error for too many args")
	}
}

func TestRootCmd_RegistersCommands(t *testing.T) {
	for _, name := range []string{"import", "version"} {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("expected %q to be registered, got %v (%v)", name, cmd, err)
		}
	}
}

func TestImportCmd_FlagShorthands(t *testing.T) {
	for short, long := range map[string]string{"h": "host", "p": "port", "U": "username", "d": "database"} {
		f := importCmd.Flags().ShorthandLookup(short)
		if f == nil || f.Name != long {
			t.Errorf("-%s should be --%s, got %v", short, long, f)
		}
	}
}
