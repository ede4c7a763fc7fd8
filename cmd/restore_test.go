package cmd

import (
	"testing"

	"github.com/xmatters/xm-labs-restore-instance-data/internal/restore"
)

func TestModeSubcommandsParseAsModes(t *testing.T) {
	if len(modeCommands) != 8 {
		t.Fatalf("mode subcommands = %d, want 8", len(modeCommands))
	}
	for _, mc := range modeCommands {
		mode, err := restore.ParseMode(string(mc.mode))
		if err != nil {
			t.Errorf("subcommand %q does not parse as a restore mode: %v", mc.mode, err)
			continue
		}
		if mode != mc.mode {
			t.Errorf("ParseMode(%q) = %q, want %q", mc.mode, mode, mc.mode)
		}
	}
}

func TestModeSubcommandsRegistered(t *testing.T) {
	byName := map[string]bool{}
	for _, cmd := range rootCmd.Commands() {
		byName[cmd.Name()] = true
	}
	for _, mc := range modeCommands {
		if !byName[string(mc.mode)] {
			t.Errorf("mode %q has no registered subcommand", mc.mode)
		}
	}
}
