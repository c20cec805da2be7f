package main

import (
	"testing"
)

func TestSubcommandsRegistered(t *testing.T) {
	want := map[string]bool{
		"classify": false,
		"rules":    false,
		"runs":     false,
		"watch":    false,
		"version":  false,
	}
	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("subcommand %q not registered", name)
		}
	}
}

func TestRulesSubcommands(t *testing.T) {
	want := map[string]bool{"init": false, "show": false, "validate": false}
	for _, cmd := range rulesCmd.Commands() {
		if _, ok := want[cmd.Name()]; ok {
			want[cmd.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("rules subcommand %q not registered", name)
		}
	}
}
