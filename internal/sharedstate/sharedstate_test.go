package sharedstate

import (
	"testing"
)

func TestGetMissingKey(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	b, err := s.Get("status.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if b != nil {
		t.Errorf("expected nil for a missing key, got %q", b)
	}
}

func TestSetGetDelete(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Set("status.json", []byte(`{"state":"paused"}`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	b, err := s.Get("status.json")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if string(b) != `{"state":"paused"}` {
		t.Errorf("Get = %q", b)
	}

	if err := s.Delete("status.json"); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if err := s.Delete("status.json"); err != nil {
		t.Errorf("deleting a missing key should not fail: %v", err)
	}
}

func TestCommandQueueOrder(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.PushCommand(CommandToggle); err != nil {
		t.Fatalf("PushCommand: %v", err)
	}

	if err := s.PushCommand(CommandEndDay); err != nil {
		t.Fatalf("PushCommand: %v", err)
	}

	cmds, err := s.DrainCommands()
	if err != nil {
		t.Fatalf("DrainCommands: %v", err)
	}

	if len(cmds) != 2 || cmds[0] != CommandToggle || cmds[1] != CommandEndDay {
		t.Errorf("DrainCommands = %v", cmds)
	}

	cmds, err = s.DrainCommands()
	if err != nil {
		t.Fatalf("DrainCommands: %v", err)
	}

	if len(cmds) != 0 {
		t.Errorf("expected the queue to be empty, got %v", cmds)
	}
}

func TestPushRejectsUnknownCommand(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	if err := s.PushCommand(Command("reset")); err == nil {
		t.Error("expected an error for an unknown command")
	}
}
