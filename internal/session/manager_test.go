package session

import (
	"context"
	"testing"
	"time"
)

func TestManagerCreateGetEnd(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Create("evening run", []string{"Samantha", "Daniel"})
	if s.ID == "" {
		t.Fatalf("session ID should not be empty")
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Label != "evening run" || got.Status != StatusActive {
		t.Fatalf("unexpected session state: %+v", got)
	}
	if len(got.Voices) != 2 {
		t.Fatalf("Voices = %v, want client voice list retained", got.Voices)
	}

	ended, err := m.End(s.ID)
	if err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if ended.Status != StatusEnded {
		t.Fatalf("ended status = %q, want %q", ended.Status, StatusEnded)
	}
}

func TestManagerCountsLoopsAndInterferences(t *testing.T) {
	m := NewManager(time.Minute)
	s := m.Create("", nil)
	if err := m.StartLoop(s.ID); err != nil {
		t.Fatalf("StartLoop() error = %v", err)
	}
	if err := m.Interfere(s.ID); err != nil {
		t.Fatalf("Interfere() error = %v", err)
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.LoopRuns != 1 {
		t.Fatalf("LoopRuns = %d, want 1", got.LoopRuns)
	}
	if got.InterferenceCount != 1 {
		t.Fatalf("InterferenceCount = %d, want 1", got.InterferenceCount)
	}
}

func TestManagerUnknownSession(t *testing.T) {
	m := NewManager(time.Minute)
	if _, err := m.Get("nope"); err != ErrNotFound {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
	if err := m.Interfere("nope"); err != ErrNotFound {
		t.Fatalf("Interfere() error = %v, want ErrNotFound", err)
	}
}

func TestManagerJanitorExpiresInactive(t *testing.T) {
	m := NewManager(30 * time.Millisecond)
	s := m.Create("", nil)

	expired := make(chan *Session, 1)
	m.SetExpireHook(func(s *Session) { expired <- s })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.StartJanitor(ctx, 10*time.Millisecond)

	select {
	case got := <-expired:
		if got.ID != s.ID {
			t.Fatalf("expired session = %q, want %q", got.ID, s.ID)
		}
	case <-time.After(time.Second):
		t.Fatalf("janitor never expired the session")
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Status != StatusEnded {
		t.Fatalf("Status = %q, want %q", got.Status, StatusEnded)
	}
}
