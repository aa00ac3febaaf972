package conversation

import "testing"

func TestAppendAssignsIDAndPreservesOrder(t *testing.T) {
	l := NewLog(6)
	first := l.Append(Message{Sender: SpeakerSystem, Text: "one"})
	second := l.Append(Message{Sender: SpeakerUser, Text: "two"})

	if first.ID == "" || second.ID == "" {
		t.Fatalf("Append should assign IDs, got %q and %q", first.ID, second.ID)
	}

	msgs := l.Messages()
	if len(msgs) != 2 {
		t.Fatalf("log length = %d, want 2", len(msgs))
	}
	if msgs[0].Text != "one" || msgs[1].Text != "two" {
		t.Fatalf("log order = [%q, %q], want [one, two]", msgs[0].Text, msgs[1].Text)
	}
}

func TestUpdateTextOverwrites(t *testing.T) {
	l := NewLog(6)
	msg := l.Append(Message{Sender: SpeakerCuriousSoul, IsStreaming: true})

	l.UpdateText(msg.ID, "Hello")
	l.UpdateText(msg.ID, "Hello there")

	got := l.Messages()[0].Text
	if got != "Hello there" {
		t.Fatalf("text = %q, want overwrite semantics %q", got, "Hello there")
	}
}

func TestStreamingDoneLatchesMessage(t *testing.T) {
	l := NewLog(6)
	msg := l.Append(Message{Sender: SpeakerCuriousSoul, Text: "final", IsStreaming: true})

	l.SetStreamingDone(msg.ID)
	l.UpdateText(msg.ID, "stale continuation text")

	got := l.Messages()[0]
	if got.IsStreaming {
		t.Fatalf("IsStreaming = true, want latched false")
	}
	if got.Text != "final" {
		t.Fatalf("text = %q, completed message should be immutable", got.Text)
	}
}

func TestRecentReturnsChronologicalWindow(t *testing.T) {
	l := NewLog(6)
	texts := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	for _, txt := range texts {
		l.Append(Message{Sender: SpeakerUser, Text: txt})
	}

	recent := l.Recent(6)
	if len(recent) != 6 {
		t.Fatalf("recent length = %d, want 6", len(recent))
	}
	if recent[0].Text != "c" || recent[5].Text != "h" {
		t.Fatalf("recent window = [%q..%q], want [c..h]", recent[0].Text, recent[5].Text)
	}
}

func TestUpdatePersonaStateClampsHealth(t *testing.T) {
	l := NewLog(6)
	l.UpdatePersonaState(SpeakerCuriousSoul, func(st *PersonaState) {
		st.Health = 250
	})
	if got := l.PersonaState(SpeakerCuriousSoul).Health; got != 100 {
		t.Fatalf("health = %d, want clamp to 100", got)
	}

	l.UpdatePersonaState(SpeakerCuriousSoul, func(st *PersonaState) {
		st.Health = -10
	})
	if got := l.PersonaState(SpeakerCuriousSoul).Health; got != 0 {
		t.Fatalf("health = %d, want clamp to 0", got)
	}
}

func TestSubscribeObservesMutationsInOrder(t *testing.T) {
	l := NewLog(6)
	events, cancel := l.Subscribe()
	defer cancel()

	msg := l.Append(Message{Sender: SpeakerCuriousSoul, IsStreaming: true})
	l.UpdateText(msg.ID, "partial")
	l.SetStreamingDone(msg.ID)

	wantKinds := []EventKind{EventAppend, EventUpdate, EventDone}
	for i, want := range wantKinds {
		evt := <-events
		if evt.Kind != want {
			t.Fatalf("event %d kind = %q, want %q", i, evt.Kind, want)
		}
		if evt.Message.ID != msg.ID {
			t.Fatalf("event %d message id = %q, want %q", i, evt.Message.ID, msg.ID)
		}
	}
}
