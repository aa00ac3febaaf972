package speech

import (
	"sync"
	"testing"
	"time"

	"github.com/antoniostano/dialettica/internal/persona"
)

func TestFeedPlayerEmitsQueuedUtterancesInOrder(t *testing.T) {
	var mu sync.Mutex
	var got []string
	p := NewFeedPlayer(func(u Utterance) {
		mu.Lock()
		got = append(got, u.Text)
		mu.Unlock()
	}, nil)
	defer p.Close()

	voice := persona.VoiceProfile{Rate: 100} // fast playback keeps the test quick
	p.Speak("First sentence.", voice)
	p.Speak("Second sentence.", voice)

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(got)
		mu.Unlock()
		if n == 2 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("emitted %d utterances, want 2", n)
		}
		time.Sleep(10 * time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0] != "First sentence." || got[1] != "Second sentence." {
		t.Fatalf("utterance order = %q, want queue order", got)
	}
}

func TestFeedPlayerIsSpeakingWhileQueueDrains(t *testing.T) {
	p := NewFeedPlayer(nil, nil)
	defer p.Close()

	p.Speak("A fairly long sentence that should take a moment to play back.", persona.VoiceProfile{Rate: 0.1})
	time.Sleep(20 * time.Millisecond)
	if !p.IsSpeaking() {
		t.Fatalf("IsSpeaking = false while an utterance is playing")
	}
}

func TestFeedPlayerCancelAllStopsPlaybackAndEmitsCancel(t *testing.T) {
	cancelled := make(chan struct{}, 1)
	p := NewFeedPlayer(nil, func() {
		select {
		case cancelled <- struct{}{}:
		default:
		}
	})
	defer p.Close()

	p.Speak("A very very long utterance that would occupy the voice channel for a while.", persona.VoiceProfile{Rate: 0.05})
	p.Speak("Another queued one.", persona.VoiceProfile{})
	time.Sleep(20 * time.Millisecond)

	p.CancelAll()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatalf("cancel callback was not invoked")
	}

	deadline := time.Now().Add(time.Second)
	for p.IsSpeaking() {
		if time.Now().After(deadline) {
			t.Fatalf("IsSpeaking still true after CancelAll")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestFeedPlayerIgnoresBlankText(t *testing.T) {
	p := NewFeedPlayer(func(Utterance) {
		t.Errorf("blank utterance should not be emitted")
	}, nil)
	defer p.Close()

	p.Speak("   ", persona.VoiceProfile{})
	time.Sleep(50 * time.Millisecond)
	if p.IsSpeaking() {
		t.Fatalf("IsSpeaking = true after blank Speak")
	}
}

func TestSelectVoicePrefersOrderAndFallsBackSilently(t *testing.T) {
	available := []string{"Alex Compact", "Google US English", "Daniel (en-GB)"}

	tests := []struct {
		name      string
		preferred []string
		want      string
	}{
		{"first preference wins", []string{"Daniel", "Google US English"}, "Daniel (en-GB)"},
		{"case insensitive", []string{"google us"}, "Google US English"},
		{"no match means default", []string{"Samantha"}, ""},
		{"empty preferences", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SelectVoice(available, tt.preferred); got != tt.want {
				t.Fatalf("SelectVoice() = %q, want %q", got, tt.want)
			}
		})
	}
}
