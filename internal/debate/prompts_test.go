package debate

import (
	"strings"
	"testing"

	"github.com/antoniostano/dialettica/internal/conversation"
	"github.com/antoniostano/dialettica/internal/persona"
)

func TestBuildSystemInstruction(t *testing.T) {
	profiles := persona.Defaults("test-model")
	curious := profiles[conversation.SpeakerCuriousSoul]

	st := conversation.PersonaState{
		Health:          100,
		BrainMass:       10,
		ConnectionDepth: 1,
		Emotion:         conversation.EmotionCuriosity,
	}
	out := BuildSystemInstruction(curious, st)

	for _, want := range []string{
		"IDENTITY: " + curious.Identity,
		"ROLE: " + curious.Role,
		"EMOTION: CURIOSITY. STATS: Brain: 10.0, Depth: 1.0.",
		"STYLE: " + curious.Style,
		"GOAL: " + curious.Goal,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("instruction missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "MEMORY:") {
		t.Errorf("instruction has MEMORY section without any memory:\n%s", out)
	}

	if out2 := BuildSystemInstruction(curious, st); out2 != out {
		t.Fatalf("instruction not deterministic")
	}
}

func TestBuildSystemInstructionWithoutStats(t *testing.T) {
	profiles := persona.Defaults("test-model")
	searcher := profiles[conversation.SpeakerSearcherMind]

	st := conversation.PersonaState{
		Health:  100,
		Emotion: conversation.EmotionConfidence,
		Memory:  []string{"the sky question", "the mirror answer"},
	}
	out := BuildSystemInstruction(searcher, st)

	if !strings.Contains(out, "EMOTION: CONFIDENCE.\n") {
		t.Errorf("want plain emotion line without stats:\n%s", out)
	}
	if strings.Contains(out, "STATS:") {
		t.Errorf("stats line present with zero brain mass:\n%s", out)
	}
	if !strings.Contains(out, "MEMORY: the sky question, the mirror answer") {
		t.Errorf("memory entries missing:\n%s", out)
	}
}

func TestBuildTurnPrompt(t *testing.T) {
	history := []conversation.Message{
		{Sender: conversation.SpeakerUser, Text: "why is the sky blue?"},
		{Sender: conversation.SpeakerCuriousSoul, Text: "Maybe it dreams in blue."},
	}
	out := BuildTurnPrompt(history, "Maybe it dreams in blue.")

	if !strings.HasPrefix(out, "CONVERSATION HISTORY:\n") {
		t.Fatalf("prompt prefix wrong:\n%s", out)
	}
	if !strings.Contains(out, "USER: why is the sky blue?\nCURIOUS_SOUL: Maybe it dreams in blue.") {
		t.Errorf("history lines missing or out of order:\n%s", out)
	}
	if !strings.Contains(out, `INPUT TO REACT TO: "Maybe it dreams in blue."`) {
		t.Errorf("reaction input missing:\n%s", out)
	}
	if !strings.Contains(out, "under 50 words") {
		t.Errorf("brevity instruction missing:\n%s", out)
	}
}
