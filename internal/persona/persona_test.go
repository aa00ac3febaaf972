package persona

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/antoniostano/dialettica/internal/conversation"
)

func TestDefaultsCoverBothPersonas(t *testing.T) {
	profiles := Defaults("gemini-2.5-flash")

	curious, ok := profiles[conversation.SpeakerCuriousSoul]
	if !ok {
		t.Fatalf("missing curious soul profile")
	}
	if curious.Voice.Pitch != 1.1 {
		t.Fatalf("curious pitch = %v, want 1.1", curious.Voice.Pitch)
	}

	searcher, ok := profiles[conversation.SpeakerSearcherMind]
	if !ok {
		t.Fatalf("missing searcher mind profile")
	}
	if searcher.Voice.Rate != 1.05 {
		t.Fatalf("searcher rate = %v, want 1.05", searcher.Voice.Rate)
	}
	if searcher.ModelID != "gemini-2.5-flash" {
		t.Fatalf("searcher model = %q, want default model", searcher.ModelID)
	}
}

func TestLoadAppliesYAMLOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "personas.yaml")
	content := `curious_soul:
  display_name: "Wanderer"
  voice:
    pitch: 1.3
searcher_mind:
  goal: "Win the argument with citations."
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write persona file: %v", err)
	}

	profiles, err := Load(path, "gemini-2.5-flash")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	curious := profiles[conversation.SpeakerCuriousSoul]
	if curious.DisplayName != "Wanderer" {
		t.Fatalf("DisplayName = %q, want override", curious.DisplayName)
	}
	if curious.Voice.Pitch != 1.3 {
		t.Fatalf("Pitch = %v, want 1.3", curious.Voice.Pitch)
	}
	if curious.Identity == "" {
		t.Fatalf("Identity should keep default when not overridden")
	}
	if curious.Voice.Rate != 1.0 {
		t.Fatalf("Rate = %v, want untouched default 1.0", curious.Voice.Rate)
	}

	searcher := profiles[conversation.SpeakerSearcherMind]
	if searcher.Goal != "Win the argument with citations." {
		t.Fatalf("Goal = %q, want override", searcher.Goal)
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	profiles, err := Load("", "m")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("profiles = %d, want 2", len(profiles))
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "m"); err == nil {
		t.Fatalf("Load() with missing file should fail")
	}
}
