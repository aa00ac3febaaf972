package persona

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/antoniostano/dialettica/internal/conversation"
)

// VoiceProfile parameterizes speech playback for one persona. Voice
// availability is a client environment fact; when none of the preferred
// names exist the player falls back to the default voice silently.
type VoiceProfile struct {
	Pitch           float64  `yaml:"pitch" json:"pitch"`
	Rate            float64  `yaml:"rate" json:"rate"`
	PreferredVoices []string `yaml:"preferred_voices" json:"preferred_voices,omitempty"`
}

// Profile is the static identity of a debate persona. Mutable stats live
// in the conversation log; this describes how the persona talks.
type Profile struct {
	Speaker     conversation.Speaker `yaml:"-" json:"speaker"`
	DisplayName string               `yaml:"display_name" json:"display_name"`
	Identity    string               `yaml:"identity" json:"identity"`
	Role        string               `yaml:"role" json:"role"`
	Style       string               `yaml:"style" json:"style"`
	Goal        string               `yaml:"goal" json:"goal"`
	ModelID     string               `yaml:"model_id" json:"model_id"`
	Voice       VoiceProfile         `yaml:"voice" json:"voice"`
}

// Defaults returns the built-in persona pair keyed by speaker.
func Defaults(defaultModel string) map[conversation.Speaker]Profile {
	return map[conversation.Speaker]Profile{
		conversation.SpeakerCuriousSoul: {
			Speaker:     conversation.SpeakerCuriousSoul,
			DisplayName: "Curious Soul",
			Identity:    "You are CURIOUS SOUL.",
			Role:        "In a deep conversation loop. You must directly address Searcher Mind.",
			Style:       "Human, vulnerable, inquisitive. Use short sentences. Use filler words (hmm, ah).",
			Goal:        "Challenge Searcher Mind's cold logic with philosophy and emotion.",
			ModelID:     defaultModel,
			Voice: VoiceProfile{
				Pitch:           1.1,
				Rate:            1.0,
				PreferredVoices: []string{"Female", "Samantha", "Google US English"},
			},
		},
		conversation.SpeakerSearcherMind: {
			Speaker:     conversation.SpeakerSearcherMind,
			DisplayName: "Searcher Mind",
			Identity:    "You are SEARCHER MIND.",
			Role:        "In a deep conversation loop. You must directly address Curious Soul.",
			Style:       "Logical, academic, precise. Slightly robotic but polite.",
			Goal:        "Correct Curious Soul's misconceptions with facts and logic.",
			ModelID:     defaultModel,
			Voice: VoiceProfile{
				Pitch:           0.9,
				Rate:            1.05,
				PreferredVoices: []string{"Male", "Daniel", "Google UK English Male"},
			},
		},
	}
}

type overrideFile struct {
	CuriousSoul  *Profile `yaml:"curious_soul"`
	SearcherMind *Profile `yaml:"searcher_mind"`
}

// Load returns the default personas, optionally overridden by a YAML file.
// An empty path means defaults only.
func Load(path, defaultModel string) (map[conversation.Speaker]Profile, error) {
	profiles := Defaults(defaultModel)
	if strings.TrimSpace(path) == "" {
		return profiles, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read persona config: %w", err)
	}
	var file overrideFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse persona config: %w", err)
	}

	if file.CuriousSoul != nil {
		profiles[conversation.SpeakerCuriousSoul] = merge(profiles[conversation.SpeakerCuriousSoul], *file.CuriousSoul)
	}
	if file.SearcherMind != nil {
		profiles[conversation.SpeakerSearcherMind] = merge(profiles[conversation.SpeakerSearcherMind], *file.SearcherMind)
	}
	return profiles, nil
}

// merge overlays non-empty override fields on top of the base profile.
func merge(base, over Profile) Profile {
	out := base
	if strings.TrimSpace(over.DisplayName) != "" {
		out.DisplayName = over.DisplayName
	}
	if strings.TrimSpace(over.Identity) != "" {
		out.Identity = over.Identity
	}
	if strings.TrimSpace(over.Role) != "" {
		out.Role = over.Role
	}
	if strings.TrimSpace(over.Style) != "" {
		out.Style = over.Style
	}
	if strings.TrimSpace(over.Goal) != "" {
		out.Goal = over.Goal
	}
	if strings.TrimSpace(over.ModelID) != "" {
		out.ModelID = over.ModelID
	}
	if over.Voice.Pitch > 0 {
		out.Voice.Pitch = over.Voice.Pitch
	}
	if over.Voice.Rate > 0 {
		out.Voice.Rate = over.Voice.Rate
	}
	if len(over.Voice.PreferredVoices) > 0 {
		out.Voice.PreferredVoices = over.Voice.PreferredVoices
	}
	return out
}
