package conversation

import "time"

// Speaker identifies who produced a message or currently holds the floor.
type Speaker string

const (
	SpeakerUser         Speaker = "USER"
	SpeakerCuriousSoul  Speaker = "CURIOUS_SOUL"
	SpeakerSearcherMind Speaker = "SEARCHER_MIND"
	SpeakerJudge        Speaker = "JUDGE"
	SpeakerSystem       Speaker = "SYSTEM"
)

// Emotion is the closed mood set carried per message and per persona.
type Emotion string

const (
	EmotionNeutral    Emotion = "NEUTRAL"
	EmotionFear       Emotion = "FEAR"
	EmotionJoy        Emotion = "JOY"
	EmotionSadness    Emotion = "SADNESS"
	EmotionCuriosity  Emotion = "CURIOSITY"
	EmotionConfidence Emotion = "CONFIDENCE"
	EmotionDepression Emotion = "DEPRESSION"
)

// Message is one entry of the conversation log. While IsStreaming is true
// the text is still being overwritten by the active turn; once cleared the
// message is immutable.
type Message struct {
	ID          string    `json:"id"`
	Sender      Speaker   `json:"sender"`
	Text        string    `json:"text"`
	Timestamp   time.Time `json:"timestamp"`
	Emotion     Emotion   `json:"emotion,omitempty"`
	Sources     []string  `json:"sources,omitempty"`
	IsStreaming bool      `json:"is_streaming"`
}

// PersonaState holds the mutable per-persona attributes used for prompt
// flavoring and UI display. Mutated only between turns.
type PersonaState struct {
	Health           int      `json:"health"`
	BrainMass        float64  `json:"brain_mass"`
	ConnectionDepth  float64  `json:"connection_depth"`
	AbstractionLevel float64  `json:"abstraction_level"`
	Emotion          Emotion  `json:"emotion"`
	Memory           []string `json:"memory,omitempty"`
}

// ClampHealth keeps health inside its [0,100] invariant.
func ClampHealth(h int) int {
	if h < 0 {
		return 0
	}
	if h > 100 {
		return 100
	}
	return h
}

// LoopState is the derived system state the UI renders alongside the log.
type LoopState struct {
	IsProcessing  bool    `json:"is_processing"`
	IsSpeaking    bool    `json:"is_speaking"`
	ActiveSpeaker Speaker `json:"active_speaker"`
	LoopDepth     int     `json:"loop_depth"`
	MaxLoopDepth  int     `json:"max_loop_depth"`
}
