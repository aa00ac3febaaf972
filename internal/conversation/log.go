package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventKind identifies log change notifications delivered to subscribers.
type EventKind string

const (
	EventAppend    EventKind = "append"
	EventUpdate    EventKind = "update"
	EventDone      EventKind = "done"
	EventLoopState EventKind = "loop_state"
)

// Event describes one log or state mutation, emitted after the mutation
// is applied so subscribers never observe state older than the event.
type Event struct {
	Kind    EventKind
	Message Message
	State   LoopState
}

// Log is the ordered message log plus derived loop state. It is the single
// source of truth for UI rendering; all mutating calls originate from the
// orchestrator and are applied in call order.
type Log struct {
	mu       sync.RWMutex
	messages []Message
	index    map[string]int
	states   map[Speaker]*PersonaState
	loop     LoopState

	subMu   sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

func NewLog(maxLoopDepth int) *Log {
	return &Log{
		index: make(map[string]int),
		states: map[Speaker]*PersonaState{
			SpeakerCuriousSoul: {
				Health:           100,
				BrainMass:        10,
				ConnectionDepth:  1,
				AbstractionLevel: 1,
				Emotion:          EmotionCuriosity,
			},
			SpeakerSearcherMind: {
				Health:  100,
				Emotion: EmotionConfidence,
			},
		},
		loop: LoopState{
			ActiveSpeaker: SpeakerUser,
			MaxLoopDepth:  maxLoopDepth,
		},
		subs: make(map[int]chan Event),
	}
}

// Append adds a message to the end of the log. Missing IDs and timestamps
// are filled in. Returns the stored message.
func (l *Log) Append(msg Message) Message {
	l.mu.Lock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now().UTC()
	}
	l.index[msg.ID] = len(l.messages)
	l.messages = append(l.messages, msg)
	l.mu.Unlock()

	l.publish(Event{Kind: EventAppend, Message: msg})
	return msg
}

// UpdateText replaces (never concatenates) the text of a streaming message.
// Updates to unknown or already-completed messages are ignored; a stale
// continuation must not be able to mutate a finished message.
func (l *Log) UpdateText(id, text string) {
	l.mu.Lock()
	i, ok := l.index[id]
	if !ok || !l.messages[i].IsStreaming {
		l.mu.Unlock()
		return
	}
	l.messages[i].Text = text
	msg := l.messages[i]
	l.mu.Unlock()

	l.publish(Event{Kind: EventUpdate, Message: msg})
}

// SetStreamingDone latches a message as complete. Idempotent.
func (l *Log) SetStreamingDone(id string) {
	l.mu.Lock()
	i, ok := l.index[id]
	if !ok || !l.messages[i].IsStreaming {
		l.mu.Unlock()
		return
	}
	l.messages[i].IsStreaming = false
	msg := l.messages[i]
	l.mu.Unlock()

	l.publish(Event{Kind: EventDone, Message: msg})
}

// SetSources attaches grounding source URLs to a message.
func (l *Log) SetSources(id string, sources []string) {
	l.mu.Lock()
	i, ok := l.index[id]
	if !ok {
		l.mu.Unlock()
		return
	}
	l.messages[i].Sources = append([]string(nil), sources...)
	msg := l.messages[i]
	l.mu.Unlock()

	l.publish(Event{Kind: EventUpdate, Message: msg})
}

// Messages returns a copy of the full ordered log.
func (l *Log) Messages() []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Recent returns the most recent n messages in chronological order.
func (l *Log) Recent(n int) []Message {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if n <= 0 || len(l.messages) == 0 {
		return nil
	}
	if n > len(l.messages) {
		n = len(l.messages)
	}
	out := make([]Message, n)
	copy(out, l.messages[len(l.messages)-n:])
	return out
}

// Len reports the current log length.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// PersonaState returns a copy of the persona's current stats.
func (l *Log) PersonaState(s Speaker) PersonaState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	st, ok := l.states[s]
	if !ok {
		return PersonaState{Health: 100, Emotion: EmotionNeutral}
	}
	out := *st
	out.Memory = append([]string(nil), st.Memory...)
	return out
}

// UpdatePersonaState applies fn to the persona's stats between turns.
// Health is clamped after the update.
func (l *Log) UpdatePersonaState(s Speaker, fn func(*PersonaState)) {
	l.mu.Lock()
	st, ok := l.states[s]
	if !ok {
		l.mu.Unlock()
		return
	}
	fn(st)
	st.Health = ClampHealth(st.Health)
	l.mu.Unlock()
}

// LoopState returns the current derived state flags.
func (l *Log) LoopState() LoopState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.loop
}

// SetLoopState applies fn to the loop state and notifies subscribers.
func (l *Log) SetLoopState(fn func(*LoopState)) {
	l.mu.Lock()
	fn(&l.loop)
	state := l.loop
	l.mu.Unlock()

	l.publish(Event{Kind: EventLoopState, State: state})
}

// Subscribe registers a change feed. The returned cancel func must be
// called when the subscriber goes away. Slow subscribers lose events
// rather than blocking the orchestrator.
func (l *Log) Subscribe() (<-chan Event, func()) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	id := l.nextSub
	l.nextSub++
	ch := make(chan Event, 256)
	l.subs[id] = ch
	return ch, func() {
		l.subMu.Lock()
		defer l.subMu.Unlock()
		if c, ok := l.subs[id]; ok {
			delete(l.subs, id)
			close(c)
		}
	}
}

func (l *Log) publish(evt Event) {
	l.subMu.Lock()
	defer l.subMu.Unlock()
	for _, ch := range l.subs {
		select {
		case ch <- evt:
		default:
			// Drop for saturated subscribers; the ws layer resyncs from a snapshot.
		}
	}
}
