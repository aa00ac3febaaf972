package speech

import (
	"strings"
	"sync"
	"time"

	"github.com/antoniostano/dialettica/internal/persona"
)

// Utterance is one queued speech chunk with its playback parameters.
type Utterance struct {
	Text  string
	Voice persona.VoiceProfile
}

// Player sequences speech playback. Speak is fire-and-forget and queues
// behind any current utterance; CancelAll drops everything immediately.
// IsSpeaking is polled by the loop to hold turn progression until text
// and voice finish roughly together.
type Player interface {
	Speak(text string, voice persona.VoiceProfile)
	CancelAll()
	IsSpeaking() bool
}

// NullPlayer is used when no playback facility is attached. Speech is
// best-effort: its absence never blocks the text loop.
type NullPlayer struct{}

func (NullPlayer) Speak(string, persona.VoiceProfile) {}
func (NullPlayer) CancelAll()                         {}
func (NullPlayer) IsSpeaking() bool                   { return false }

// wordsPerSecond is the assumed base speaking speed used to model how
// long the client-side synthesizer occupies the voice channel.
const wordsPerSecond = 2.5

// minUtteranceHold keeps IsSpeaking true long enough for very short
// utterances to register with the polling wait.
const minUtteranceHold = 300 * time.Millisecond

// FeedPlayer forwards utterances to a client feed and models playback
// occupancy from an utterance-length estimate. The actual synthesis
// happens client side; the server only needs a truthful-enough
// "currently speaking" signal to pace the debate.
type FeedPlayer struct {
	emit       func(Utterance)
	emitCancel func()

	mu        sync.Mutex
	queue     []Utterance
	playing   bool
	gen       int
	interrupt chan struct{}
	wake      chan struct{}
	closed    bool
}

// NewFeedPlayer starts the playback sequencer. emit and emitCancel may be
// nil; the occupancy model still runs so pacing works without a client.
func NewFeedPlayer(emit func(Utterance), emitCancel func()) *FeedPlayer {
	p := &FeedPlayer{
		emit:       emit,
		emitCancel: emitCancel,
		interrupt:  make(chan struct{}),
		wake:       make(chan struct{}, 1),
	}
	go p.run()
	return p
}

func (p *FeedPlayer) Speak(text string, voice persona.VoiceProfile) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.queue = append(p.queue, Utterance{Text: text, Voice: voice})
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *FeedPlayer) CancelAll() {
	p.mu.Lock()
	p.queue = nil
	p.playing = false
	p.gen++
	close(p.interrupt)
	p.interrupt = make(chan struct{})
	emitCancel := p.emitCancel
	p.mu.Unlock()

	if emitCancel != nil {
		emitCancel()
	}
}

func (p *FeedPlayer) IsSpeaking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing || len(p.queue) > 0
}

// Close stops the sequencer goroutine. Pending utterances are dropped.
func (p *FeedPlayer) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.queue = nil
	p.playing = false
	close(p.interrupt)
	p.interrupt = make(chan struct{})
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

func (p *FeedPlayer) run() {
	for {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			<-p.wake
			continue
		}
		u := p.queue[0]
		p.queue = p.queue[1:]
		p.playing = true
		gen := p.gen
		interrupt := p.interrupt
		emit := p.emit
		p.mu.Unlock()

		if emit != nil {
			emit(u)
		}

		timer := time.NewTimer(estimateDuration(u))
		select {
		case <-timer.C:
		case <-interrupt:
			if !timer.Stop() {
				<-timer.C
			}
		}

		p.mu.Lock()
		if p.gen == gen {
			p.playing = false
		}
		p.mu.Unlock()
	}
}

func estimateDuration(u Utterance) time.Duration {
	words := len(strings.Fields(u.Text))
	rate := u.Voice.Rate
	if rate <= 0 {
		rate = 1
	}
	d := time.Duration(float64(words) / (wordsPerSecond * rate) * float64(time.Second))
	if d < minUtteranceHold {
		d = minUtteranceHold
	}
	return d
}
