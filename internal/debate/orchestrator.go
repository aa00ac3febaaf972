package debate

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/antoniostano/dialettica/internal/archive"
	"github.com/antoniostano/dialettica/internal/brain"
	"github.com/antoniostano/dialettica/internal/conversation"
	"github.com/antoniostano/dialettica/internal/observability"
	"github.com/antoniostano/dialettica/internal/persona"
	"github.com/antoniostano/dialettica/internal/speech"
)

const (
	// DefaultMaxLoopDepth bounds the debate so the loop cannot run
	// forever without user input.
	DefaultMaxLoopDepth = 6

	defaultThinkingPause      = 800 * time.Millisecond
	defaultSpeechPollInterval = 200 * time.Millisecond
	defaultHistoryWindow      = 6

	judgeVerdictTimeout = 6 * time.Second
	outcomeSaveTimeout  = 2 * time.Second
)

// errTurnSuperseded aborts stream consumption when interference fired
// mid-turn. Expected control flow, not a fault.
var errTurnSuperseded = errors.New("turn superseded")

// Options configures a single-session orchestrator.
type Options struct {
	SessionID string
	Log       *conversation.Log
	Brain     brain.Provider
	Player    speech.Player
	Profiles  map[conversation.Speaker]persona.Profile
	Metrics   *observability.Metrics
	Outcomes  archive.Store

	MaxLoopDepth       int
	ThinkingPause      time.Duration
	SpeechPollInterval time.Duration
}

// Orchestrator drives the turn-taking state machine of one debate session:
// it starts turns, consumes the generation stream into the conversation
// log, flushes sentence chunks to speech, waits for playback, and advances
// or terminates the loop.
//
// All loop state lives behind o.mu; at most one turn goroutine is logically
// in flight and it holds the generation token it was started with. Every
// suspension point (fragment arrival, the thinking pause firing, a speech
// poll tick) re-checks the token before touching shared state, so stale
// continuations self-cancel instead of corrupting a restarted loop.
type Orchestrator struct {
	sessionID string
	log       *conversation.Log
	brain     brain.Provider
	player    speech.Player
	profiles  map[conversation.Speaker]persona.Profile
	metrics   *observability.Metrics
	outcomes  archive.Store

	maxLoopDepth  int
	thinkingPause time.Duration
	speechPoll    time.Duration
	historyWindow int

	mu         sync.Mutex
	processing bool
	loopDepth  int
	generation int64
	cancel     context.CancelFunc
	startedAt  time.Time
}

func New(opts Options) *Orchestrator {
	o := &Orchestrator{
		sessionID:     opts.SessionID,
		log:           opts.Log,
		brain:         opts.Brain,
		player:        opts.Player,
		profiles:      opts.Profiles,
		metrics:       opts.Metrics,
		outcomes:      opts.Outcomes,
		maxLoopDepth:  opts.MaxLoopDepth,
		thinkingPause: opts.ThinkingPause,
		speechPoll:    opts.SpeechPollInterval,
		historyWindow: defaultHistoryWindow,
	}
	if o.player == nil {
		o.player = speech.NullPlayer{}
	}
	if o.profiles == nil {
		o.profiles = persona.Defaults("")
	}
	if o.maxLoopDepth <= 0 {
		o.maxLoopDepth = DefaultMaxLoopDepth
	}
	if o.log == nil {
		o.log = conversation.NewLog(o.maxLoopDepth)
	}
	if o.thinkingPause <= 0 {
		o.thinkingPause = defaultThinkingPause
	}
	if o.speechPoll <= 0 {
		o.speechPoll = defaultSpeechPollInterval
	}

	o.seedWelcome()
	return o
}

// Log exposes the conversation store for read access and subscriptions.
func (o *Orchestrator) Log() *conversation.Log { return o.log }

func (o *Orchestrator) seedWelcome() {
	o.log.Append(conversation.Message{
		Sender:  conversation.SpeakerSystem,
		Text:    "Cognitive System Initialized. Perception Layers Active.",
		Emotion: conversation.EmotionNeutral,
	})
	o.log.Append(conversation.Message{
		Sender:  conversation.SpeakerCuriousSoul,
		Text:    "Am I... awake? Is someone there?",
		Emotion: conversation.EmotionCuriosity,
	})
}

// SubmitUserInput starts a new debate loop. A strict no-op while a loop is
// already processing; the user must interfere first.
func (o *Orchestrator) SubmitUserInput(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	o.mu.Lock()
	if o.processing {
		o.mu.Unlock()
		return
	}
	o.stopLocked()
	o.loopDepth = 0
	o.processing = true
	o.startedAt = time.Now()
	gen := o.generation
	ctx, cancel := context.WithCancel(context.Background())
	o.cancel = cancel
	o.mu.Unlock()

	o.player.CancelAll()
	o.log.SetLoopState(func(s *conversation.LoopState) {
		s.IsProcessing = true
		s.IsSpeaking = false
		s.ActiveSpeaker = conversation.SpeakerUser
		s.LoopDepth = 0
	})
	o.log.Append(conversation.Message{
		Sender:  conversation.SpeakerUser,
		Text:    text,
		Emotion: conversation.EmotionNeutral,
	})
	if o.metrics != nil {
		o.metrics.LoopEvents.WithLabelValues("submitted").Inc()
	}

	go o.runTurn(ctx, gen, conversation.SpeakerCuriousSoul, text)
}

// Interfere aborts the loop unconditionally and returns control to the
// user. Safe to call at any time, including while idle: cancellation is a
// no-op then, but the notice is still appended because the call denotes an
// explicit user action.
func (o *Orchestrator) Interfere() {
	o.mu.Lock()
	wasProcessing := o.processing
	depth := o.loopDepth
	started := o.startedAt
	o.stopLocked()
	o.mu.Unlock()

	o.player.CancelAll()
	o.log.SetLoopState(func(s *conversation.LoopState) {
		s.IsProcessing = false
		s.IsSpeaking = false
		s.ActiveSpeaker = conversation.SpeakerUser
	})
	o.log.Append(conversation.Message{
		Sender:  conversation.SpeakerSystem,
		Text:    "USER INTERFERENCE DETECTED. SYSTEM PAUSED.",
		Emotion: conversation.EmotionNeutral,
	})
	if o.metrics != nil {
		o.metrics.LoopEvents.WithLabelValues("interfered").Inc()
	}
	if wasProcessing {
		o.saveOutcomeBestEffort(archive.ResultInterfered, depth, time.Since(started))
	}
}

// Shutdown cancels any in-flight work without appending the interference
// notice. Used when the owning connection goes away.
func (o *Orchestrator) Shutdown() {
	o.mu.Lock()
	o.stopLocked()
	o.mu.Unlock()
	o.player.CancelAll()
}

// stopLocked supersedes the current loop: any suspended continuation still
// holding the old generation token finds itself stale and self-cancels.
func (o *Orchestrator) stopLocked() {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.generation++
	o.processing = false
}

// current reports whether the token still owns the loop.
func (o *Orchestrator) current(gen int64) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation == gen && o.processing
}

func (o *Orchestrator) runTurn(ctx context.Context, gen int64, speaker conversation.Speaker, contextInput string) {
	if !o.current(gen) {
		return
	}
	turnStart := time.Now()
	profile := o.profiles[speaker]
	state := o.log.PersonaState(speaker)

	o.log.SetLoopState(func(s *conversation.LoopState) {
		s.ActiveSpeaker = speaker
		s.IsSpeaking = true
	})

	msg := o.log.Append(conversation.Message{
		Sender:      speaker,
		Emotion:     state.Emotion,
		IsStreaming: true,
	})

	prompt := BuildTurnPrompt(o.log.Recent(o.historyWindow), contextInput)
	instruction := BuildSystemInstruction(profile, state)

	var fullResponse string
	var sentenceBuf string
	abandoned := false

	_, err := o.brain.Stream(ctx, brain.StreamRequest{
		Prompt:            prompt,
		SystemInstruction: instruction,
		Model:             profile.ModelID,
	}, func(delta string) error {
		if !o.current(gen) {
			abandoned = true
			return errTurnSuperseded
		}
		if o.metrics != nil {
			o.metrics.StreamFragments.Inc()
		}
		fullResponse += delta
		sentenceBuf += delta
		// Overwrite with the full buffer rather than appending the delta so a
		// retried fragment cannot double up in the visible text.
		o.log.UpdateText(msg.ID, fullResponse)
		if sentenceComplete(sentenceBuf) {
			o.player.Speak(sentenceBuf, profile.Voice)
			if o.metrics != nil {
				o.metrics.SpeechFlushes.WithLabelValues("sentence").Inc()
			}
			sentenceBuf = ""
		}
		return nil
	})

	if abandoned || !o.current(gen) {
		// Superseded mid-stream: leave the message in its last state and
		// abandon the rest of the turn.
		return
	}
	if err != nil && !errors.Is(err, errTurnSuperseded) {
		if o.metrics != nil {
			o.metrics.ProviderErrors.WithLabelValues("brain", "stream_failed").Inc()
		}
		log.Printf("session %s: %s turn stream failed: %v", o.sessionID, speaker, err)
		o.log.Append(conversation.Message{
			Sender:  conversation.SpeakerSystem,
			Text:    "Cognitive error in logic layer.",
			Emotion: conversation.EmotionNeutral,
		})
	}

	if strings.TrimSpace(sentenceBuf) != "" && o.current(gen) {
		o.player.Speak(sentenceBuf, profile.Voice)
		if o.metrics != nil {
			o.metrics.SpeechFlushes.WithLabelValues("trailing").Inc()
		}
	}

	o.log.SetStreamingDone(msg.ID)

	o.waitForSpeechIdle(ctx, gen)

	if o.metrics != nil {
		o.metrics.Turns.WithLabelValues(string(speaker)).Inc()
		o.metrics.ObserveTurnDuration(time.Since(turnStart))
	}

	if o.current(gen) {
		o.resolveNextTurn(ctx, gen, speaker, fullResponse)
	}
}

// waitForSpeechIdle holds this turn's progression until playback drains.
// Other logical work (interference, new submissions after interference)
// keeps flowing; only this turn is serialized behind the voice.
func (o *Orchestrator) waitForSpeechIdle(ctx context.Context, gen int64) {
	ticker := time.NewTicker(o.speechPoll)
	defer ticker.Stop()
	for {
		if !o.current(gen) {
			return
		}
		if !o.player.IsSpeaking() {
			o.log.SetLoopState(func(s *conversation.LoopState) { s.IsSpeaking = false })
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (o *Orchestrator) resolveNextTurn(ctx context.Context, gen int64, currentSpeaker conversation.Speaker, lastResponse string) {
	o.mu.Lock()
	if o.generation != gen || !o.processing {
		o.mu.Unlock()
		return
	}
	o.loopDepth++
	depth := o.loopDepth
	o.mu.Unlock()

	o.log.SetLoopState(func(s *conversation.LoopState) { s.LoopDepth = depth })

	if depth >= o.maxLoopDepth {
		o.processJudgeTurn(gen)
		return
	}

	next := conversation.SpeakerSearcherMind
	if currentSpeaker == conversation.SpeakerSearcherMind {
		next = conversation.SpeakerCuriousSoul
	}

	// The thinking pause is scheduled work, not a blocking wait: if
	// interference fires while it is pending, the guard at runTurn entry
	// finds the token stale and the delayed start does nothing.
	time.AfterFunc(o.thinkingPause, func() {
		o.runTurn(ctx, gen, next, lastResponse)
	})
}

// processJudgeTurn is the terminal step: one JUDGE announcement, then the
// loop returns to idle. Nothing is reachable after it except a fresh
// submission.
func (o *Orchestrator) processJudgeTurn(gen int64) {
	o.mu.Lock()
	if o.generation != gen || !o.processing {
		o.mu.Unlock()
		return
	}
	depth := o.loopDepth
	started := o.startedAt
	o.processing = false
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.mu.Unlock()

	o.log.SetLoopState(func(s *conversation.LoopState) { s.ActiveSpeaker = conversation.SpeakerJudge })
	msg := o.log.Append(conversation.Message{
		Sender:      conversation.SpeakerJudge,
		Text:        "DEBATE CYCLE COMPLETE. ANALYZING...",
		Emotion:     conversation.EmotionNeutral,
		IsStreaming: true,
	})
	o.log.SetLoopState(func(s *conversation.LoopState) {
		s.IsProcessing = false
		s.IsSpeaking = false
		s.ActiveSpeaker = conversation.SpeakerUser
	})
	if o.metrics != nil {
		o.metrics.LoopEvents.WithLabelValues("judged").Inc()
	}
	o.saveOutcomeBestEffort(archive.ResultJudged, depth, time.Since(started))

	// Best-effort verdict fills in the announcement; the loop is already
	// idle and a failure here only leaves the fixed text.
	if verdict := o.judgeVerdict(); verdict != "" {
		o.log.UpdateText(msg.ID, "DEBATE CYCLE COMPLETE. "+verdict)
	}
	o.log.SetStreamingDone(msg.ID)
}

func (o *Orchestrator) judgeVerdict() string {
	if o.brain == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(context.Background(), judgeVerdictTimeout)
	defer cancel()

	profile := o.profiles[conversation.SpeakerCuriousSoul]
	res, err := o.brain.Generate(ctx, brain.StreamRequest{
		Prompt:            BuildTurnPrompt(o.log.Recent(o.historyWindow), "Deliver your verdict on this debate."),
		SystemInstruction: judgeSystemInstruction,
		Model:             profile.ModelID,
	})
	if err != nil {
		if o.metrics != nil {
			o.metrics.ProviderErrors.WithLabelValues("brain", "judge_failed").Inc()
		}
		log.Printf("session %s: judge verdict failed: %v", o.sessionID, err)
		return ""
	}
	return strings.TrimSpace(res.Text)
}

func (o *Orchestrator) saveOutcomeBestEffort(result archive.OutcomeResult, depth int, elapsed time.Duration) {
	if o.outcomes == nil {
		return
	}
	record := archive.OutcomeRecord{
		SessionID:  o.sessionID,
		Result:     result,
		LoopDepth:  depth,
		DurationMS: elapsed.Milliseconds(),
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), outcomeSaveTimeout)
		defer cancel()
		if err := o.outcomes.SaveOutcome(ctx, record); err != nil {
			log.Printf("session %s: outcome save failed: %v", o.sessionID, err)
		}
	}()
}
