package debate

import (
	"context"
	"time"

	"github.com/antoniostano/dialettica/internal/archive"
	"github.com/antoniostano/dialettica/internal/brain"
	"github.com/antoniostano/dialettica/internal/conversation"
	"github.com/antoniostano/dialettica/internal/observability"
	"github.com/antoniostano/dialettica/internal/persona"
	"github.com/antoniostano/dialettica/internal/protocol"
	"github.com/antoniostano/dialettica/internal/session"
	"github.com/antoniostano/dialettica/internal/speech"
)

// Service builds per-connection orchestrators from shared dependencies.
type Service struct {
	brain    brain.Provider
	profiles map[conversation.Speaker]persona.Profile
	metrics  *observability.Metrics
	outcomes archive.Store

	maxLoopDepth       int
	thinkingPause      time.Duration
	speechPollInterval time.Duration
}

type ServiceOptions struct {
	Brain    brain.Provider
	Profiles map[conversation.Speaker]persona.Profile
	Metrics  *observability.Metrics
	Outcomes archive.Store

	MaxLoopDepth       int
	ThinkingPause      time.Duration
	SpeechPollInterval time.Duration
}

func NewService(opts ServiceOptions) *Service {
	return &Service{
		brain:              opts.Brain,
		profiles:           opts.Profiles,
		metrics:            opts.Metrics,
		outcomes:           opts.Outcomes,
		maxLoopDepth:       opts.MaxLoopDepth,
		thinkingPause:      opts.ThinkingPause,
		speechPollInterval: opts.SpeechPollInterval,
	}
}

// RunConnection owns one websocket's worth of debate: it wires a fresh
// orchestrator and speech feed to the outbound channel, replays the current
// log as a snapshot, then applies inbound client messages until the
// connection context ends or inbound closes.
func (s *Service) RunConnection(ctx context.Context, sess *session.Session, inbound <-chan any, outbound chan<- any) error {
	send := func(msg any) {
		select {
		case outbound <- msg:
		default:
			// Keep websocket writes single-threaded; drop if outbound queue is saturated.
			if s.metrics != nil {
				s.metrics.WSMessages.WithLabelValues("outbound", "drop_full").Inc()
			}
		}
	}

	player := speech.NewFeedPlayer(func(u speech.Utterance) {
		send(protocol.SpeechUtterance{
			Type:            protocol.TypeSpeechUtterance,
			SessionID:       sess.ID,
			Text:            u.Text,
			Pitch:           u.Voice.Pitch,
			Rate:            u.Voice.Rate,
			VoiceName:       speech.SelectVoice(sess.Voices, u.Voice.PreferredVoices),
			PreferredVoices: u.Voice.PreferredVoices,
		})
	}, func() {
		send(protocol.SpeechCancel{
			Type:      protocol.TypeSpeechCancel,
			SessionID: sess.ID,
		})
	})
	defer player.Close()

	orch := New(Options{
		SessionID:          sess.ID,
		Brain:              s.brain,
		Player:             player,
		Profiles:           s.profiles,
		Metrics:            s.metrics,
		Outcomes:           s.outcomes,
		MaxLoopDepth:       s.maxLoopDepth,
		ThinkingPause:      s.thinkingPause,
		SpeechPollInterval: s.speechPollInterval,
	})
	defer orch.Shutdown()

	events, unsubscribe := orch.Log().Subscribe()
	defer unsubscribe()

	// Snapshot first so the client starts from the seeded welcome exchange.
	for _, msg := range orch.Log().Messages() {
		send(protocol.ChatAppend{Type: protocol.TypeChatAppend, SessionID: sess.ID, Message: msg})
	}
	send(protocol.LoopState{Type: protocol.TypeLoopState, SessionID: sess.ID, State: orch.Log().LoopState()})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-events:
			if !ok {
				return nil
			}
			send(s.eventToMessage(sess.ID, evt))
		case raw, ok := <-inbound:
			if !ok {
				return nil
			}
			switch msg := raw.(type) {
			case protocol.ClientUserInput:
				orch.SubmitUserInput(msg.Text)
			case protocol.ClientControl:
				switch msg.Action {
				case protocol.ActionInterfere:
					orch.Interfere()
				case protocol.ActionEnd:
					send(protocol.SystemEvent{
						Type:      protocol.TypeSystemEvent,
						SessionID: sess.ID,
						Code:      "session_ending",
					})
					return nil
				}
			}
		}
	}
}

func (s *Service) eventToMessage(sessionID string, evt conversation.Event) any {
	switch evt.Kind {
	case conversation.EventAppend:
		return protocol.ChatAppend{Type: protocol.TypeChatAppend, SessionID: sessionID, Message: evt.Message}
	case conversation.EventUpdate:
		return protocol.ChatUpdate{Type: protocol.TypeChatUpdate, SessionID: sessionID, MessageID: evt.Message.ID, Text: evt.Message.Text}
	case conversation.EventDone:
		return protocol.ChatDone{Type: protocol.TypeChatDone, SessionID: sessionID, MessageID: evt.Message.ID, Sources: evt.Message.Sources}
	default:
		return protocol.LoopState{Type: protocol.TypeLoopState, SessionID: sessionID, State: evt.State}
	}
}
