package protocol

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/antoniostano/dialettica/internal/conversation"
)

// MessageType identifies websocket payload variants.
type MessageType string

const (
	TypeClientUserInput MessageType = "client_user_input"
	TypeClientControl   MessageType = "client_control"
	TypeChatAppend      MessageType = "chat_append"
	TypeChatUpdate      MessageType = "chat_update"
	TypeChatDone        MessageType = "chat_done"
	TypeLoopState       MessageType = "loop_state"
	TypeSpeechUtterance MessageType = "speech_utterance"
	TypeSpeechCancel    MessageType = "speech_cancel"
	TypeSystemEvent     MessageType = "system_event"
	TypeErrorEvent      MessageType = "error_event"
)

// Control actions accepted in a client_control message.
const (
	ActionInterfere = "interfere"
	ActionEnd       = "end"
)

var ErrUnsupportedType = errors.New("unsupported message type")

type Envelope struct {
	Type MessageType `json:"type"`
}

type ClientUserInput struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Text      string      `json:"text"`
	TSMs      int64       `json:"ts_ms"`
}

type ClientControl struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Action    string      `json:"action"`
}

type ChatAppend struct {
	Type      MessageType          `json:"type"`
	SessionID string               `json:"session_id"`
	Message   conversation.Message `json:"message"`
}

type ChatUpdate struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	MessageID string      `json:"message_id"`
	Text      string      `json:"text"`
}

type ChatDone struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	MessageID string      `json:"message_id"`
	Sources   []string    `json:"sources,omitempty"`
}

type LoopState struct {
	Type      MessageType            `json:"type"`
	SessionID string                 `json:"session_id"`
	State     conversation.LoopState `json:"state"`
}

type SpeechUtterance struct {
	Type            MessageType `json:"type"`
	SessionID       string      `json:"session_id"`
	Text            string      `json:"text"`
	Pitch           float64     `json:"pitch"`
	Rate            float64     `json:"rate"`
	VoiceName       string      `json:"voice_name,omitempty"`
	PreferredVoices []string    `json:"preferred_voices,omitempty"`
}

type SpeechCancel struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
}

type SystemEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Detail    string      `json:"detail,omitempty"`
}

type ErrorEvent struct {
	Type      MessageType `json:"type"`
	SessionID string      `json:"session_id"`
	Code      string      `json:"code"`
	Source    string      `json:"source"`
	Retryable bool        `json:"retryable"`
	Detail    string      `json:"detail"`
}

func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Type {
	case TypeClientUserInput:
		var msg ClientUserInput
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || msg.Text == "" {
			return nil, errors.New("invalid client_user_input")
		}
		return msg, nil
	case TypeClientControl:
		var msg ClientControl
		if err := json.Unmarshal(raw, &msg); err != nil {
			return nil, err
		}
		if msg.SessionID == "" || msg.Action == "" {
			return nil, errors.New("invalid client_control")
		}
		if msg.Action != ActionInterfere && msg.Action != ActionEnd {
			return nil, fmt.Errorf("unknown control action %q", msg.Action)
		}
		return msg, nil
	default:
		return nil, ErrUnsupportedType
	}
}
