package protocol

import (
	"errors"
	"testing"
)

func TestParseClientMessageUserInput(t *testing.T) {
	raw := []byte(`{"type":"client_user_input","session_id":"s1","text":"why is the sky blue?","ts_ms":123}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	input, ok := msg.(ClientUserInput)
	if !ok {
		t.Fatalf("message type = %T, want ClientUserInput", msg)
	}
	if input.SessionID != "s1" || input.Text != "why is the sky blue?" {
		t.Fatalf("unexpected user input: %+v", input)
	}
	if input.TSMs != 123 {
		t.Fatalf("TSMs = %d, want %d", input.TSMs, 123)
	}
}

func TestParseClientMessageControl(t *testing.T) {
	raw := []byte(`{"type":"client_control","session_id":"s1","action":"interfere"}`)
	msg, err := ParseClientMessage(raw)
	if err != nil {
		t.Fatalf("ParseClientMessage() error = %v", err)
	}

	control, ok := msg.(ClientControl)
	if !ok {
		t.Fatalf("message type = %T, want ClientControl", msg)
	}
	if control.SessionID != "s1" || control.Action != ActionInterfere {
		t.Fatalf("unexpected client control: %+v", control)
	}
}

func TestParseClientMessageRejectsUnknownType(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"wat"}`))
	if !errors.Is(err, ErrUnsupportedType) {
		t.Fatalf("error = %v, want ErrUnsupportedType", err)
	}
}

func TestParseClientMessageRejectsUnknownAction(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"client_control","session_id":"s1","action":"reboot"}`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}

func TestParseClientMessageRejectsEmptyInput(t *testing.T) {
	_, err := ParseClientMessage([]byte(`{"type":"client_user_input","session_id":"s1","text":""}`))
	if err == nil {
		t.Fatalf("expected validation error")
	}
}
