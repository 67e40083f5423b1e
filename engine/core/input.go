package core

import "sync"

// Key code definitions
type KeyCode uint16

const (
	KEY_BACKSPACE KeyCode = 0x08
	KEY_TAB       KeyCode = 0x09
	KEY_ENTER     KeyCode = 0x0D
	KEY_ESCAPE    KeyCode = 0x1B
	KEY_SPACE     KeyCode = 0x20

	KEY_0 KeyCode = 0x30
	KEY_9 KeyCode = 0x39

	KEY_A KeyCode = 0x41
	KEY_C KeyCode = 0x43
	KEY_F KeyCode = 0x46
	KEY_I KeyCode = 0x49
	KEY_R KeyCode = 0x52
	KEY_Z KeyCode = 0x5A

	KEYS_MAX_KEYS KeyCode = 0x100
)

// Keyboard state structure
type KeyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

// Input holds the current and previous keyboard state and announces every change on the
// engine subject.
type Input struct {
	mu       sync.Mutex
	current  KeyboardState
	previous KeyboardState
	events   *Subject[Event]
}

func NewInput(events *Subject[Event]) *Input {
	return &Input{events: events}
}

// Update copies the current state to the previous one. Call once at the end of a frame.
func (in *Input) Update() {
	in.mu.Lock()
	defer in.mu.Unlock()
	in.previous = in.current
}

func (in *Input) IsKeyDown(key KeyCode) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.current.Keys[key]
}

func (in *Input) WasKeyDown(key KeyCode) bool {
	if key >= KEYS_MAX_KEYS {
		return false
	}
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.previous.Keys[key]
}

// ProcessKey records a key transition. Repeats of the same state are ignored.
func (in *Input) ProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS {
		return
	}
	in.mu.Lock()
	// Only handle this if the state actually changed.
	if in.current.Keys[key] == pressed {
		in.mu.Unlock()
		return
	}
	in.current.Keys[key] = pressed
	in.mu.Unlock()

	code := EVENT_CODE_KEY_RELEASED
	if pressed {
		code = EVENT_CODE_KEY_PRESSED
	}
	ev := Event{Code: code, Sender: in}
	ev.Data.Data.U16[0] = uint16(key)
	in.events.NotifyAll(ev)
}
