package core

import (
	"sync"

	"github.com/spaghettifunk/tessera/engine/containers"
)

type EventContext struct {
	// 128 bytes
	Data struct {
		I64 [2]int64
		U64 [2]uint64
		F64 [2]float64

		I32 [4]int32
		U32 [4]uint32
		F32 [4]float32

		I16 [8]int16
		U16 [8]uint16

		I8 [16]int8
		U8 [16]uint8

		C [16]string
	}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed.
	/* Context usage:
	 * u16 key_code = data.data.u16[0];
	 */
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released.
	/* Context usage:
	 * u16 key_code = data.data.u16[0];
	 */
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Resized/resolution changed from the OS.
	/* Context usage:
	 * u16 width = data.data.u16[0];
	 * u16 height = data.data.u16[1];
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	// An audio output device was (re)opened.
	/* Context usage:
	 * u64 generation = data.data.u64[0];
	 */
	EVENT_CODE_AUDIO_DEVICE_CHANGED SystemEventCode = 0x09

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

// Event is the message broadcast on the engine subject.
type Event struct {
	Code   SystemEventCode
	Sender interface{}
	Data   EventContext
}

// DefaultMailboxSize is the number of undelivered messages an observer keeps before
// dropping new ones.
const DefaultMailboxSize = 0x100

// Subject broadcasts messages to every subscribed observer. The subscriber list is
// guarded by a lock; delivery happens on a snapshot, outside of it.
type Subject[T any] struct {
	mu        sync.Mutex
	observers []*Observer[T]
}

func NewSubject[T any]() *Subject[T] {
	return &Subject[T]{}
}

// NotifyAll delivers msg to every observer. Observers whose mailbox is full drop it.
func (s *Subject[T]) NotifyAll(msg T) {
	s.mu.Lock()
	snapshot := make([]*Observer[T], len(s.observers))
	copy(snapshot, s.observers)
	s.mu.Unlock()

	for _, obs := range snapshot {
		obs.receive(msg)
	}
}

// Count returns the number of subscribed observers.
func (s *Subject[T]) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.observers)
}

func (s *Subject[T]) subscribe(obs *Observer[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.observers {
		if o == obs {
			return false
		}
	}
	s.observers = append(s.observers, obs)
	return true
}

func (s *Subject[T]) unsubscribe(obs *Observer[T]) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.observers {
		if o == obs {
			s.observers = append(s.observers[:i], s.observers[i+1:]...)
			return true
		}
	}
	return false
}

// Observer holds a bounded mailbox of messages received from one Subject.
type Observer[T any] struct {
	subject *Subject[T]

	mu      sync.Mutex
	inbound *containers.RingQueue[T]
	dropped uint64
}

// NewObserver creates an observer subscribed to subject, with a mailbox of
// mailboxSize messages (DefaultMailboxSize when <= 0).
func NewObserver[T any](subject *Subject[T], mailboxSize int) *Observer[T] {
	if mailboxSize <= 0 {
		mailboxSize = DefaultMailboxSize
	}
	obs := &Observer[T]{
		subject: subject,
		inbound: containers.NewRingQueue[T](mailboxSize),
	}
	subject.subscribe(obs)
	return obs
}

// Subscribe registers the observer again. Returns false if it was already subscribed.
func (o *Observer[T]) Subscribe() bool {
	return o.subject.subscribe(o)
}

// Unsubscribe stops delivery. Returns false if it was not subscribed.
func (o *Observer[T]) Unsubscribe() bool {
	return o.subject.unsubscribe(o)
}

// Observe pops the oldest pending message.
func (o *Observer[T]) Observe() (T, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	msg, err := o.inbound.Dequeue()
	if err != nil {
		return msg, false
	}
	return msg, true
}

// Clear drops every pending message.
func (o *Observer[T]) Clear() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inbound.Clear()
}

// Len returns the number of pending messages.
func (o *Observer[T]) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.inbound.Len()
}

// Dropped returns how many messages were discarded because the mailbox was full.
func (o *Observer[T]) Dropped() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.dropped
}

func (o *Observer[T]) receive(msg T) {
	o.mu.Lock()
	defer o.mu.Unlock()
	// nobody is listening, don't talk
	if err := o.inbound.Enqueue(msg); err != nil {
		o.dropped++
	}
}
