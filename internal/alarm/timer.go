package alarm

import (
	"sync"
	"time"
)

// Payload is the display data carried through to the fired notification.
type Payload struct {
	MedicationID int    `json:"medication_id"`
	Name         string `json:"name"`
	Dose         string `json:"dose"`
	MealTiming   string `json:"meal_timing"`
}

// Timer is the wake-up collaborator. Arm requests a single firing at the
// given instant under the given identity; arming an identity that is already
// pending replaces it. Cancel is idempotent: cancelling an identity that was
// never armed is a no-op.
type Timer interface {
	Arm(identity int32, at time.Time, payload Payload) error
	Cancel(identity int32)
	// Exact reports whether precisely-timed triggers are available. When
	// false the timer still fires, on a coarser best-effort grid.
	Exact() bool
}

// FireFunc receives a firing exactly once per armed identity.
type FireFunc func(identity int32, payload Payload)

// inexactSlack is the grid the degraded timer rounds trigger delays up to
// when exact-trigger privilege is unavailable.
const inexactSlack = time.Minute

// WakeTimer is an in-process Timer over time.AfterFunc, keyed by identity.
// Safe for concurrent use.
type WakeTimer struct {
	mu      sync.Mutex
	pending map[int32]*time.Timer
	fire    FireFunc
	exact   bool
}

func NewWakeTimer(fire FireFunc, exact bool) *WakeTimer {
	return &WakeTimer{
		pending: make(map[int32]*time.Timer),
		fire:    fire,
		exact:   exact,
	}
}

func (w *WakeTimer) Exact() bool {
	return w.exact
}

func (w *WakeTimer) Arm(identity int32, at time.Time, payload Payload) error {
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}
	if !w.exact {
		delay = delay.Round(inexactSlack)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if old, ok := w.pending[identity]; ok {
		old.Stop()
	}
	w.pending[identity] = time.AfterFunc(delay, func() {
		w.mu.Lock()
		delete(w.pending, identity)
		w.mu.Unlock()
		w.fire(identity, payload)
	})
	return nil
}

func (w *WakeTimer) Cancel(identity int32) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[identity]; ok {
		t.Stop()
		delete(w.pending, identity)
	}
}

// Armed reports whether the identity currently has a pending firing.
func (w *WakeTimer) Armed(identity int32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.pending[identity]
	return ok
}

// Stop cancels every pending firing. Used on shutdown.
func (w *WakeTimer) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for id, t := range w.pending {
		t.Stop()
		delete(w.pending, id)
	}
}
