// Package scheduler turns stored medications into armed wake-up timers: it
// evaluates which medications are due on a date, resolves trigger instants,
// and keeps alarms consistent through completion, deletion, and day rollover.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/noirlang/medremind/internal/alarm"
	"github.com/noirlang/medremind/internal/clock"
	"github.com/noirlang/medremind/internal/models"
	"github.com/noirlang/medremind/internal/recurrence"
)

// Store is the persistence collaborator. Passed in explicitly; the scheduler
// never reaches for a process-wide handle.
type Store interface {
	Create(ctx context.Context, med *models.Medication) error
	GetByID(ctx context.Context, id int) (*models.Medication, error)
	ListAll(ctx context.Context) ([]*models.Medication, error)
	SetCompleted(ctx context.Context, id int, completed bool) error
	Delete(ctx context.Context, id int) error
}

type Scheduler struct {
	store         Store
	timer         alarm.Timer
	clock         clock.Clock
	checkInterval time.Duration
	notifyCh      chan struct{}
}

func New(store Store, timer alarm.Timer, clk clock.Clock) *Scheduler {
	return &Scheduler{
		store:         store,
		timer:         timer,
		clock:         clk,
		checkInterval: 1 * time.Minute,
		notifyCh:      make(chan struct{}, 1),
	}
}

// Result reports the outcome of planning one day. Arming a batch is not
// atomic: a failure on one medication never aborts the others, so failures
// are collected per medication id.
type Result struct {
	Armed []int32
	// Degraded is set when the timer lacks exact-trigger privilege and
	// firings will land on a best-effort grid. A warning, not an error.
	Degraded bool
	Failed   map[int]error
}

// ScheduleDay arms a timer for every medication due on the given date.
// Synchronous, so callers (and tests) can await the full outcome.
func (s *Scheduler) ScheduleDay(ctx context.Context, date time.Time) (*Result, error) {
	meds, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list medications: %w", err)
	}

	res := &Result{Failed: make(map[int]error), Degraded: !s.timer.Exact()}
	for _, occ := range recurrence.DueOccurrences(meds, date) {
		med := occ.Medication
		identity, err := s.armOccurrence(med, occ.Date)
		if err != nil {
			log.Printf("medication %d: arm failed: %v", med.MedicationID, err)
			res.Failed[med.MedicationID] = err
			continue
		}
		res.Armed = append(res.Armed, identity)
	}

	if res.Degraded {
		log.Println("exact trigger privilege unavailable, firings rounded to the nearest minute")
	}
	return res, nil
}

// armOccurrence resolves the trigger instant for one occurrence and hands it
// to the timer. A scheduled time already in the past rolls to the next day,
// with the identity derived from the rolled date.
func (s *Scheduler) armOccurrence(med *models.Medication, date time.Time) (int32, error) {
	now, err := s.clock.Now()
	if err != nil {
		return 0, fmt.Errorf("read clock: %w", err)
	}

	effDate, trigger := alarm.ResolveTrigger(date, med.ScheduledTime, now)
	identity := alarm.IdentityFor(med.MedicationID, effDate)
	if err := s.timer.Arm(identity, trigger, payloadFor(med)); err != nil {
		return 0, fmt.Errorf("arm timer %d: %w", identity, err)
	}
	return identity, nil
}

// Add persists a new medication and arms its first occurrence.
func (s *Scheduler) Add(ctx context.Context, med *models.Medication) error {
	if err := med.Validate(); err != nil {
		return err
	}
	if err := s.store.Create(ctx, med); err != nil {
		return fmt.Errorf("create medication: %w", err)
	}
	if _, err := s.armOccurrence(med, med.ScheduledDate); err != nil {
		return err
	}
	return nil
}

// Complete marks the medication as taken and mutes today's firing by
// cancelling today's occurrence identity, never by touching recurrence
// state. For recurring medications the next occurrence is re-derived and
// rearmed immediately so that one completion cannot silence the schedule
// for good.
func (s *Scheduler) Complete(ctx context.Context, medicationID int) error {
	med, err := s.store.GetByID(ctx, medicationID)
	if err != nil {
		return fmt.Errorf("load medication %d: %w", medicationID, err)
	}

	now, err := s.clock.Now()
	if err != nil {
		return fmt.Errorf("read clock: %w", err)
	}
	today := models.DateOf(now)

	if err := s.store.SetCompleted(ctx, medicationID, true); err != nil {
		return fmt.Errorf("mark completed %d: %w", medicationID, err)
	}
	s.timer.Cancel(alarm.IdentityFor(medicationID, today))

	if !med.IsRecurring() {
		return nil
	}

	next, ok := recurrence.NextDueDate(med, today)
	if !ok {
		log.Printf("medication %d: no further occurrence within a year", medicationID)
		return nil
	}
	identity := alarm.IdentityFor(medicationID, next)
	if err := s.timer.Arm(identity, med.ScheduledTime.At(next), payloadFor(med)); err != nil {
		return fmt.Errorf("rearm timer %d: %w", identity, err)
	}
	return nil
}

// Remove deletes the medication and cancels its pending identities. Today
// and tomorrow cover both a normally armed occurrence and one rolled forward
// by past-time recovery; cancelling an identity that was never armed is a
// no-op.
func (s *Scheduler) Remove(ctx context.Context, medicationID int) error {
	now, err := s.clock.Now()
	if err != nil {
		return fmt.Errorf("read clock: %w", err)
	}
	today := models.DateOf(now)

	s.timer.Cancel(alarm.IdentityFor(medicationID, today))
	s.timer.Cancel(alarm.IdentityFor(medicationID, today.AddDate(0, 0, 1)))

	if err := s.store.Delete(ctx, medicationID); err != nil {
		return fmt.Errorf("delete medication %d: %w", medicationID, err)
	}
	return nil
}

// Rearm arms the next occurrence of a recurring medication after a firing,
// and clears the completed flag so the new day starts untaken.
func (s *Scheduler) Rearm(ctx context.Context, medicationID int) error {
	med, err := s.store.GetByID(ctx, medicationID)
	if err != nil {
		return fmt.Errorf("load medication %d: %w", medicationID, err)
	}
	if !med.IsRecurring() {
		return nil
	}

	now, err := s.clock.Now()
	if err != nil {
		return fmt.Errorf("read clock: %w", err)
	}

	if err := s.store.SetCompleted(ctx, medicationID, false); err != nil {
		return fmt.Errorf("reset completed %d: %w", medicationID, err)
	}

	next, ok := recurrence.NextDueDate(med, models.DateOf(now))
	if !ok {
		return nil
	}
	identity := alarm.IdentityFor(medicationID, next)
	if err := s.timer.Arm(identity, med.ScheduledTime.At(next), payloadFor(med)); err != nil {
		return fmt.Errorf("rearm timer %d: %w", identity, err)
	}
	return nil
}

// Notify triggers an immediate re-plan. Non-blocking if one is already
// pending.
func (s *Scheduler) Notify() {
	select {
	case s.notifyCh <- struct{}{}:
	default:
	}
}

// Start plans today's alarms and keeps them current: every tick it checks
// for day rollover and re-plans, and a Notify re-plans immediately (after a
// medication was added or removed through another path). Blocks until the
// context is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	log.Println("Scheduler started")
	ticker := time.NewTicker(s.checkInterval)
	defer ticker.Stop()

	var planned time.Time
	plan := func(force bool) {
		now, err := s.clock.Now()
		if err != nil {
			log.Printf("read clock: %v", err)
			return
		}
		today := models.DateOf(now)
		if !force && models.SameDay(planned, today) {
			return
		}
		if _, err := s.ScheduleDay(ctx, today); err != nil {
			log.Printf("plan %s: %v", today.Format("2006-01-02"), err)
			return
		}
		planned = today
	}

	plan(true)
	for {
		select {
		case <-ctx.Done():
			log.Println("Scheduler stopped")
			return
		case <-ticker.C:
			plan(false)
		case <-s.notifyCh:
			plan(true)
		}
	}
}

func payloadFor(med *models.Medication) alarm.Payload {
	return alarm.Payload{
		MedicationID: med.MedicationID,
		Name:         med.Name,
		Dose:         med.Dose,
		MealTiming:   med.MealTiming.Text(),
	}
}
