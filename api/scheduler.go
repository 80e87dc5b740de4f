/*
scheduler.go - Payday reminder scheduler

PURPOSE:
  Periodically walks all users with stored settings, computes the next
  preferred payday, and emails a reminder a fixed number of days before it.

DESIGN:
  - Background goroutine: ticker + stop channel + WaitGroup
  - At most one in-flight send per user (inflight set under the mutex)
  - A (user, payday) reminder is sent at most once per process lifetime;
    a failed send is not recorded, so the next tick retries it
  - Missing email, incomplete settings, or no desired amount: skip with a
    structured log, never fatal
  - Schedules are recomputable from stored settings, so a lost reminder
    never corrupts anything

CONFIGURATION:
  CheckInterval: how often to scan (default 1 hour)
  LeadDays:      how many days before the payday to remind (default 1)
*/
package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/icaruswings/Budgeto/notify"
	"github.com/icaruswings/Budgeto/paycycle"
	"github.com/icaruswings/Budgeto/store"
)

// ReminderScheduler emails users shortly before each preferred payday.
type ReminderScheduler struct {
	Store         store.Store
	Sender        notify.Sender
	Log           zerolog.Logger
	Location      *time.Location
	CheckInterval time.Duration
	LeadDays      int

	// Now is injectable for tests.
	Now func() time.Time

	ticker   *time.Ticker
	stop     chan struct{}
	wg       sync.WaitGroup
	mu       sync.Mutex
	inflight map[string]bool // userID -> send in progress
	sent     map[string]bool // userID|payday -> already reminded
}

// NewReminderScheduler creates a scheduler with default intervals.
func NewReminderScheduler(st store.Store, sender notify.Sender, log zerolog.Logger, loc *time.Location) *ReminderScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &ReminderScheduler{
		Store:         st,
		Sender:        sender,
		Log:           log,
		Location:      loc,
		CheckInterval: time.Hour,
		LeadDays:      1,
		Now:           time.Now,
		stop:          make(chan struct{}),
		inflight:      make(map[string]bool),
		sent:          make(map[string]bool),
	}
}

// Start begins the background scan loop.
func (rs *ReminderScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.ticker = time.NewTicker(rs.CheckInterval)
	rs.wg.Add(1)
	go rs.run()

	rs.Log.Info().Dur("interval", rs.CheckInterval).Int("lead_days", rs.LeadDays).
		Msg("reminder scheduler started")
}

// Stop halts the loop and waits for in-flight work.
func (rs *ReminderScheduler) Stop() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	if rs.ticker != nil {
		rs.ticker.Stop()
		close(rs.stop)
		rs.wg.Wait()
		rs.Log.Info().Msg("reminder scheduler stopped")
	}
}

func (rs *ReminderScheduler) run() {
	defer rs.wg.Done()

	// Scan immediately on start.
	rs.CheckOnce(context.Background())

	for {
		select {
		case <-rs.ticker.C:
			rs.CheckOnce(context.Background())
		case <-rs.stop:
			return
		}
	}
}

// CheckOnce runs a single scan pass. Exported so tests (and a future CLI
// trigger) can drive the scheduler without the ticker.
func (rs *ReminderScheduler) CheckOnce(ctx context.Context) {
	today := paycycle.TimePointOf(rs.Now(), rs.Location)

	userIDs, err := rs.Store.ListUserIDs(ctx)
	if err != nil {
		rs.Log.Error().Err(err).Msg("reminder scan: failed to list users")
		return
	}

	for _, userID := range userIDs {
		rs.checkUser(ctx, userID, today)
	}
}

func (rs *ReminderScheduler) checkUser(ctx context.Context, userID string, today paycycle.TimePoint) {
	log := rs.Log.With().Str("user_id", userID).Logger()

	settings, err := rs.Store.GetPaySettings(ctx, userID)
	if err != nil {
		log.Error().Err(err).Msg("reminder scan: failed to load settings")
		return
	}
	if !settings.HasDesiredCycle() {
		log.Debug().Msg("reminder scan: settings incomplete, skipping")
		return
	}
	if settings.Email == "" {
		log.Warn().Msg("reminder scan: no email address, skipping")
		return
	}

	payday := paycycle.FirstPreferredPayday(settings.PaydayAnchor(today), *settings.DesiredPayDayOfWeek)
	if payday.Before(today) {
		// A stale NextActualPayday override can anchor the projection in
		// the past; a reminder for a payday that already happened is noise.
		log.Warn().Str("payday", payday.String()).
			Msg("reminder scan: computed payday already passed, skipping")
		return
	}
	remindOn := payday.AddDays(-rs.LeadDays)
	if !today.AfterOrEqual(remindOn) {
		return
	}

	key := fmt.Sprintf("%s|%s", userID, payday)

	rs.mu.Lock()
	if rs.inflight[userID] || rs.sent[key] {
		rs.mu.Unlock()
		return
	}
	rs.inflight[userID] = true
	rs.mu.Unlock()

	defer func() {
		rs.mu.Lock()
		delete(rs.inflight, userID)
		rs.mu.Unlock()
	}()

	err = rs.Sender.SendPaydayReminder(ctx, settings.Email, *settings.DesiredPayAmount, payday.String())
	if err != nil {
		// Not recorded as sent; the next tick retries.
		log.Error().Err(err).Str("payday", payday.String()).Msg("reminder send failed")
		return
	}

	rs.mu.Lock()
	rs.sent[key] = true
	rs.mu.Unlock()

	log.Info().Str("payday", payday.String()).Msg("payday reminder sent")
}
