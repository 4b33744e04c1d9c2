package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dayblock/dayblock/internal/calendar"
	"github.com/dayblock/dayblock/internal/models"
	"github.com/dayblock/dayblock/internal/notify"
	"github.com/dayblock/dayblock/internal/validation"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrEngineStopped is returned for operations submitted after shutdown
	ErrEngineStopped = errors.New("engine stopped")
	// ErrPermissionDenied is returned by the explicit notification enable
	// action when the platform denies permission
	ErrPermissionDenied = errors.New("notification permission denied")
)

const (
	// DefaultRefreshInterval is how often the refresh loop re-runs
	// reconciliation and today's aggregation
	DefaultRefreshInterval = 60 * time.Second

	// schedulingHorizon bounds how far ahead block-start notifications are
	// materialized; the refresh loop pulls later blocks in as they approach
	schedulingHorizon = 7 * 24 * time.Hour

	opQueueSize = 64
)

// BlockView pairs a stored block with its clock-derived display status
type BlockView struct {
	models.TimeBlock
	DisplayStatus models.DisplayStatus `json:"display_status"`
}

// State is the in-memory snapshot consumed by presentation. It is replaced
// wholesale by the owner loop; readers get a copy and never see a block whose
// status changed but whose notifications were not yet reconciled.
type State struct {
	Date        time.Time              `json:"date"`
	Blocks      []BlockView            `json:"blocks"`
	Progress    *models.DailyProgress  `json:"progress,omitempty"`
	Message     string                 `json:"message,omitempty"`
	RefreshedAt time.Time              `json:"refreshed_at"`
}

type ownerOp struct {
	fn func(context.Context)
}

// Engine owns time-block status transitions, daily aggregation, notification
// scheduling and the midnight reset. All state mutation happens on a single
// owner goroutine; timers hop onto it instead of touching state from their
// own callbacks.
type Engine struct {
	blocks   BlockStore
	progress ProgressStore
	settings SettingsStore
	notifier notify.Notifier
	mirror   calendar.Mirror
	logger   *zap.Logger
	clock    func() time.Time

	guard *Guard
	sched *scheduler
	agg   *aggregator

	refreshEvery      time.Duration
	permissionGranted bool

	ops        chan ownerOp
	baseCtx    context.Context
	baseCancel context.CancelFunc
	loopDone   chan struct{}
	startOnce  sync.Once
	stopOnce   sync.Once

	midnightTimer *CancelableTimer
	refreshTimer  *CancelableTimer

	stateMu sync.RWMutex
	state   State
}

// Option configures the engine
type Option func(*Engine)

// WithClock injects a clock, used by tests to pin "now"
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithCalendar attaches a calendar mirror; the default is a no-op
func WithCalendar(m calendar.Mirror) Option {
	return func(e *Engine) { e.mirror = m }
}

// WithRefreshInterval overrides the refresh loop interval
func WithRefreshInterval(d time.Duration) Option {
	return func(e *Engine) { e.refreshEvery = d }
}

// WithPermissionGranted sets the initial notification permission state. The
// server host uses it because its log notifier has no permission prompt.
func WithPermissionGranted(granted bool) Option {
	return func(e *Engine) { e.permissionGranted = granted }
}

// New creates an engine. Start must be called before use.
func New(blocks BlockStore, progress ProgressStore, settings SettingsStore, notifier notify.Notifier, logger *zap.Logger, opts ...Option) *Engine {
	baseCtx, baseCancel := context.WithCancel(context.Background())

	e := &Engine{
		blocks:        blocks,
		progress:      progress,
		settings:      settings,
		notifier:      notifier,
		mirror:        calendar.NoopMirror{},
		logger:        logger,
		clock:         time.Now,
		refreshEvery:  DefaultRefreshInterval,
		ops:           make(chan ownerOp, opQueueSize),
		baseCtx:       baseCtx,
		baseCancel:    baseCancel,
		loopDone:      make(chan struct{}),
		midnightTimer: NewCancelableTimer(),
		refreshTimer:  NewCancelableTimer(),
	}

	for _, opt := range opts {
		opt(e)
	}

	e.guard = NewGuard(logger, e.clock)
	e.sched = &scheduler{notifier: notifier, logger: logger, clock: e.clock}
	e.agg = &aggregator{blocks: blocks, progress: progress, guard: e.guard, clock: e.clock}

	return e
}

// Start launches the owner loop, performs the startup auto-reset check (the
// device may have been off at midnight), primes the snapshot and arms the
// timers.
func (e *Engine) Start(ctx context.Context) error {
	e.startOnce.Do(func() {
		go e.run()
	})

	err := e.do(ctx, func(c context.Context) error {
		e.checkAutoReset(c)
		e.reconcileNow(c)
		e.refreshToday(c)
		if cfg := e.loadConfig(c); cfg.AutoResetEnabled {
			e.armMidnightTimer()
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("engine start: %w", err)
	}

	e.armRefreshTimer()
	e.logger.Info("engine_started",
		zap.Duration("refresh_interval", e.refreshEvery),
	)
	return nil
}

// Shutdown cancels all owned timers and stops the owner loop
func (e *Engine) Shutdown(ctx context.Context) error {
	e.stopOnce.Do(func() {
		e.midnightTimer.Cancel()
		e.refreshTimer.Cancel()
		e.baseCancel()
	})

	select {
	case <-e.loopDone:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) run() {
	defer close(e.loopDone)
	for {
		select {
		case op := <-e.ops:
			op.fn(e.baseCtx)
		case <-e.baseCtx.Done():
			return
		}
	}
}

// do runs fn on the owner loop and waits for it. Operations execute in
// submission order; a transition finishes its notification reconciliation
// before the next queued operation begins.
func (e *Engine) do(ctx context.Context, fn func(context.Context) error) error {
	errc := make(chan error, 1)
	op := ownerOp{fn: func(c context.Context) { errc <- fn(c) }}

	select {
	case e.ops <- op:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.baseCtx.Done():
		return ErrEngineStopped
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// submitAsync queues fn on the owner loop without waiting; timers use it
func (e *Engine) submitAsync(fn func(context.Context)) {
	select {
	case e.ops <- ownerOp{fn: fn}:
	case <-e.baseCtx.Done():
	}
}

// CreateBlock validates and persists a new block, mirrors it to the calendar
// if one is configured, and reconciles notifications.
func (e *Engine) CreateBlock(ctx context.Context, block *models.TimeBlock) error {
	block.Title = validation.SanitizeText(block.Title)
	if err := validation.ValidateBlockWindow(block); err != nil {
		return err
	}
	if block.ID == uuid.Nil {
		block.ID = uuid.New()
	}
	if block.Status == "" {
		block.Status = models.BlockStatusNotStarted
	}
	if err := validation.ValidateBlockStatus(string(block.Status)); err != nil {
		return err
	}

	return e.do(ctx, func(c context.Context) error {
		if err := e.guard.Do("create_block", func() error {
			return e.blocks.Create(c, block)
		}); err != nil {
			return err
		}
		e.mirrorCreate(c, block)
		e.afterScheduleChange(c, block.StartTime)
		return nil
	})
}

// UpdateBlock validates and persists changes to an existing block. The
// block-start notification id stays stable across edits, so the old pending
// request is canceled first; reconciliation then resubmits with the new
// trigger time.
func (e *Engine) UpdateBlock(ctx context.Context, block *models.TimeBlock) error {
	block.Title = validation.SanitizeText(block.Title)
	if err := validation.ValidateBlockWindow(block); err != nil {
		return err
	}
	if err := validation.ValidateBlockStatus(string(block.Status)); err != nil {
		return err
	}

	return e.do(ctx, func(c context.Context) error {
		existing, err := ValueErr(e.guard, "load_block", (*models.TimeBlock)(nil), func() (*models.TimeBlock, error) {
			return e.blocks.GetByID(c, block.ID)
		})
		if err != nil {
			return err
		}

		if block.CalendarEventID == nil {
			block.CalendarEventID = existing.CalendarEventID
		}
		block.CreatedAt = existing.CreatedAt

		// The id diff cannot see a changed trigger time, so drop the pending
		// request; reconciliation below resubmits it at the new time.
		_ = e.cancelBlockNotification(c, block.ID)

		if err := e.guard.Do("update_block", func() error {
			return e.blocks.Update(c, block)
		}); err != nil {
			return err
		}
		e.mirrorUpdate(c, block)

		if !models.SameDay(existing.StartTime, block.StartTime) {
			e.agg.recompute(c, existing.StartTime)
		}
		e.afterScheduleChange(c, block.StartTime)
		return nil
	})
}

// DeleteBlock removes a block, its mirrored calendar event and its pending
// notification
func (e *Engine) DeleteBlock(ctx context.Context, id uuid.UUID) error {
	return e.do(ctx, func(c context.Context) error {
		existing, err := ValueErr(e.guard, "load_block", (*models.TimeBlock)(nil), func() (*models.TimeBlock, error) {
			return e.blocks.GetByID(c, id)
		})
		if err != nil {
			return err
		}

		if err := e.guard.Do("delete_block", func() error {
			return e.blocks.Delete(c, id)
		}); err != nil {
			return err
		}

		if existing.CalendarEventID != nil {
			if err := e.mirror.DeleteEvent(c, *existing.CalendarEventID); err != nil {
				e.logger.Warn("calendar_delete_failed",
					zap.String("block_id", id.String()),
					zap.Error(err),
				)
			}
		}
		_ = e.cancelBlockNotification(c, id)
		e.afterScheduleChange(c, existing.StartTime)
		return nil
	})
}

// StartBlock moves a block from not_started to in_progress
func (e *Engine) StartBlock(ctx context.Context, id uuid.UUID) error {
	return e.transition(ctx, id, models.BlockStatusInProgress)
}

// CompleteBlock marks a block completed
func (e *Engine) CompleteBlock(ctx context.Context, id uuid.UUID) error {
	return e.transition(ctx, id, models.BlockStatusCompleted)
}

// SkipBlock marks a block skipped
func (e *Engine) SkipBlock(ctx context.Context, id uuid.UUID) error {
	return e.transition(ctx, id, models.BlockStatusSkipped)
}

// ResetBlockStatus returns a block to not_started from any status. The reset
// coordinator is its primary caller.
func (e *Engine) ResetBlockStatus(ctx context.Context, id uuid.UUID) error {
	return e.transition(ctx, id, models.BlockStatusNotStarted)
}

func (e *Engine) transition(ctx context.Context, id uuid.UUID, target models.BlockStatus) error {
	return e.do(ctx, func(c context.Context) error {
		block, err := ValueErr(e.guard, "load_block", (*models.TimeBlock)(nil), func() (*models.TimeBlock, error) {
			return e.blocks.GetByID(c, id)
		})
		if err != nil {
			return err
		}

		changed, err := applyTransition(block, target)
		if err != nil {
			return fmt.Errorf("block %s: %w", id, err)
		}
		if !changed {
			return nil
		}

		if err := e.guard.Do("update_block", func() error {
			return e.blocks.Update(c, block)
		}); err != nil {
			return err
		}

		e.logger.Info("block_transition",
			zap.String("block_id", id.String()),
			zap.String("status", string(target)),
		)

		// Starting, skipping or completing can retire a pending block-start
		// notification, so reconcile before the next queued operation runs.
		e.afterScheduleChange(c, block.StartTime)
		return nil
	})
}

// Block returns a single block by id
func (e *Engine) Block(ctx context.Context, id uuid.UUID) (*models.TimeBlock, error) {
	var block *models.TimeBlock
	err := e.do(ctx, func(c context.Context) error {
		var err error
		block, err = ValueErr(e.guard, "load_block", (*models.TimeBlock)(nil), func() (*models.TimeBlock, error) {
			return e.blocks.GetByID(c, id)
		})
		return err
	})
	return block, err
}

// BlocksForDate returns the date's blocks with their derived display status
func (e *Engine) BlocksForDate(ctx context.Context, date time.Time) ([]BlockView, error) {
	var views []BlockView
	err := e.do(ctx, func(c context.Context) error {
		views = e.blockViews(c, date)
		return nil
	})
	return views, err
}

// DailyProgress recomputes and returns the aggregate for a date
func (e *Engine) DailyProgress(ctx context.Context, date time.Time) (*models.DailyProgress, error) {
	var progress *models.DailyProgress
	err := e.do(ctx, func(c context.Context) error {
		progress = e.agg.recompute(c, date)
		return nil
	})
	return progress, err
}

// WeeklyStats rolls up the calendar week containing anchor
func (e *Engine) WeeklyStats(ctx context.Context, anchor time.Time) (models.WeeklyStats, error) {
	var stats models.WeeklyStats
	err := e.do(ctx, func(c context.Context) error {
		stats = e.agg.weeklyStats(c, anchor)
		return nil
	})
	return stats, err
}

// WeekProgress returns the stored per-day aggregates for the calendar week
// containing anchor, in day order. The week boundaries and the "after now"
// cutoff come from the same clock WeeklyStats uses.
func (e *Engine) WeekProgress(ctx context.Context, anchor time.Time) ([]*models.DailyProgress, error) {
	var days []*models.DailyProgress
	err := e.do(ctx, func(c context.Context) error {
		days = e.agg.weekDays(c, anchor)
		return nil
	})
	return days, err
}

// SetDayFeedback stores the user-editable fields of a day's progress row:
// rating (1–5), free-text notes and the summary-viewed flag. Nil fields are
// left unchanged.
func (e *Engine) SetDayFeedback(ctx context.Context, date time.Time, rating *int, notes *string, viewed *bool) error {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return fmt.Errorf("rating must be between 1 and 5, got %d", *rating)
	}

	return e.do(ctx, func(c context.Context) error {
		progress, err := ValueErr(e.guard, "load_progress", (*models.DailyProgress)(nil), func() (*models.DailyProgress, error) {
			return e.progress.LoadOrCreate(c, date)
		})
		if err != nil {
			return err
		}

		if rating != nil {
			progress.Rating = rating
		}
		if notes != nil {
			progress.Notes = *notes
		}
		if viewed != nil {
			progress.SummaryViewed = *viewed
		}

		if err := e.guard.Do("save_progress", func() error {
			return e.progress.Save(c, progress)
		}); err != nil {
			return err
		}

		if models.SameDay(date, e.clock()) {
			e.refreshToday(c)
		}
		return nil
	})
}

// Settings returns the current scheduling configuration
func (e *Engine) Settings(ctx context.Context) (models.SchedulingConfig, error) {
	var cfg models.SchedulingConfig
	err := e.do(ctx, func(c context.Context) error {
		cfg = e.loadConfig(c)
		return nil
	})
	return cfg, err
}

// UpdateSettings validates and persists the scheduling configuration and
// reacts to what changed: toggling auto-reset arms or cancels the midnight
// timer, and every change triggers a reconciliation.
func (e *Engine) UpdateSettings(ctx context.Context, cfg models.SchedulingConfig) error {
	if _, _, err := cfg.ReminderClock(); err != nil {
		return err
	}
	if err := validation.ValidateResetBehavior(string(cfg.AutoResetBehavior)); err != nil {
		return err
	}

	return e.do(ctx, func(c context.Context) error {
		prev := e.loadConfig(c)

		// lastAutoResetDate is owned by the reset coordinator, never by the
		// settings surface
		cfg.LastAutoResetDate = prev.LastAutoResetDate

		if err := e.guard.Do("save_settings", func() error {
			return e.settings.SaveSchedulingConfig(c, cfg)
		}); err != nil {
			return err
		}

		switch {
		case cfg.AutoResetEnabled && !prev.AutoResetEnabled:
			e.checkAutoReset(c)
			e.armMidnightTimer()
		case !cfg.AutoResetEnabled && prev.AutoResetEnabled:
			e.midnightTimer.Cancel()
		}

		e.reconcileNow(c)
		e.refreshToday(c)
		return nil
	})
}

// EnableNotifications is the explicit user action that requests platform
// permission. Denial is surfaced (unlike everywhere else) and the
// notificationsEnabled setting is reverted to off.
func (e *Engine) EnableNotifications(ctx context.Context) error {
	granted, err := e.notifier.RequestPermission(ctx)
	if err != nil {
		e.logger.Warn("permission_request_failed", zap.Error(err))
		granted = false
	}

	return e.do(ctx, func(c context.Context) error {
		cfg := e.loadConfig(c)
		cfg.NotificationsEnabled = granted
		if saveErr := e.guard.Do("save_settings", func() error {
			return e.settings.SaveSchedulingConfig(c, cfg)
		}); saveErr != nil {
			return saveErr
		}

		if !granted {
			return ErrPermissionDenied
		}

		e.permissionGranted = true
		e.reconcileNow(c)
		e.refreshToday(c)
		return nil
	})
}

// RescheduleAll recomputes the whole notification set. The host calls it on
// resume/foreground to repair drift after a long background period.
func (e *Engine) RescheduleAll(ctx context.Context) error {
	return e.do(ctx, func(c context.Context) error {
		e.reconcileNow(c)
		e.refreshToday(c)
		return nil
	})
}

// Snapshot returns a copy of the current in-memory state
func (e *Engine) Snapshot() State {
	e.stateMu.RLock()
	defer e.stateMu.RUnlock()

	snapshot := e.state
	snapshot.Blocks = make([]BlockView, len(e.state.Blocks))
	copy(snapshot.Blocks, e.state.Blocks)
	if e.state.Progress != nil {
		progress := *e.state.Progress
		snapshot.Progress = &progress
	}
	snapshot.Message = e.guard.Message()
	return snapshot
}

// ExportData gathers everything the export document needs in one serialized
// read
func (e *Engine) ExportData(ctx context.Context) ([]*models.TimeBlock, []*models.DailyProgress, models.SchedulingConfig, error) {
	var (
		blocks   []*models.TimeBlock
		progress []*models.DailyProgress
		cfg      models.SchedulingConfig
	)
	err := e.do(ctx, func(c context.Context) error {
		var err error
		blocks, err = ValueErr(e.guard, "load_all_blocks", []*models.TimeBlock(nil), func() ([]*models.TimeBlock, error) {
			return e.blocks.LoadAll(c)
		})
		if err != nil {
			return err
		}
		progress, err = ValueErr(e.guard, "load_all_progress", []*models.DailyProgress(nil), func() ([]*models.DailyProgress, error) {
			return e.progress.LoadAll(c)
		})
		if err != nil {
			return err
		}
		cfg = e.loadConfig(c)
		return nil
	})
	return blocks, progress, cfg, err
}

// blockViews loads a date's blocks and derives their display status
func (e *Engine) blockViews(c context.Context, date time.Time) []BlockView {
	dayStart := models.StartOfDay(date)
	dayEnd := dayStart.AddDate(0, 0, 1)

	blocks := Value(e.guard, "load_blocks", []*models.TimeBlock(nil), func() ([]*models.TimeBlock, error) {
		return e.blocks.LoadRange(c, dayStart, dayEnd)
	})

	now := e.clock()
	views := make([]BlockView, 0, len(blocks))
	for _, block := range blocks {
		views = append(views, BlockView{
			TimeBlock:     *block,
			DisplayStatus: DisplayStatusAt(block, now),
		})
	}
	return views
}

// afterScheduleChange is the shared tail of every mutation: re-aggregate the
// affected date, reconcile notifications, refresh the snapshot
func (e *Engine) afterScheduleChange(c context.Context, date time.Time) {
	e.agg.recompute(c, date)
	e.reconcileNow(c)
	e.refreshToday(c)
}

// reconcileNow runs one scheduler pass over the current scheduling horizon
func (e *Engine) reconcileNow(c context.Context) {
	cfg := e.loadConfig(c)
	now := e.clock()

	blocks := Value(e.guard, "load_blocks", []*models.TimeBlock(nil), func() ([]*models.TimeBlock, error) {
		return e.blocks.LoadRange(c, models.StartOfDay(now), now.Add(schedulingHorizon))
	})

	if _, err := e.sched.reconcile(c, blocks, cfg, e.permissionGranted); err != nil {
		// Logged inside the scheduler; the next trigger retries from scratch
		return
	}
}

// refreshToday rebuilds the snapshot for the current date
func (e *Engine) refreshToday(c context.Context) {
	now := e.clock()
	views := e.blockViews(c, now)
	progress := e.agg.recompute(c, now)

	e.stateMu.Lock()
	e.state = State{
		Date:        models.StartOfDay(now),
		Blocks:      views,
		Progress:    progress,
		RefreshedAt: now,
	}
	e.stateMu.Unlock()
}

// cancelBlockNotification drops a block's pending start notification; the
// next reconciliation resubmits it if it still belongs in the target set
func (e *Engine) cancelBlockNotification(c context.Context, id uuid.UUID) error {
	if err := e.notifier.Cancel(c, []string{models.BlockStartNotificationID(id)}); err != nil {
		e.logger.Warn("notification_cancel_failed",
			zap.String("block_id", id.String()),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (e *Engine) loadConfig(c context.Context) models.SchedulingConfig {
	return Value(e.guard, "load_settings", models.DefaultSchedulingConfig(), func() (models.SchedulingConfig, error) {
		return e.settings.LoadSchedulingConfig(c)
	})
}

// armRefreshTimer schedules the next refresh tick. The re-arm happens on the
// owner loop, like the midnight timer's, so a tick racing Shutdown cannot
// re-arm after the timer was canceled.
func (e *Engine) armRefreshTimer() {
	if e.baseCtx.Err() != nil {
		return
	}
	e.refreshTimer.Schedule(e.refreshEvery, func() {
		e.submitAsync(func(c context.Context) {
			e.reconcileNow(c)
			e.refreshToday(c)
			e.armRefreshTimer()
		})
	})
}

// TransientMessage returns the current short-lived user-facing message
func (e *Engine) TransientMessage() string {
	return e.guard.Message()
}
