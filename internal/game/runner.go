// Package game runs one session end to end: it wires the engine to a store,
// a prompter and per-player policies, logs every turn event, and mirrors the
// event stream into the action history.
package game

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/lhoussin/limier/engine"
	"github.com/lhoussin/limier/internal/cache"
)

// publishTimeout bounds each best-effort history write.
const publishTimeout = 2 * time.Second

// Runner owns one session identified by a uuid. It observes the engine's
// event stream; the engine itself stays unaware of logging and Redis.
type Runner struct {
	ID      uuid.UUID
	Session *engine.Session

	log         *logrus.Entry
	pub         *cache.Publisher
	actionIndex int
}

// Config assembles a Runner.
type Config struct {
	Store    engine.Store
	Prompter engine.Prompter
	Policies map[string]engine.Policy

	// SessionID defaults to a fresh uuid. The Postgres store scopes its
	// graph by the same id, so callers seeding that store pass it here.
	SessionID uuid.UUID

	// Publisher may be nil; history recording is then disabled.
	Publisher *cache.Publisher

	// Logger defaults to the standard logrus logger.
	Logger *logrus.Logger

	// SkipPause disables the between-turn acknowledgement, for bot-only
	// games and tests.
	SkipPause bool
}

// New builds the runner and hooks the session's event stream.
func New(cfg Config) *Runner {
	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	id := cfg.SessionID
	if id == uuid.Nil {
		id = uuid.New()
	}
	r := &Runner{
		ID:  id,
		pub: cfg.Publisher,
	}
	r.log = logger.WithField("session", r.ID)

	r.Session = engine.NewSession(cfg.Store, cfg.Prompter, cfg.Policies)
	r.Session.SkipPause = cfg.SkipPause
	r.Session.Events = r.observe
	return r
}

// Run drives turns until ctx is cancelled or the engine reports a structural
// error. Context cancellation is the normal way a game ends.
func (r *Runner) Run(ctx context.Context) error {
	r.log.Info("session starting")
	err := r.Session.Run(ctx)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		r.log.WithField("turns", r.Session.Turn()).Info("session ended")
		return nil
	}
	r.log.WithError(err).Error("session aborted")
	return err
}

// observe translates one engine event into a log line and a history record.
func (r *Runner) observe(ev engine.Event) {
	fields := logrus.Fields{
		"turn":   ev.Turn,
		"player": ev.Player,
	}
	payload := map[string]any{}

	if ev.Target != "" {
		fields["target"] = ev.Target
		payload["target"] = ev.Target
	}
	if ev.Room != nil {
		fields["room"] = ev.Room.Name
		payload["room"] = ev.Room.Name
	}
	if ev.Card != nil {
		fields["card"] = ev.Card.Name
		payload["card"] = ev.Card.Name
	}
	if ev.Hypothesis != nil {
		fields["hypothesis"] = ev.Hypothesis.Key()
		payload["character"] = ev.Hypothesis.Character.Name
		payload["weapon"] = ev.Hypothesis.Weapon.Name
		payload["room"] = ev.Hypothesis.Room.Name
	}

	actionType := actionTypeFor(ev.Type)
	r.log.WithFields(fields).Debug(actionType)

	r.actionIndex++
	rec := cache.GameActionRecord{
		SessionID:   r.ID,
		ActionIndex: r.actionIndex,
		Actor:       ev.Player,
		ActionType:  actionType,
		Payload:     payload,
		Timestamp:   time.Now().UnixMilli(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := r.pub.Publish(ctx, rec); err != nil {
		r.log.WithError(err).WithField("action", rec.ActionIndex).Warn("failed to record action")
	}
}

func actionTypeFor(t engine.EventType) string {
	switch t {
	case engine.EventTurnStarted:
		return cache.ActionTurnStart
	case engine.EventMoved:
		return cache.ActionMove
	case engine.EventHypothesisMade:
		return cache.ActionHypothesis
	case engine.EventPlayerQuestioned:
		return cache.ActionQuestion
	case engine.EventCardRevealed:
		return cache.ActionReveal
	case engine.EventNoReveal:
		return cache.ActionNoReveal
	case engine.EventRepeatHypothesis:
		return cache.ActionRepeatHypothesis
	}
	return string(t)
}
