package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/control"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/overlay"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/telemetry"
)

// Report describes one processed frame.
type Report struct {
	// Hands is the number of hands the detector found.
	Hands int `json:"hands"`

	// Tracked reports whether the configured hand was present and dispatched.
	Tracked bool            `json:"tracked"`
	Outcome gesture.Outcome `json:"outcome"`

	// Reading is set when the volume gesture ran on this frame.
	Reading *control.Reading `json:"reading,omitempty"`

	Time time.Time `json:"time"`
}

// ProcessFrame detects hands in frame and dispatches the configured hand.
// Drawing happens on frame in place. A frame without the configured hand is
// not an error; detector failures and malformed hands are.
func (a *App) ProcessFrame(ctx context.Context, frame *gocv.Mat) (Report, error) {
	_, span := a.tracer.Start(ctx, "app.ProcessFrame")
	defer span.End()

	report := Report{Time: time.Now()}

	d := a.Detector()
	if d == nil {
		return report, errors.New("no hand detector")
	}

	result, err := d.Detect(frame)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "detect")
		return report, fmt.Errorf("detect hands: %w", err)
	}
	report.Hands = len(result.Hands)

	a.mu.Lock()
	a.frames++
	a.mu.Unlock()
	span.SetAttributes(attribute.Int(telemetry.AttrHandCount, report.Hands))

	hand, ok := result.Hand(a.config.HandIndex)
	if !ok {
		a.setSnapshot(frame)
		return report, nil
	}

	if a.drawer != nil && frame != nil && !frame.Empty() {
		if err := overlay.DrawHand(a.drawer, frame, hand); err != nil {
			log.Printf("Draw hand: %v", err)
		}
	}

	outcome, err := a.dispatcher.Dispatch(hand, frame)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "dispatch")
		return report, err
	}
	report.Tracked = true
	report.Outcome = outcome

	if outcome.Invoked && outcome.Action == a.volume.Name() {
		if r, ok := a.volume.Last(); ok {
			report.Reading = &r
			span.SetAttributes(attribute.Float64(telemetry.AttrVolumePercent, r.Percent))
		}
	}

	span.SetAttributes(
		attribute.String(telemetry.AttrGestureCode, outcome.Code.String()),
		attribute.String(telemetry.AttrGestureAction, outcome.Action),
		attribute.Bool(telemetry.AttrGestureInvoked, outcome.Invoked),
	)

	a.setSnapshot(frame)

	a.mu.Lock()
	a.last = report
	a.hasLast = true
	a.mu.Unlock()

	a.listenersMu.Lock()
	listeners := a.listeners
	a.listenersMu.Unlock()
	for _, fn := range listeners {
		fn(report)
	}

	return report, nil
}

// LastReport returns the report of the most recent frame that tracked a hand.
func (a *App) LastReport() (Report, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.last, a.hasLast
}

// journalPruneInterval is the number of journal writes between prunes.
const journalPruneInterval = 100

// record journals an invoked action. It runs as a dispatcher observer,
// after the action has finished. An entry equal to the previous one is
// skipped.
func (a *App) record(outcome gesture.Outcome) {
	if !a.config.Journal || a.config.Store == nil {
		return
	}

	e := &store.Event{
		Code:   outcome.Code.String(),
		Action: outcome.Action,
	}
	if outcome.Action == a.volume.Name() {
		if r, ok := a.volume.Last(); ok {
			e.Length = r.Length
			e.Level = r.Level
			e.Percent = r.Percent
			e.Applied = r.Applied
		}
	}

	a.journalMu.Lock()
	defer a.journalMu.Unlock()

	if a.hasJournaled && sameEntry(a.journaled, *e) {
		return
	}

	events := a.config.Store.Events()
	if err := events.Create(e); err != nil {
		log.Printf("Journal dispatch: %v", err)
		return
	}
	a.journaled = *e
	a.hasJournaled = true

	if a.config.JournalKeep <= 0 {
		return
	}
	a.sincePrune++
	if a.sincePrune < journalPruneInterval {
		return
	}
	a.sincePrune = 0
	if _, err := events.Prune(a.config.JournalKeep); err != nil {
		log.Printf("Prune journal: %v", err)
	}
}

// sameEntry compares the fields a journal entry is deduplicated on. Length
// is left out: it jitters while the mapped level stays put.
func sameEntry(a, b store.Event) bool {
	return a.Code == b.Code &&
		a.Action == b.Action &&
		a.Level == b.Level &&
		a.Percent == b.Percent &&
		a.Applied == b.Applied
}
