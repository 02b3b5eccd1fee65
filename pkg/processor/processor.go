// Package processor consumes submission messages, runs them through the
// matching engine, records the outcome and emits an outcome event.
package processor

import (
	"context"
	"encoding/json"

	"github.com/Gobusters/ectologger"

	appcontext "github.com/timberline/cedar/pkg/context"
	"github.com/timberline/cedar/pkg/kafka"
	"github.com/timberline/cedar/pkg/matching"
	"github.com/timberline/cedar/pkg/models"
	"github.com/timberline/cedar/pkg/tracing"
)

// Matcher runs the matching engine for one submission step.
type Matcher interface {
	MatchClients(ctx context.Context, submission *models.Submission, step int) error
}

// SubmissionStore records matching outcomes on persisted submissions.
type SubmissionStore interface {
	UpdateOutcome(ctx context.Context, id string, status string, matches []byte) error
}

// EventPublisher emits submission outcome events.
type EventPublisher interface {
	PublishSubmissionEvent(ctx context.Context, event *kafka.SubmissionEvent) error
}

// Processor handles submission message processing
type Processor struct {
	logger    ectologger.Logger
	matcher   Matcher
	store     SubmissionStore
	publisher EventPublisher
}

// NewProcessor creates a new submission processor
func NewProcessor(logger ectologger.Logger, matcher Matcher, store SubmissionStore, publisher EventPublisher) *Processor {
	return &Processor{
		logger:    logger,
		matcher:   matcher,
		store:     store,
		publisher: publisher,
	}
}

// HandleMessage processes one intake message end to end. Returning an error
// keeps the message uncommitted so it is retried; rejections (bad client
// type, unsupported step) are terminal and recorded as failed instead.
func (p *Processor) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Processor.HandleMessage")
	defer span.End()

	if msg.Submission == nil {
		p.logger.WithContext(ctx).WithFields(map[string]any{"key": msg.Key}).Error("Message has no parsed submission")
		return nil
	}

	sub := msg.Submission
	ctx = appcontext.SetSubmissionID(ctx, sub.SubmissionID)
	log := p.logger.WithContext(ctx).WithFields(map[string]any{
		"submission_id": sub.SubmissionID,
		"step":          sub.Step,
	})

	err := p.matcher.MatchClients(ctx, &sub.Submission, sub.Step)
	switch {
	case err == nil:
		return p.recordOutcome(ctx, sub, models.SubmissionStatusMatched, kafka.EventSubmissionMatched, nil, "")

	default:
		if conflict, ok := matching.AsConflict(err); ok {
			log.WithFields(map[string]any{"match_count": len(conflict.Matches)}).Info("Submission conflicts with existing clients")
			return p.recordOutcome(ctx, sub, models.SubmissionStatusConflict, kafka.EventSubmissionConflict, conflict.Matches, "")
		}
		if matching.IsInvalidRequest(err) || matching.IsNotImplemented(err) {
			// Terminal: retrying an unsupported or malformed submission
			// cannot succeed.
			log.WithError(err).Warn("Submission rejected by matching")
			return p.recordOutcome(ctx, sub, models.SubmissionStatusFailed, kafka.EventSubmissionFailed, nil, err.Error())
		}
		log.WithError(err).Error("Matching failed, message will be retried")
		return err
	}
}

func (p *Processor) recordOutcome(ctx context.Context, sub *kafka.SubmissionMessage, status, eventType string, matches []models.MatchResult, failure string) error {
	var encoded []byte
	if len(matches) > 0 {
		var err error
		if encoded, err = json.Marshal(matches); err != nil {
			return err
		}
	}

	if err := p.store.UpdateOutcome(ctx, sub.SubmissionID, status, encoded); err != nil {
		return err
	}

	return p.publisher.PublishSubmissionEvent(ctx, &kafka.SubmissionEvent{
		EventType:    eventType,
		SubmissionID: sub.SubmissionID,
		ClientType:   sub.Submission.BusinessInformation.ClientType,
		Step:         sub.Step,
		Matches:      matches,
		Error:        failure,
	})
}
