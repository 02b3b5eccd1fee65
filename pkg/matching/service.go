package matching

import (
	"context"

	"github.com/Gobusters/ectologger"

	"github.com/timberline/cedar/pkg/legacy"
	"github.com/timberline/cedar/pkg/models"
	"github.com/timberline/cedar/pkg/tracing"
)

// Service is the match orchestrator: it resolves which matcher applies to a
// submission's step and client type, dispatches to it, and surfaces the
// outcome unchanged. Matchers are registered once in a closed lookup table;
// there is no runtime discovery.
type Service struct {
	log      ectologger.Logger
	matchers map[StepKind]StepMatcher
}

// NewService wires every step matcher against the given registry gateway.
func NewService(log ectologger.Logger, gateway legacy.Gateway) *Service {
	matchers := make(map[StepKind]StepMatcher)
	for _, matcher := range []StepMatcher{
		NewIndividualMatcher(log, gateway),
		NewRegisteredMatcher(log, gateway),
		NewOthersMatcher(log, gateway),
		NewFirstNationsMatcher(log, gateway),
		NewLocationMatcher(log, gateway),
		NewContactMatcher(log, gateway),
	} {
		matchers[matcher.Kind()] = matcher
	}

	return &Service{
		log:      log,
		matchers: matchers,
	}
}

// MatchClients validates the submission for the given step, resolves the
// applicable matcher and runs it. Returns nil when the submission may
// proceed, a ConflictError when legacy data matched, or an invalid-request /
// not-implemented rejection.
func (s *Service) MatchClients(ctx context.Context, submission *models.Submission, step int) error {
	ctx, span := tracing.StartSpan(ctx, "matching.Service.MatchClients")
	defer span.End()

	if submission == nil {
		return NewInvalidRequestError("submission is required")
	}

	clientType := submission.BusinessInformation.ClientType
	if legacy.Blank(clientType) {
		return NewInvalidRequestError("businessInformation.clientType is required")
	}

	kind, err := ResolveStepKind(step, clientType)
	if err != nil {
		return err
	}

	log := s.log.WithContext(ctx).WithFields(map[string]any{
		"step":        step,
		"client_type": clientType,
		"matcher":     string(kind),
	})
	log.Debug("Dispatching submission to matcher")

	matcher, ok := s.matchers[kind]
	if !ok {
		// Registry and ResolveStepKind cover the same kinds; reaching this
		// means a matcher was never registered.
		return NewInvalidRequestError("no matcher registered for %s", kind)
	}

	if err := matcher.Match(ctx, submission); err != nil {
		if conflict, ok := AsConflict(err); ok {
			log.WithFields(map[string]any{"match_count": len(conflict.Matches)}).Info("Submission matched existing clients")
		}
		return err
	}

	log.Debug("Submission matched no existing clients")
	return nil
}

// ResolveStepKind maps a step number and client type to the matcher that
// handles it. Recognized-but-unhandled client types are reported as
// not-implemented; everything else unknown is an invalid request.
func ResolveStepKind(step int, clientType string) (StepKind, error) {
	switch step {
	case models.StepBusinessInformation:
		switch clientType {
		case models.ClientTypeIndividual:
			return StepKindIndividual, nil
		case models.ClientTypeCorporation, models.ClientTypeRegisteredSoleProp:
			return StepKindRegistered, nil
		case models.ClientTypeGovernment, models.ClientTypeForestAgency, models.ClientTypeUnregistered:
			return StepKindOthers, nil
		case models.ClientTypeFirstNationBand, models.ClientTypeFirstNationTribal:
			return StepKindFirstNations, nil
		case models.ClientTypeUnregisteredSP, models.ClientTypeGeneralPartnership:
			return "", NewNotImplementedError("client type %s is not supported yet", clientType)
		default:
			return "", NewInvalidRequestError("unknown client type %q", clientType)
		}
	case models.StepLocation:
		return StepKindLocation, nil
	case models.StepContact:
		return StepKindContact, nil
	default:
		return "", NewInvalidRequestError("unknown submission step %d", step)
	}
}
