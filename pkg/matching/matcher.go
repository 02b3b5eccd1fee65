// Package matching implements the client-matching engine: step-specific
// matchers that decide whether an incoming submission collides with an
// existing legacy client record, using exact and fuzzy lookups across
// multiple fields with deterministic conflict resolution.
package matching

import (
	"context"
	"fmt"

	"github.com/timberline/cedar/pkg/models"
)

// StepKind identifies which matcher applies to a submission. Exactly one kind
// is active per invocation, resolved from the step number and client type.
type StepKind string

const (
	StepKindIndividual   StepKind = "individual"
	StepKindRegistered   StepKind = "registered"
	StepKindOthers       StepKind = "others"
	StepKindFirstNations StepKind = "first_nations"
	StepKindLocation     StepKind = "location"
	StepKindContact      StepKind = "contact"
)

// StepMatcher runs the searches for one submission step and reduces them to
// a single decision: nil (proceed), ConflictError (matches found), or an
// invalid-request rejection.
type StepMatcher interface {
	Kind() StepKind
	Match(ctx context.Context, submission *models.Submission) error
}

// Field paths reported in match results. They address the submission payload,
// so review screens can highlight the colliding input.
const (
	fieldBusinessName       = "businessInformation.businessName"
	fieldIdentification     = "businessInformation.identification"
	fieldRegistrationNumber = "businessInformation.registrationNumber"
	fieldAcronym            = "businessInformation.acronym"
	fieldDoingBusinessAs    = "businessInformation.doingBusinessAs"
)

func addressField(index int, name string) string {
	return fmt.Sprintf("location.addresses[%d].%s", index, name)
}

func contactField(index int, name string) string {
	return fmt.Sprintf("location.contacts[%d].%s", index, name)
}

// Legacy registry search keys understood by the gateway.
const (
	registryFieldClientName         = "clientName"
	registryFieldAcronym            = "acronym"
	registryFieldRegistrationNumber = "registrationNumber"
	registryFieldDoingBusinessAs    = "doingBusinessAs"
	registryFieldClientType         = "clientType"
	registryFieldEmail              = "email"
	registryFieldPhone              = "phone"
)

// Fuzzy search flavors understood by the gateway.
const (
	fuzzyKindName = "name"
	fuzzyKindDBA  = "dba"
)
