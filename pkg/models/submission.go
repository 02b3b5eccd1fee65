// Package models holds the shared DTOs for client submissions and matching.
package models

import (
	"encoding/json"
	"strings"
	"time"
)

// ClientType codes classify the submitting entity and, combined with the
// submission step, select the matcher that runs.
const (
	ClientTypeIndividual         = "I"   // individual, no registration
	ClientTypeCorporation        = "C"   // incorporated company
	ClientTypeRegisteredSoleProp = "RSP" // registered sole proprietorship
	ClientTypeUnregisteredSP     = "USP" // unregistered sole proprietorship
	ClientTypeGeneralPartnership = "GP"  // general partnership
	ClientTypeGovernment         = "G"
	ClientTypeForestAgency       = "F"
	ClientTypeUnregistered       = "U"
	ClientTypeFirstNationBand    = "B"
	ClientTypeFirstNationTribal  = "T"
)

// Submission step numbers as presented by the intake wizard.
const (
	StepBusinessInformation = 1
	StepLocation            = 2
	StepContact             = 3
)

// Submission is one new/updated client submission as received from intake.
type Submission struct {
	BusinessInformation BusinessInformation `json:"businessInformation" validate:"required"`
	Location            Location            `json:"location"`
}

// BusinessInformation carries the business/identity section of a submission.
type BusinessInformation struct {
	BusinessName         string `json:"businessName"`
	LegalType            string `json:"legalType"`
	BusinessType         string `json:"businessType"`
	ClientType           string `json:"clientType" validate:"required"`
	RegistrationNumber   string `json:"registrationNumber"`
	IdentificationType   string `json:"identificationType"`
	ClientIdentification string `json:"clientIdentification"`
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Birthdate            string `json:"birthdate"` // YYYY-MM-DD
	DoingBusinessAs      string `json:"doingBusinessAs"`
	Acronym              string `json:"acronym"`
	WorkSafeBCNumber     string `json:"workSafeBcNumber"`
}

// Location carries the addresses and contacts of a submission.
type Location struct {
	Addresses []Address `json:"addresses"`
	Contacts  []Contact `json:"contacts"`
}

// Address is one mailing/street address of a submission. Index is assigned at
// matching time to build field paths for reporting; callers never supply it.
type Address struct {
	StreetAddress        string `json:"streetAddress"`
	Country              string `json:"country"`
	Province             string `json:"province"`
	City                 string `json:"city"`
	PostalCode           string `json:"postalCode"`
	BusinessPhoneNumber  string `json:"businessPhoneNumber"`
	SecondaryPhoneNumber string `json:"secondaryPhoneNumber"`
	FaxNumber            string `json:"faxNumber"`
	EmailAddress         string `json:"emailAddress"`

	Index int `json:"-"`
}

// Valid reports whether the address carries the sub-fields a location search
// needs. A submission with any invalid address is rejected before searching.
func (a Address) Valid() bool {
	return strings.TrimSpace(a.StreetAddress) != "" &&
		strings.TrimSpace(a.City) != "" &&
		strings.TrimSpace(a.Province) != "" &&
		strings.TrimSpace(a.PostalCode) != "" &&
		strings.TrimSpace(a.Country) != ""
}

// Contact is one contact person of a submission. Index is assigned at
// matching time, like Address.Index.
type Contact struct {
	FirstName            string `json:"firstName"`
	LastName             string `json:"lastName"`
	Email                string `json:"email"`
	BusinessPhoneNumber  string `json:"businessPhoneNumber"`
	SecondaryPhoneNumber string `json:"secondaryPhoneNumber"`
	FaxNumber            string `json:"faxNumber"`

	Index int `json:"-"`
}

// Valid reports whether the contact carries the sub-fields a contact search
// needs.
func (c Contact) Valid() bool {
	return strings.TrimSpace(c.FirstName) != "" &&
		strings.TrimSpace(c.LastName) != "" &&
		strings.TrimSpace(c.Email) != ""
}

// MatchResult is one candidate-match outcome: the submission field that
// collided, the comma-joined legacy client numbers it collided with, and
// whether the hit is a soft (fuzzy) warning or a hard stop. Transient; it only
// exists within one matching invocation.
type MatchResult struct {
	Field           string `json:"field"`
	MatchingClients string `json:"match"`
	Fuzzy           bool   `json:"fuzzy"`
}

// SubmissionStatus constants for the persisted submission lifecycle.
const (
	SubmissionStatusNew      = "new"
	SubmissionStatusMatched  = "matched"
	SubmissionStatusConflict = "conflict"
	SubmissionStatusFailed   = "failed"
)

// SubmissionRecord is the persisted form of a submission.
type SubmissionRecord struct {
	ID         string          `json:"id" db:"id"`
	ClientType string          `json:"client_type" db:"client_type"`
	Status     string          `json:"status" db:"status"`
	Data       json.RawMessage `json:"data" db:"data"`
	Matches    json.RawMessage `json:"matches,omitempty" db:"matches"`
	CreatedBy  string          `json:"created_by,omitempty" db:"created_by"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at" db:"updated_at"`
}

// CreateSubmissionRequest is the intake payload for persisting a submission.
type CreateSubmissionRequest struct {
	Submission Submission `json:"submission" validate:"required"`
}
