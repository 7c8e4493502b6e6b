// Package incident turns a finished helpline conversation into a structured
// incident report for dispatchers.
package incident

import (
	"fmt"
	"strings"
	"time"
)

const NotAvailable = "N/A"

const (
	EmergencyTypeFatal    = "fatal"
	EmergencyTypeNonFatal = "non-fatal"
	EmergencyTypeCritical = "critical"

	AgeGroupChild  = "child"
	AgeGroupAdult  = "adult"
	AgeGroupSenior = "senior"
)

type Report struct {
	CallerName             string `json:"caller_name" jsonschema:"title=Caller name,description=Name the caller gave or N/A"`
	EmergencyType          string `json:"emergency_type" jsonschema:"title=Emergency type,enum=fatal,enum=non-fatal,enum=critical,enum=N/A"`
	Location               string `json:"location" jsonschema:"title=Location,description=Address or place of the emergency or N/A"`
	NumberOfPeopleInvolved int    `json:"number_of_people_involved" jsonschema:"title=Number of people involved,minimum=0"`
	AgeGroup               string `json:"age_group" jsonschema:"title=Age group,enum=child,enum=adult,enum=senior,enum=N/A"`
	ImmediateDangers       string `json:"immediate_dangers" jsonschema:"title=Immediate dangers,description=For example fire or gas leak or structural damage. N/A when none were mentioned"`
	MedicalConditions      string `json:"medical_conditions" jsonschema:"title=Medical conditions,description=Known medical conditions mentioned by the caller or N/A"`
	Description            string `json:"description" jsonschema:"title=Description,description=One or two sentences summarising the emergency"`
}

// Verification is the second opinion on a report.
type Verification struct {
	Complete         bool   `json:"complete" jsonschema:"title=Complete,description=Whether the report is correct and sufficient to dispatch emergency services"`
	FollowUpQuestion string `json:"follow_up_question" jsonschema:"title=Follow-up question,description=Question to ask the caller when the report is incomplete or N/A"`
}

// Turn is one line of the transcript handed to the extractor.
type Turn struct {
	Role string
	Text string
	At   time.Time
}

// normalize fills unknown fields with N/A and drops values outside the
// allowed sets.
func (r *Report) normalize() {
	for _, field := range []*string{
		&r.CallerName, &r.Location, &r.ImmediateDangers,
		&r.MedicalConditions, &r.Description,
	} {
		*field = strings.TrimSpace(*field)
		if *field == "" {
			*field = NotAvailable
		}
	}

	r.EmergencyType = oneOf(r.EmergencyType, EmergencyTypeFatal, EmergencyTypeNonFatal, EmergencyTypeCritical)
	r.AgeGroup = oneOf(r.AgeGroup, AgeGroupChild, AgeGroupAdult, AgeGroupSenior)
	if r.NumberOfPeopleInvolved < 0 {
		r.NumberOfPeopleInvolved = 0
	}
}

func oneOf(value string, allowed ...string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range allowed {
		if value == candidate {
			return value
		}
	}
	return NotAvailable
}

// String renders the report the way it is written to the conversation log.
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Caller name: %s\n", r.CallerName)
	fmt.Fprintf(&b, "Emergency type: %s\n", r.EmergencyType)
	fmt.Fprintf(&b, "Location: %s\n", r.Location)
	fmt.Fprintf(&b, "People involved: %d\n", r.NumberOfPeopleInvolved)
	fmt.Fprintf(&b, "Age group: %s\n", r.AgeGroup)
	fmt.Fprintf(&b, "Immediate dangers: %s\n", r.ImmediateDangers)
	fmt.Fprintf(&b, "Medical conditions: %s\n", r.MedicalConditions)
	fmt.Fprintf(&b, "Description: %s", r.Description)
	return b.String()
}

func formatTranscript(turns []Turn) string {
	var b strings.Builder
	for _, turn := range turns {
		speaker := "Caller"
		if turn.Role != "user" {
			speaker = "Operator"
		}
		fmt.Fprintf(&b, "%s: %s\n", speaker, turn.Text)
	}
	return b.String()
}
