package models

import (
	"errors"
	"fmt"
)

// ErrInvalidAssignmentTarget is returned when a target names zero or two assignees.
var ErrInvalidAssignmentTarget = errors.New("exactly one of team or individual must be set")

// ErrAssignmentInvariant is returned when persisted assignment columns do not
// form one of the three legal shapes.
var ErrAssignmentInvariant = errors.New("assignment invariant violated")

// Assignment is NONE, Individual(userID) or Team(teamID). The zero value is NONE.
// Fields are unexported so the only way to build one is through the constructors.
type Assignment struct {
	kind   AssignmentType
	userID string
	teamID string
}

func NoAssignment() Assignment {
	return Assignment{kind: AssignmentNone}
}

func IndividualAssignment(userID string) Assignment {
	return Assignment{kind: AssignmentIndividual, userID: userID}
}

func TeamAssignment(teamID string) Assignment {
	return Assignment{kind: AssignmentTeam, teamID: teamID}
}

func (a Assignment) Kind() AssignmentType {
	if a.kind == "" {
		return AssignmentNone
	}
	return a.kind
}

func (a Assignment) IsNone() bool {
	return a.Kind() == AssignmentNone
}

func (a Assignment) Individual() (string, bool) {
	return a.userID, a.kind == AssignmentIndividual
}

func (a Assignment) Team() (string, bool) {
	return a.teamID, a.kind == AssignmentTeam
}

// AssigneeID is the user or team id, or "" for NONE.
func (a Assignment) AssigneeID() string {
	switch a.Kind() {
	case AssignmentIndividual:
		return a.userID
	case AssignmentTeam:
		return a.teamID
	}
	return ""
}

func (a Assignment) Equal(b Assignment) bool {
	return a.Kind() == b.Kind() && a.userID == b.userID && a.teamID == b.teamID
}

func (a Assignment) String() string {
	switch a.Kind() {
	case AssignmentIndividual:
		return "individual:" + a.userID
	case AssignmentTeam:
		return "team:" + a.teamID
	}
	return "none"
}

// AssignmentTarget is the request shape: exactly one field must be set.
type AssignmentTarget struct {
	TeamID       *string `json:"team,omitempty"`
	IndividualID *string `json:"individual,omitempty"`
}

// Resolve turns the target into an Assignment.
func (t AssignmentTarget) Resolve() (Assignment, error) {
	hasTeam := t.TeamID != nil && *t.TeamID != ""
	hasIndividual := t.IndividualID != nil && *t.IndividualID != ""

	switch {
	case hasTeam && hasIndividual, !hasTeam && !hasIndividual:
		return Assignment{}, ErrInvalidAssignmentTarget
	case hasTeam:
		return TeamAssignment(*t.TeamID), nil
	default:
		return IndividualAssignment(*t.IndividualID), nil
	}
}

// assignmentFromColumns validates the stored shape.
func assignmentFromColumns(kind AssignmentType, userID, teamID *string) (Assignment, error) {
	hasUser := userID != nil && *userID != ""
	hasTeam := teamID != nil && *teamID != ""

	switch kind {
	case AssignmentNone, "":
		if !hasUser && !hasTeam {
			return NoAssignment(), nil
		}
	case AssignmentIndividual:
		if hasUser && !hasTeam {
			return IndividualAssignment(*userID), nil
		}
	case AssignmentTeam:
		if hasTeam && !hasUser {
			return TeamAssignment(*teamID), nil
		}
	}
	return Assignment{}, fmt.Errorf("%w: type=%q user_set=%t team_set=%t", ErrAssignmentInvariant, kind, hasUser, hasTeam)
}
