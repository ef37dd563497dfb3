package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func TestAssignmentTarget_Resolve(t *testing.T) {
	tests := []struct {
		name    string
		target  AssignmentTarget
		want    Assignment
		wantErr bool
	}{
		{name: "team", target: AssignmentTarget{TeamID: ptr("t1")}, want: TeamAssignment("t1")},
		{name: "individual", target: AssignmentTarget{IndividualID: ptr("u1")}, want: IndividualAssignment("u1")},
		{name: "both", target: AssignmentTarget{TeamID: ptr("t1"), IndividualID: ptr("u1")}, wantErr: true},
		{name: "neither", target: AssignmentTarget{}, wantErr: true},
		{name: "empty strings", target: AssignmentTarget{TeamID: ptr(""), IndividualID: ptr("")}, wantErr: true},
		{name: "empty team with individual", target: AssignmentTarget{TeamID: ptr(""), IndividualID: ptr("u1")}, want: IndividualAssignment("u1")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.target.Resolve()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidAssignmentTarget)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestAssignmentTarget_JSON(t *testing.T) {
	var target AssignmentTarget
	require.NoError(t, json.Unmarshal([]byte(`{"team":"t1"}`), &target))
	a, err := target.Resolve()
	require.NoError(t, err)
	assert.Equal(t, "team:t1", a.String())
}

func TestAssignment_Accessors(t *testing.T) {
	var zero Assignment
	assert.True(t, zero.IsNone())
	assert.Equal(t, AssignmentNone, zero.Kind())
	assert.True(t, zero.Equal(NoAssignment()))
	assert.Equal(t, "", zero.AssigneeID())

	ind := IndividualAssignment("u1")
	id, ok := ind.Individual()
	assert.True(t, ok)
	assert.Equal(t, "u1", id)
	_, ok = ind.Team()
	assert.False(t, ok)
	assert.Equal(t, "u1", ind.AssigneeID())

	// same id, different kind
	assert.False(t, IndividualAssignment("x").Equal(TeamAssignment("x")))
}

func TestProject_SetAssignmentShapes(t *testing.T) {
	var p Project

	p.SetAssignment(TeamAssignment("t1"))
	assert.Equal(t, AssignmentTeam, p.AssignedType)
	assert.Nil(t, p.AssignedUserID)
	require.NotNil(t, p.TeamID)
	assert.Equal(t, "t1", *p.TeamID)
	assert.Nil(t, p.TalentID)

	p.SetAssignment(IndividualAssignment("u1"))
	assert.Equal(t, AssignmentIndividual, p.AssignedType)
	assert.Nil(t, p.AssignedTeamID)
	assert.Nil(t, p.TeamID, "legacy team column follows the assignment")
	assert.Nil(t, p.TalentID, "legacy talent column stays empty")

	a, err := p.Assignment()
	require.NoError(t, err)
	assert.True(t, a.Equal(IndividualAssignment("u1")))

	p.SetAssignment(NoAssignment())
	cols := p.AssignmentColumns()
	assert.Equal(t, AssignmentNone, cols["assigned_type"])
	assert.Nil(t, cols["assigned_user_id"])
}

func TestProject_AssignmentRejectsIllegalColumns(t *testing.T) {
	tests := []struct {
		name string
		p    Project
	}{
		{name: "none with user", p: Project{AssignedType: AssignmentNone, AssignedUserID: ptr("u1")}},
		{name: "individual without user", p: Project{AssignedType: AssignmentIndividual}},
		{name: "individual with team", p: Project{AssignedType: AssignmentIndividual, AssignedUserID: ptr("u1"), AssignedTeamID: ptr("t1")}},
		{name: "team with user", p: Project{AssignedType: AssignmentTeam, AssignedUserID: ptr("u1"), AssignedTeamID: ptr("t1")}},
		{name: "unknown type", p: Project{AssignedType: "GROUP", AssignedTeamID: ptr("t1")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.p.Assignment()
			assert.ErrorIs(t, err, ErrAssignmentInvariant)
			assert.ErrorIs(t, tt.p.BeforeSave(nil), ErrAssignmentInvariant)
		})
	}
}

func TestProjectStatus_CanTransitionTo(t *testing.T) {
	allowed := []struct{ from, to ProjectStatus }{
		{ProjectStatusSubmitted, ProjectStatusUnderReview},
		{ProjectStatusSubmitted, ProjectStatusNeedsUpdate},
		{ProjectStatusNeedsUpdate, ProjectStatusSubmitted},
		{ProjectStatusUnderReview, ProjectStatusSent},
		{ProjectStatusSent, ProjectStatusSent},
		{ProjectStatusSent, ProjectStatusPublished},
		{ProjectStatusPublished, ProjectStatusPublished},
		{ProjectStatusSent, ProjectStatusCancelled},
	}
	for _, tt := range allowed {
		assert.True(t, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}

	denied := []struct{ from, to ProjectStatus }{
		{ProjectStatusSubmitted, ProjectStatusPublished},
		{ProjectStatusUnderReview, ProjectStatusUnderReview},
		{ProjectStatusPublished, ProjectStatusCancelled},
		{ProjectStatusCancelled, ProjectStatusSubmitted},
		{ProjectStatusCancelled, ProjectStatusCancelled},
		{ProjectStatusSent, ProjectStatusSubmitted},
	}
	for _, tt := range denied {
		assert.False(t, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}

	assert.True(t, ProjectStatusPublished.Terminal())
	assert.False(t, ProjectStatusSent.Terminal())
}
