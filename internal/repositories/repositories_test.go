package repositories

import (
	"testing"
	"time"

	"finley_backend/internal/models"
	"finley_backend/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSOWRepository_LatestBreaksTiesByVersion(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSOWRepository()
	p := testutil.CreateProject(t, db, "P", nil)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for v := 1; v <= 3; v++ {
		sow := &models.SOW{ProjectID: p.ID, Version: v, Status: models.SOWStatusDraft}
		sow.CreatedAt = at
		require.NoError(t, repo.Create(db, sow))
	}

	latest, err := repo.FindLatest(db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, latest.Version)

	next, err := repo.NextVersion(db, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, next)

	_, err = repo.FindLatest(db, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrSOWNotFound)
}

func TestSOWRepository_LatestForProjects(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSOWRepository()
	a := testutil.CreateProject(t, db, "A", nil)
	b := testutil.CreateProject(t, db, "B", nil)
	empty := testutil.CreateProject(t, db, "C", nil)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, pid := range []string{a.ID, a.ID, b.ID} {
		sow := &models.SOW{ProjectID: pid, Version: i + 1}
		sow.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, repo.Create(db, sow))
	}

	latest, err := repo.FindLatestForProjects(db, []string{a.ID, b.ID, empty.ID})
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, 2, latest[a.ID].Version)
	assert.Equal(t, 3, latest[b.ID].Version)
	assert.Nil(t, latest[empty.ID])

	none, err := repo.FindLatestForProjects(db, nil)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestSOWRepository_SupersedePublished(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewSOWRepository()
	p := testutil.CreateProject(t, db, "P", nil)

	old := &models.SOW{ProjectID: p.ID, Version: 1, Status: models.SOWStatusPublished}
	keep := &models.SOW{ProjectID: p.ID, Version: 2, Status: models.SOWStatusPublished}
	require.NoError(t, repo.Create(db, old))
	require.NoError(t, repo.Create(db, keep))

	n, err := repo.SupersedePublished(db, p.ID, keep.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	count, err := repo.CountByStatus(db, p.ID, models.SOWStatusPublished)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)
}

func TestTeamRepository_FindLeader(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTeamRepository()
	leader := testutil.CreateUser(t, db, models.UserRoleTalent, "lead@example.com")
	member := testutil.CreateUser(t, db, models.UserRoleTalent, "m@example.com")

	explicit := testutil.CreateTeam(t, db, "Explicit", leader, member)
	got, err := repo.FindLeader(db, explicit.ID)
	require.NoError(t, err)
	assert.Equal(t, leader.ID, got.ID)

	// no leader reference: fall back to the ACTIVE LEADER membership
	byRole := testutil.CreateTeam(t, db, "ByRole", nil)
	testutil.AddTeamMember(t, db, byRole, member, models.TeamRoleLeader, models.TeamMemberActive)
	got, err = repo.FindLeader(db, byRole.ID)
	require.NoError(t, err)
	assert.Equal(t, member.ID, got.ID)

	inactive := testutil.CreateTeam(t, db, "Inactive", nil)
	testutil.AddTeamMember(t, db, inactive, leader, models.TeamRoleLeader, models.TeamMemberInactive)
	_, err = repo.FindLeader(db, inactive.ID)
	assert.ErrorIs(t, err, ErrTeamLeaderNotFound)

	_, err = repo.FindLeader(db, "00000000-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestProjectRepository_FindForAssignee(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewProjectRepository()
	user := testutil.CreateUser(t, db, models.UserRoleTalent, "u@example.com")
	team := testutil.CreateTeam(t, db, "T", nil, user)

	direct := testutil.CreateProject(t, db, "Direct", nil)
	direct.SetAssignment(models.IndividualAssignment(user.ID))
	require.NoError(t, repo.Save(db, direct))

	viaTeam := testutil.CreateProject(t, db, "Team", nil)
	viaTeam.SetAssignment(models.TeamAssignment(team.ID))
	require.NoError(t, repo.Save(db, viaTeam))

	testutil.CreateProject(t, db, "Unassigned", nil)

	got, err := repo.FindForAssignee(db, user.ID, []string{team.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = repo.FindForAssignee(db, user.ID, nil)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, direct.ID, got[0].ID)

	reloaded, err := repo.FindByID(db, viaTeam.ID)
	require.NoError(t, err)
	require.NotNil(t, reloaded.TeamID)
	assert.Equal(t, team.ID, *reloaded.TeamID)
}
