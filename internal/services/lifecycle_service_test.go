package services

import (
	"encoding/json"
	"testing"

	"finley_backend/internal/models"
	"finley_backend/internal/services/dto"
	"finley_backend/internal/testutil"
	"finley_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lifecycleFixture struct {
	admin   *models.User
	client  *models.User
	leader  *models.User
	member  *models.User
	talent  *models.User
	team    *models.Team
	project *models.Project
}

func newLifecycleFixture(t *testing.T, env *testEnv) *lifecycleFixture {
	t.Helper()
	f := &lifecycleFixture{
		admin:  testutil.CreateUser(t, env.db, models.UserRoleAdmin, "admin@example.com"),
		client: testutil.CreateUser(t, env.db, models.UserRoleClient, "client@example.com"),
		leader: testutil.CreateUser(t, env.db, models.UserRoleTalent, "leader@example.com"),
		member: testutil.CreateUser(t, env.db, models.UserRoleTalent, "member@example.com"),
		talent: testutil.CreateUser(t, env.db, models.UserRoleTalent, "solo@example.com"),
	}
	f.team = testutil.CreateTeam(t, env.db, "Crew", f.leader, f.member)
	f.project = testutil.CreateProject(t, env.db, "Brand film", f.client)
	return f
}

func notificationsFor(t *testing.T, env *testEnv, userID string) []models.Notification {
	t.Helper()
	var out []models.Notification
	require.NoError(t, env.db.Where("user_id = ?", userID).Find(&out).Error)
	return out
}

// Scenario D
func TestFinalizeAndSend_TwiceIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)
	svc := env.svc.LifecycleService

	_, err := svc.Draft(env.ctx, env.db, f.project.ID, f.admin.ID, "scope v1")
	require.NoError(t, err)

	req := &dto.FinalizeRequest{Assignment: models.AssignmentTarget{TeamID: &f.team.ID}}
	first, err := svc.FinalizeAndSend(env.ctx, env.db, f.project.ID, req)
	require.NoError(t, err)
	second, err := svc.FinalizeAndSend(env.ctx, env.db, f.project.ID, req)
	require.NoError(t, err)

	assert.Equal(t, first.SOW.ID, second.SOW.ID)
	assert.Equal(t, models.SOWStatusPublished, second.SOW.Status)
	assert.EqualValues(t, 1, countSOWs(t, env, f.project.ID, models.SOWStatusPublished))

	p := testutil.ReloadProject(t, env.db, f.project.ID)
	assert.Equal(t, models.ProjectStatusSent, p.Status)
	assert.Equal(t, models.AssignmentTeam, p.AssignedType)
	assert.Equal(t, f.team.ID, *p.AssignedTeamID)
	assertShape(t, p)

	require.NotNil(t, first.NotificationID)
	require.NotNil(t, second.NotificationID)
	assert.Equal(t, *first.NotificationID, *second.NotificationID)
	assert.Len(t, notificationsFor(t, env, f.leader.ID), 1, "one notification per leader")
	assert.Empty(t, notificationsFor(t, env, f.member.ID))

	assert.Equal(t, models.ProjectStatusSent, second.Project.Status)
	require.NotNil(t, second.Project.Assignment.TeamID)
	assert.Equal(t, f.team.ID, *second.Project.Assignment.TeamID)
}

func TestFinalizeAndSend_NoDraftLeavesNothing(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)

	_, err := env.svc.LifecycleService.FinalizeAndSend(env.ctx, env.db, f.project.ID,
		&dto.FinalizeRequest{Assignment: models.AssignmentTarget{IndividualID: &f.talent.ID}})
	assert.ErrorIs(t, err, apperrors.ErrNoDraftExists)

	p := testutil.ReloadProject(t, env.db, f.project.ID)
	assert.Equal(t, models.ProjectStatusSubmitted, p.Status)
	assert.Equal(t, models.AssignmentNone, p.AssignedType)
	assert.Zero(t, countSOWs(t, env, f.project.ID, ""))
	assert.Empty(t, notificationsFor(t, env, f.talent.ID))
}

func TestFinalizeAndSend_InvalidTarget(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)
	_, err := env.svc.LifecycleService.Draft(env.ctx, env.db, f.project.ID, f.admin.ID, "v1")
	require.NoError(t, err)

	_, err = env.svc.LifecycleService.FinalizeAndSend(env.ctx, env.db, f.project.ID,
		&dto.FinalizeRequest{Assignment: models.AssignmentTarget{IndividualID: &f.talent.ID, TeamID: &f.team.ID}})
	assert.ErrorIs(t, err, apperrors.ErrInvalidAssignmentTarget)

	assert.EqualValues(t, 0, countSOWs(t, env, f.project.ID, models.SOWStatusPublished))
	p := testutil.ReloadProject(t, env.db, f.project.ID)
	assert.Equal(t, models.AssignmentNone, p.AssignedType)
}

func TestFinalizeAndSend_UnknownProject(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)

	_, err := env.svc.LifecycleService.FinalizeAndSend(env.ctx, env.db, "00000000-0000-0000-0000-000000000000",
		&dto.FinalizeRequest{Assignment: models.AssignmentTarget{IndividualID: &f.talent.ID}})
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)
}

func TestFinalizeAndSend_IndividualWithOverrideAndAddressing(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)
	svc := env.svc.LifecycleService

	_, err := svc.Draft(env.ctx, env.db, f.project.ID, f.admin.ID, "draft")
	require.NoError(t, err)

	resp, err := svc.FinalizeAndSend(env.ctx, env.db, f.project.ID, &dto.FinalizeRequest{
		Assignment:     models.AssignmentTarget{IndividualID: &f.talent.ID},
		SOWBody:        strPtr("final scope"),
		RecipientEmail: "producer@studio.test",
		CCClient:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, "final scope", resp.SOW.Body)
	assert.Nil(t, resp.SOW.TeamID)
	assert.Nil(t, resp.NotificationError)

	got := notificationsFor(t, env, f.talent.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationProjectUpdate, got[0].Type)

	var data map[string]interface{}
	require.NoError(t, json.Unmarshal(got[0].Data, &data))
	assert.Equal(t, f.project.ID, data["project_id"])
	assert.Equal(t, "producer@studio.test", data["recipient_email"])
	assert.Equal(t, []interface{}{f.client.Email}, data["cc"])

	evs := env.publisher.Events()
	require.NotEmpty(t, evs)
	assert.Equal(t, f.talent.ID, evs[len(evs)-1].UserID)
}

func TestFinalizeAndSend_SwitchFromTeamToIndividualClearsMirror(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)
	svc := env.svc.LifecycleService

	_, err := svc.Draft(env.ctx, env.db, f.project.ID, f.admin.ID, "v1")
	require.NoError(t, err)

	first, err := svc.FinalizeAndSend(env.ctx, env.db, f.project.ID,
		&dto.FinalizeRequest{Assignment: models.AssignmentTarget{TeamID: &f.team.ID}})
	require.NoError(t, err)
	require.NotNil(t, first.SOW.TeamID)

	second, err := svc.FinalizeAndSend(env.ctx, env.db, f.project.ID,
		&dto.FinalizeRequest{Assignment: models.AssignmentTarget{IndividualID: &f.talent.ID}})
	require.NoError(t, err)
	assert.Nil(t, second.SOW.TeamID)

	p := testutil.ReloadProject(t, env.db, f.project.ID)
	assert.Equal(t, models.AssignmentIndividual, p.AssignedType)
	assertShape(t, p)
	assert.Len(t, notificationsFor(t, env, f.talent.ID), 1)
}

func TestFinalizeAndSend_MissingLeaderSurfacesButCommits(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)
	leaderless := testutil.CreateTeam(t, env.db, "Leaderless", nil, f.member)
	svc := env.svc.LifecycleService

	_, err := svc.Draft(env.ctx, env.db, f.project.ID, f.admin.ID, "v1")
	require.NoError(t, err)

	resp, err := svc.FinalizeAndSend(env.ctx, env.db, f.project.ID,
		&dto.FinalizeRequest{Assignment: models.AssignmentTarget{TeamID: &leaderless.ID}})
	require.NoError(t, err)
	require.NotNil(t, resp.NotificationError)
	assert.Nil(t, resp.NotificationID)

	p := testutil.ReloadProject(t, env.db, f.project.ID)
	assert.Equal(t, models.ProjectStatusSent, p.Status)
	assert.Equal(t, leaderless.ID, *p.AssignedTeamID)
	assert.EqualValues(t, 1, countSOWs(t, env, f.project.ID, models.SOWStatusPublished))
}

func TestFinalizeAndSend_CancelledAndPublishedElsewhere(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)
	svc := env.svc.LifecycleService

	_, err := svc.Draft(env.ctx, env.db, f.project.ID, f.admin.ID, "v1")
	require.NoError(t, err)
	_, err = svc.FinalizeAndSend(env.ctx, env.db, f.project.ID,
		&dto.FinalizeRequest{Assignment: models.AssignmentTarget{IndividualID: &f.talent.ID}})
	require.NoError(t, err)
	_, err = svc.Publish(env.ctx, env.db, f.project.ID)
	require.NoError(t, err)

	// same assignee on a published project is a no-op
	resp, err := svc.FinalizeAndSend(env.ctx, env.db, f.project.ID,
		&dto.FinalizeRequest{Assignment: models.AssignmentTarget{IndividualID: &f.talent.ID}})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusPublished, resp.Project.Status)

	_, err = svc.FinalizeAndSend(env.ctx, env.db, f.project.ID,
		&dto.FinalizeRequest{Assignment: models.AssignmentTarget{TeamID: &f.team.ID}})
	assert.ErrorIs(t, err, apperrors.ErrProjectPublishedElsewhere)

	other := testutil.CreateProject(t, env.db, "Other", f.client)
	_, err = svc.Draft(env.ctx, env.db, other.ID, f.admin.ID, "v1")
	require.NoError(t, err)
	_, err = svc.Cancel(env.ctx, env.db, other.ID, "budget")
	require.NoError(t, err)
	_, err = svc.FinalizeAndSend(env.ctx, env.db, other.ID,
		&dto.FinalizeRequest{Assignment: models.AssignmentTarget{TeamID: &f.team.ID}})
	assert.ErrorIs(t, err, apperrors.ErrProjectCancelled)
	assert.Zero(t, countSOWs(t, env, other.ID, models.SOWStatusPublished))
}

func TestSubmit_NotifiesAdmins(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)
	category := testutil.CreateCategory(t, env.db, "Photography")

	resp, err := env.svc.LifecycleService.Submit(env.ctx, env.db, f.client.ID, &dto.SubmitProjectRequest{
		Name:       "Catalogue shoot",
		CategoryID: &category.ID,
		Answers:    map[string]interface{}{"budget": "$5k"},
	})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusSubmitted, resp.Status)
	assert.Equal(t, models.AssignmentNone, resp.Assignment.Type)
	require.NotNil(t, resp.Category)
	assert.Equal(t, "Photography", resp.Category.Name)

	got := notificationsFor(t, env, f.admin.ID)
	require.Len(t, got, 1)
	assert.Equal(t, models.NotificationProjectSubmitted, got[0].Type)

	missing := "00000000-0000-0000-0000-000000000000"
	_, err = env.svc.LifecycleService.Submit(env.ctx, env.db, f.client.ID, &dto.SubmitProjectRequest{
		Name: "x", CategoryID: &missing,
	})
	assert.ErrorIs(t, err, apperrors.ErrCategoryNotFound)
}

func TestReviewAndResubmit(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)
	svc := env.svc.LifecycleService

	resp, err := svc.Review(env.ctx, env.db, f.project.ID, f.admin.ID,
		&dto.ReviewRequest{Decision: string(models.ReviewChangesRequested), Comments: "Add a budget"})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusNeedsUpdate, resp.Status)
	require.Len(t, resp.Reviews, 1)
	assert.Len(t, notificationsFor(t, env, f.client.ID), 1)

	_, err = svc.Resubmit(env.ctx, env.db, f.project.ID, f.talent.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound, "only the owner may resubmit")

	resp, err = svc.Resubmit(env.ctx, env.db, f.project.ID, f.client.ID, nil)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusSubmitted, resp.Status)

	resp, err = svc.Review(env.ctx, env.db, f.project.ID, f.admin.ID,
		&dto.ReviewRequest{Decision: string(models.ReviewApproved)})
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusUnderReview, resp.Status)

	_, err = svc.Review(env.ctx, env.db, f.project.ID, f.admin.ID,
		&dto.ReviewRequest{Decision: string(models.ReviewApproved)})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidStatus))

	_, err = svc.Resubmit(env.ctx, env.db, f.project.ID, f.client.ID, nil)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidStatus))
}

func TestDraft_MovesSubmittedToUnderReview(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)

	sow, err := env.svc.LifecycleService.Draft(env.ctx, env.db, f.project.ID, f.admin.ID, "v1")
	require.NoError(t, err)
	assert.Equal(t, models.SOWStatusDraft, sow.Status)
	assert.Equal(t, models.ProjectStatusUnderReview, testutil.ReloadProject(t, env.db, f.project.ID).Status)

	generated, err := env.svc.LifecycleService.GenerateDraft(env.ctx, env.db, f.project.ID, f.admin.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, generated.Version)
	assert.Contains(t, generated.Body, "Brand film")
}

func TestPublish_RequiresSentWithAssignee(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)
	svc := env.svc.LifecycleService

	_, err := svc.Publish(env.ctx, env.db, f.project.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidStatus))

	_, err = svc.Draft(env.ctx, env.db, f.project.ID, f.admin.ID, "v1")
	require.NoError(t, err)
	_, err = svc.FinalizeAndSend(env.ctx, env.db, f.project.ID,
		&dto.FinalizeRequest{Assignment: models.AssignmentTarget{TeamID: &f.team.ID}})
	require.NoError(t, err)

	resp, err := svc.Publish(env.ctx, env.db, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusPublished, resp.Status)
	assert.Len(t, notificationsFor(t, env, f.leader.ID), 2)

	resp, err = svc.Publish(env.ctx, env.db, f.project.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusPublished, resp.Status)
	assert.Len(t, notificationsFor(t, env, f.leader.ID), 2)

	_, err = svc.Cancel(env.ctx, env.db, f.project.ID, "")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeInvalidStatus))
}

func TestCancel_NotifiesAssigneeAndClient(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)
	svc := env.svc.LifecycleService

	_, err := env.svc.AssignmentService.Assign(env.ctx, env.db, f.project.ID, models.AssignmentTarget{IndividualID: &f.talent.ID})
	require.NoError(t, err)

	resp, err := svc.Cancel(env.ctx, env.db, f.project.ID, "client withdrew")
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusCancelled, resp.Status)
	assert.Len(t, notificationsFor(t, env, f.talent.ID), 1)
	assert.Len(t, notificationsFor(t, env, f.client.ID), 1)

	resp, err = svc.Cancel(env.ctx, env.db, f.project.ID, "again")
	require.NoError(t, err)
	assert.Equal(t, models.ProjectStatusCancelled, resp.Status)
	assert.Len(t, notificationsFor(t, env, f.client.ID), 1)

	_, err = svc.Draft(env.ctx, env.db, f.project.ID, f.admin.ID, "late")
	assert.ErrorIs(t, err, apperrors.ErrProjectCancelled)
}

func TestGetProject_Visibility(t *testing.T) {
	env := newTestEnv(t)
	f := newLifecycleFixture(t, env)
	svc := env.svc.LifecycleService

	_, err := svc.GetProject(env.ctx, env.db, Caller{UserID: f.client.ID, Role: models.UserRoleClient}, f.project.ID)
	require.NoError(t, err)
	_, err = svc.GetProject(env.ctx, env.db, Caller{UserID: f.member.ID, Role: models.UserRoleTalent}, f.project.ID)
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)

	_, err = env.svc.AssignmentService.Assign(env.ctx, env.db, f.project.ID, models.AssignmentTarget{TeamID: &f.team.ID})
	require.NoError(t, err)

	resp, err := svc.GetProject(env.ctx, env.db, Caller{UserID: f.member.ID, Role: models.UserRoleTalent}, f.project.ID)
	require.NoError(t, err)
	require.NotNil(t, resp.Assignment.Team)
	assert.Equal(t, "Crew", resp.Assignment.Team.Name)

	_, err = svc.GetProject(env.ctx, env.db, Caller{UserID: f.talent.ID, Role: models.UserRoleTalent}, f.project.ID)
	assert.ErrorIs(t, err, apperrors.ErrProjectNotFound)

	_, err = svc.GetProject(env.ctx, env.db, Caller{UserID: f.admin.ID, Role: models.UserRoleAdmin}, f.project.ID)
	require.NoError(t, err)
}
