package models

type UserRole string
type UserStatus string
type TeamMemberRole string
type TeamMemberStatus string
type ProjectStatus string
type AssignmentType string
type SOWStatus string
type ReviewDecision string
type NotificationType string

const (
	UserRoleAdmin  UserRole = "ADMIN"
	UserRoleTalent UserRole = "TALENT"
	UserRoleClient UserRole = "CLIENT"

	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusDisabled UserStatus = "DISABLED"

	TeamRoleLeader TeamMemberRole = "LEADER"
	TeamRoleMember TeamMemberRole = "MEMBER"

	TeamMemberActive   TeamMemberStatus = "ACTIVE"
	TeamMemberInvited  TeamMemberStatus = "INVITED"
	TeamMemberInactive TeamMemberStatus = "INACTIVE"

	ProjectStatusSubmitted   ProjectStatus = "SUBMITTED"
	ProjectStatusUnderReview ProjectStatus = "UNDER_REVIEW"
	ProjectStatusNeedsUpdate ProjectStatus = "NEEDS_UPDATE"
	ProjectStatusSent        ProjectStatus = "SENT"
	ProjectStatusPublished   ProjectStatus = "PUBLISHED"
	ProjectStatusCancelled   ProjectStatus = "CANCELLED"

	AssignmentNone       AssignmentType = "NONE"
	AssignmentIndividual AssignmentType = "INDIVIDUAL"
	AssignmentTeam       AssignmentType = "TEAM"

	SOWStatusDraft      SOWStatus = "DRAFT"
	SOWStatusPublished  SOWStatus = "PUBLISHED"
	SOWStatusSuperseded SOWStatus = "SUPERSEDED"

	ReviewApproved         ReviewDecision = "APPROVED"
	ReviewChangesRequested ReviewDecision = "CHANGES_REQUESTED"

	NotificationSystem           NotificationType = "SYSTEM"
	NotificationProjectUpdate    NotificationType = "PROJECT_UPDATE"
	NotificationProjectSubmitted NotificationType = "PROJECT_SUBMITTED"
)

func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleTalent, UserRoleClient:
		return true
	}
	return false
}

// Terminal reports whether no further lifecycle transition leaves s.
func (s ProjectStatus) Terminal() bool {
	return s == ProjectStatusPublished || s == ProjectStatusCancelled
}

var projectTransitions = map[ProjectStatus][]ProjectStatus{
	ProjectStatusSubmitted:   {ProjectStatusUnderReview, ProjectStatusNeedsUpdate, ProjectStatusSent, ProjectStatusCancelled},
	ProjectStatusUnderReview: {ProjectStatusNeedsUpdate, ProjectStatusSent, ProjectStatusCancelled},
	ProjectStatusNeedsUpdate: {ProjectStatusSubmitted, ProjectStatusUnderReview, ProjectStatusSent, ProjectStatusCancelled},
	ProjectStatusSent:        {ProjectStatusSent, ProjectStatusPublished, ProjectStatusCancelled},
	ProjectStatusPublished:   {ProjectStatusPublished},
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
func (s ProjectStatus) CanTransitionTo(next ProjectStatus) bool {
	for _, allowed := range projectTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}
