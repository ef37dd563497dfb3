package services

import (
	"encoding/json"

	"finley_backend/internal/models"
	"finley_backend/internal/services/dto"
)

func userRef(u *models.User) *dto.UserRef {
	if u == nil || u.ID == "" {
		return nil
	}
	return &dto.UserRef{ID: u.ID, Name: u.FullName(), Email: u.Email}
}

func sowResponse(s *models.SOW) *dto.SOWResponse {
	if s == nil {
		return nil
	}
	return &dto.SOWResponse{
		ID:        s.ID,
		ProjectID: s.ProjectID,
		Version:   s.Version,
		Status:    s.Status,
		Body:      s.BodyRichText,
		TeamID:    s.TeamID,
		CreatedAt: s.CreatedAt,
	}
}

// projectResponse expects a validated assignment; joined relations are optional.
func projectResponse(p *models.Project, a models.Assignment, current *models.SOW) *dto.ProjectResponse {
	resp := &dto.ProjectResponse{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Status:      p.Status,
		Client:      userRef(p.Client),
		CurrentSOW:  sowResponse(current),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
		Assignment:  dto.AssignmentResponse{Type: a.Kind()},
	}
	if len(p.Answers) > 0 {
		resp.Answers = json.RawMessage(p.Answers)
	}
	if p.Category != nil && p.Category.ID != "" {
		resp.Category = &dto.CategoryRef{ID: p.Category.ID, Name: p.Category.Name}
	}

	if userID, ok := a.Individual(); ok {
		resp.Assignment.UserID = &userID
		resp.Assignment.User = userRef(p.AssignedUser)
	}
	if teamID, ok := a.Team(); ok {
		resp.Assignment.TeamID = &teamID
		if p.AssignedTeam != nil && p.AssignedTeam.ID != "" {
			resp.Assignment.Team = &dto.TeamRef{ID: p.AssignedTeam.ID, Name: p.AssignedTeam.Name}
		}
	}

	for i := range p.Reviews {
		r := &p.Reviews[i]
		resp.Reviews = append(resp.Reviews, dto.ReviewResponse{
			ID:        r.ID,
			Decision:  r.Decision,
			Comments:  r.Comments,
			Reviewer:  userRef(r.Reviewer),
			CreatedAt: r.CreatedAt,
		})
	}
	for i := range p.Attachments {
		att := &p.Attachments[i]
		resp.Attachments = append(resp.Attachments, dto.AttachmentResponse{
			ID:          att.ID,
			FileName:    att.FileName,
			ContentType: att.ContentType,
			StorageKey:  att.StorageKey,
			CreatedAt:   att.CreatedAt,
		})
	}
	return resp
}

func notificationResponse(n *models.Notification) dto.NotificationResponse {
	resp := dto.NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
	if len(n.Data) > 0 {
		resp.Data = json.RawMessage(n.Data)
	}
	return resp
}
