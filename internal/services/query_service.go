package services

import (
	"context"
	"database/sql"

	"finley_backend/internal/models"
	"finley_backend/internal/repositories"
	"finley_backend/internal/services/dto"

	"gorm.io/gorm"
)

// QueryService is read-only; it never takes row locks.
type QueryService interface {
	ListForAdmin(ctx context.Context, db *gorm.DB) (*dto.ProjectListResponse, error)
	// ListForUser returns what caller works on. A client gets only their own
	// submissions; anyone else gets projects assigned to them directly or to
	// a team where they hold an ACTIVE membership.
	ListForUser(ctx context.Context, db *gorm.DB, caller Caller) (*dto.ProjectListResponse, error)
}

type QueryServiceImpl struct {
	projectRepo repositories.ProjectRepository
	userRepo    repositories.UserRepository
	sowRepo     repositories.SOWRepository
}

func NewQueryService(
	projectRepo repositories.ProjectRepository,
	userRepo repositories.UserRepository,
	sowRepo repositories.SOWRepository,
) QueryService {
	return &QueryServiceImpl{
		projectRepo: projectRepo,
		userRepo:    userRepo,
		sowRepo:     sowRepo,
	}
}

func (s *QueryServiceImpl) ListForAdmin(ctx context.Context, db *gorm.DB) (*dto.ProjectListResponse, error) {
	var resp *dto.ProjectListResponse
	err := readSnapshot(db, func(tx *gorm.DB) error {
		projects, err := s.projectRepo.FindAllForAdmin(tx)
		if err != nil {
			return err
		}
		resp, err = s.assemble(ctx, tx, projects)
		return err
	})
	if err != nil {
		return nil, storeError(err, "project")
	}
	return resp, nil
}

func (s *QueryServiceImpl) ListForUser(ctx context.Context, db *gorm.DB, caller Caller) (*dto.ProjectListResponse, error) {
	var resp *dto.ProjectListResponse
	err := readSnapshot(db, func(tx *gorm.DB) error {
		var projects []models.Project
		if caller.Role == models.UserRoleClient {
			own, err := s.projectRepo.FindForClient(tx, caller.UserID)
			if err != nil {
				return err
			}
			projects = own
		} else {
			teamIDs, err := s.userRepo.ActiveTeamIDs(tx, caller.UserID)
			if err != nil {
				return err
			}
			assigned, err := s.projectRepo.FindForAssignee(tx, caller.UserID, teamIDs)
			if err != nil {
				return err
			}
			projects = assigned
		}

		var err error
		resp, err = s.assemble(ctx, tx, projects)
		return err
	})
	if err != nil {
		return nil, storeError(err, "project")
	}
	return resp, nil
}

// assemble joins the current SOW onto each project. Rows whose assignment
// columns are inconsistent are logged as defects and left out.
func (s *QueryServiceImpl) assemble(ctx context.Context, tx *gorm.DB, projects []models.Project) (*dto.ProjectListResponse, error) {
	ids := make([]string, 0, len(projects))
	for i := range projects {
		ids = append(ids, projects[i].ID)
	}
	latest, err := s.sowRepo.FindLatestForProjects(tx, ids)
	if err != nil {
		return nil, err
	}

	resp := &dto.ProjectListResponse{Projects: make([]dto.ProjectResponse, 0, len(projects))}
	for i := range projects {
		p := &projects[i]
		a, err := readAssignment(ctx, p)
		if err != nil {
			continue
		}
		resp.Projects = append(resp.Projects, *projectResponse(p, a, latest[p.ID]))
	}
	resp.Total = len(resp.Projects)
	return resp, nil
}

// readSnapshot runs fn in a read-only transaction so that every query of one
// listing sees the same state. Postgres gets REPEATABLE READ; other dialects
// use their default isolation.
func readSnapshot(db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db.Dialector.Name() == "postgres" {
		return db.Transaction(fn, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true})
	}
	return db.Transaction(fn)
}
