package services

import (
	"context"
	"errors"
	"time"

	"github.com/localnerve/plansdb/internal/models"
	"github.com/localnerve/plansdb/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// PlanService covers plans, their procedures and the read side of assignments
type PlanService struct {
	db  *gorm.DB
	now func() time.Time
}

// NewPlanService creates a plan service over db
func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db, now: time.Now}
}

// WithClock replaces the clock used for timestamps
func (s *PlanService) WithClock(now func() time.Time) *PlanService {
	s.now = now
	return s
}

func (s *PlanService) quiet(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Session(&gorm.Session{Logger: s.db.Logger.LogMode(logger.Silent)})
}

// CreatePlan inserts an empty plan, metadata may be nil
func (s *PlanService) CreatePlan(ctx context.Context, metadata interface{}) (*models.Plan, error) {
	doc, err := models.NewJSON(metadata)
	if err != nil {
		return nil, types.InvalidArgument("Invalid metadata: %v", err)
	}

	plan := &models.Plan{Metadata: doc}
	models.Stamp(s.now(), true, plan)
	if err := s.db.WithContext(ctx).Create(plan).Error; err != nil {
		return nil, types.Internal(err)
	}
	plan.PlanProcedures = []models.PlanProcedure{}
	return plan, nil
}

// ListPlans returns every plan with its procedures
func (s *PlanService) ListPlans(ctx context.Context) ([]models.Plan, error) {
	var plans []models.Plan
	err := s.quiet(ctx).
		Preload("PlanProcedures", func(db *gorm.DB) *gorm.DB { return db.Order("procedure_id") }).
		Preload("PlanProcedures.Procedure").
		Order("plan_id").
		Find(&plans).Error
	if err != nil {
		return nil, types.Internal(err)
	}
	return plans, nil
}

// GetPlan returns a plan with its procedures and their assigned users
func (s *PlanService) GetPlan(ctx context.Context, planID int64) (*models.Plan, error) {
	if planID < 1 {
		return nil, types.InvalidArgument("Invalid PlanId")
	}

	var plan models.Plan
	err := s.quiet(ctx).
		Preload("PlanProcedures", func(db *gorm.DB) *gorm.DB { return db.Order("procedure_id") }).
		Preload("PlanProcedures.Procedure").
		Preload("PlanProcedures.AssignedUsers", func(db *gorm.DB) *gorm.DB { return db.Order("user_id") }).
		Where("plan_id = ?", planID).
		First(&plan).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, types.NotFound("Plan not found")
		}
		return nil, types.Internal(err)
	}
	return &plan, nil
}

// AddProcedureToPlan links a procedure to a plan. Linking an already linked
// procedure succeeds without changes.
func (s *PlanService) AddProcedureToPlan(ctx context.Context, planID, procedureID int64) error {
	if planID < 1 {
		return types.InvalidArgument("Invalid PlanId")
	}
	if procedureID < 1 {
		return types.InvalidArgument("Invalid ProcedureId")
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quiet := tx.Session(&gorm.Session{Logger: tx.Logger.LogMode(logger.Silent)})

		var planCount, procedureCount int64
		if err := quiet.Model(&models.Plan{}).Where("plan_id = ?", planID).Count(&planCount).Error; err != nil {
			return err
		}
		if err := quiet.Model(&models.Procedure{}).Where("procedure_id = ?", procedureID).Count(&procedureCount).Error; err != nil {
			return err
		}
		if planCount == 0 || procedureCount == 0 {
			return types.NotFound("Plan or Procedure not found")
		}

		link := &models.PlanProcedure{PlanID: planID, ProcedureID: procedureID}
		models.Stamp(s.now(), true, link)
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(link).Error
	})
	return types.Internal(err)
}

// ListProcedures returns the procedure catalog
func (s *PlanService) ListProcedures(ctx context.Context) ([]models.Procedure, error) {
	var procedures []models.Procedure
	if err := s.quiet(ctx).Order("procedure_id").Find(&procedures).Error; err != nil {
		return nil, types.Internal(err)
	}
	return procedures, nil
}

// ListUsers returns every user
func (s *PlanService) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.quiet(ctx).Order("user_id").Find(&users).Error; err != nil {
		return nil, types.Internal(err)
	}
	return users, nil
}

// GetAssignedUsers returns the users assigned to a procedure within a plan
func (s *PlanService) GetAssignedUsers(ctx context.Context, planID, procedureID int64) ([]models.User, error) {
	if planID < 1 {
		return nil, types.InvalidArgument("Invalid PlanId")
	}
	if procedureID < 1 {
		return nil, types.InvalidArgument("Invalid ProcedureId")
	}

	var users []models.User
	err := s.quiet(ctx).
		Model(&models.User{}).
		Joins("JOIN assigned_users ON assigned_users.user_id = users.user_id").
		Where("assigned_users.plan_id = ? AND assigned_users.procedure_id = ?", planID, procedureID).
		Order("users.user_id").
		Find(&users).Error
	if err != nil {
		return nil, types.Internal(err)
	}
	return users, nil
}
