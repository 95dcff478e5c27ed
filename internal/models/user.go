package models

// User is managed outside of this service; rows are only referenced here
type User struct {
	UserID int64  `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	Name   string `gorm:"size:255;not null" json:"name"`
	Timestamps
}

// AssignedUser assigns a user to a procedure within a plan. At most one row
// exists per user for a given plan and procedure.
type AssignedUser struct {
	ID          int64 `gorm:"primaryKey;autoIncrement" json:"id"`
	PlanID      int64 `gorm:"not null;uniqueIndex:idx_assigned_users_pair_user,priority:1" json:"planId"`
	ProcedureID int64 `gorm:"not null;uniqueIndex:idx_assigned_users_pair_user,priority:2" json:"procedureId"`
	UserID      int64 `gorm:"not null;uniqueIndex:idx_assigned_users_pair_user,priority:3;index" json:"userId"`
	Timestamps
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// AssignedUsersPairIndex is the unique index over (plan_id, procedure_id, user_id)
const AssignedUsersPairIndex = "idx_assigned_users_pair_user"

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for AssignedUser
func (AssignedUser) TableName() string {
	return "assigned_users"
}
