package models

// Plan is the top level container of procedures
type Plan struct {
	PlanID   int64 `gorm:"primaryKey;autoIncrement" json:"planId"`
	Metadata JSON  `json:"metadata"`
	Timestamps
	PlanProcedures []PlanProcedure `gorm:"foreignKey:PlanID;references:PlanID;constraint:OnDelete:CASCADE" json:"planProcedures"`
}

// PlanProcedure records that a procedure is part of a plan. The composite
// primary key allows a pair to exist at most once.
type PlanProcedure struct {
	PlanID      int64 `gorm:"primaryKey;autoIncrement:false" json:"planId"`
	ProcedureID int64 `gorm:"primaryKey;autoIncrement:false;index" json:"procedureId"`
	Timestamps
	Procedure     *Procedure     `gorm:"foreignKey:ProcedureID;references:ProcedureID" json:"procedure,omitempty"`
	AssignedUsers []AssignedUser `gorm:"foreignKey:PlanID,ProcedureID;references:PlanID,ProcedureID;constraint:OnDelete:CASCADE" json:"assignedUsers"`
}

// HasProcedure reports whether the procedure is linked to the plan
func (p *Plan) HasProcedure(procedureID int64) bool {
	for _, pp := range p.PlanProcedures {
		if pp.ProcedureID == procedureID {
			return true
		}
	}
	return false
}

// TableName overrides the table name for Plan
func (Plan) TableName() string {
	return "plans"
}

// TableName overrides the table name for PlanProcedure
func (PlanProcedure) TableName() string {
	return "plan_procedures"
}
