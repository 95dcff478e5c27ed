package models

// Procedure is an immutable catalog item, seeded at initialization
type Procedure struct {
	ProcedureID    int64  `gorm:"primaryKey;autoIncrement:false" json:"procedureId"`
	ProcedureTitle string `gorm:"size:255;not null" json:"procedureTitle"`
}

// TableName overrides the table name for Procedure
func (Procedure) TableName() string {
	return "procedures"
}
