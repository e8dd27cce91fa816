package models

import (
	"gorm.io/gorm"
)

// Notice is an announcement posted by gym staff, shown to all members.
// Delivery beyond the optional push broadcast is handled by clients polling
// the list endpoint.
type Notice struct {
	gorm.Model
	Title    string `json:"title" gorm:"not null"`
	Body     string `json:"body" gorm:"not null"`
	PostedBy uint   `json:"postedBy" gorm:"not null"`
	Author   *User  `json:"author,omitempty" gorm:"foreignKey:PostedBy"`
	Pinned   bool   `json:"pinned" gorm:"not null;default:false"`
}

// TableName specifies the table name
func (Notice) TableName() string {
	return "notices"
}
