package entity

import "github.com/homequest/backend/pkg/enum"

type UserRole string

var (
	// ChildRole works on quests.
	ChildRole = enum.New(UserRole("child"))

	// ParentRole creates quests and approves them.
	ParentRole = enum.New(UserRole("parent"))
)

type User struct {
	Base
	Name         string   `gorm:"not null"`
	Email        string   `gorm:"unique;not null"`
	PasswordHash string   `gorm:"not null"`
	Role         UserRole `gorm:"not null"`
}
