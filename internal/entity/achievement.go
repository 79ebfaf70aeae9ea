package entity

import "time"

type Achievement struct {
	UserID string `gorm:"primaryKey"`
	User   User   `gorm:"foreignKey:UserID"`

	TotalQuests  int
	TotalRewards int64

	UpdatedAt time.Time
}
