package entity

import (
	"database/sql"
	"strconv"

	"github.com/homequest/backend/pkg/enum"
)

type RewardKind string

var (
	RewardPoints      = enum.New(RewardKind("points"))
	RewardDescription = enum.New(RewardKind("description"))
)

// Reward is either a number of points or a free text description, depending
// on Kind.
type Reward struct {
	Kind        RewardKind `gorm:"not null"`
	Points      int64
	Description string
}

func PointsReward(points int64) Reward {
	return Reward{Kind: RewardPoints, Points: points}
}

func DescriptionReward(description string) Reward {
	return Reward{Kind: RewardDescription, Description: description}
}

// ParseReward accepts legacy reward inputs. A string made only of digits is
// parsed as points, anything else is kept as a description.
func ParseReward(s string) Reward {
	if s != "" && isDigits(s) {
		if points, err := strconv.ParseInt(s, 10, 64); err == nil {
			return PointsReward(points)
		}
	}

	return DescriptionReward(s)
}

func (r Reward) String() string {
	switch r.Kind {
	case RewardPoints:
		return strconv.FormatInt(r.Points, 10) + " points"
	default:
		return r.Description
	}
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}

	return true
}

type Quest struct {
	Base

	Title       string `gorm:"not null"`
	Description string
	Reward      Reward `gorm:"embedded;embeddedPrefix:reward_"`
	Deadline    sql.NullTime

	CreatedBy string `gorm:"not null"`
	Creator   User   `gorm:"foreignKey:CreatedBy"`
}
