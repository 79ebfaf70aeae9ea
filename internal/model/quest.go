package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/homequest/backend/internal/entity"
)

// RewardInput accepts either a JSON number of points or a free text. A text
// made only of digits is also considered as points.
type RewardInput struct {
	entity.Reward
}

func (r *RewardInput) UnmarshalJSON(b []byte) error {
	var points int64
	if err := json.Unmarshal(b, &points); err == nil {
		r.Reward = entity.PointsReward(points)
		return nil
	}

	var text string
	if err := json.Unmarshal(b, &text); err != nil {
		return fmt.Errorf("reward must be a number or a string")
	}

	r.Reward = entity.ParseReward(text)
	return nil
}

func (r RewardInput) MarshalJSON() ([]byte, error) {
	if r.Kind == entity.RewardPoints {
		return []byte(strconv.FormatInt(r.Points, 10)), nil
	}

	return json.Marshal(r.Description)
}

type CreateQuestRequest struct {
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Reward      RewardInput `json:"reward"`
	Deadline    *time.Time  `json:"deadline"`

	// AssigneeID is optional. If it is empty, the first child starting the
	// quest becomes the assignee.
	AssigneeID string `json:"assignee_id"`
}

type CreateQuestResponse struct {
	ID          string `json:"id"`
	ExecutionID string `json:"execution_id"`
}

type GetQuestRequest struct {
	ID string `json:"id"`
}

type GetQuestResponse struct {
	Quest     Quest     `json:"quest"`
	Execution Execution `json:"execution"`
}
