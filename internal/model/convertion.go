package model

import (
	"database/sql"
	"time"

	"github.com/homequest/backend/internal/entity"
)

func ConvertShortUser(user *entity.User) ShortUser {
	if user == nil {
		return ShortUser{}
	}

	return ShortUser{ID: user.ID, Name: user.Name}
}

func ConvertReward(reward entity.Reward) Reward {
	return Reward{
		Kind:        string(reward.Kind),
		Points:      reward.Points,
		Description: reward.Description,
		Display:     reward.String(),
	}
}

func ConvertQuest(quest *entity.Quest) Quest {
	if quest == nil {
		return Quest{}
	}

	creator := ShortUser{ID: quest.CreatedBy}
	if quest.Creator.ID != "" {
		creator = ConvertShortUser(&quest.Creator)
	}

	return Quest{
		ID:          quest.ID,
		Title:       quest.Title,
		Description: quest.Description,
		Reward:      ConvertReward(quest.Reward),
		Deadline:    convertNullTime(quest.Deadline),
		CreatedBy:   creator,
		CreatedAt:   quest.CreatedAt.Format(time.RFC3339Nano),
	}
}

func ConvertExecution(execution *entity.Execution) Execution {
	if execution == nil {
		return Execution{}
	}

	assignee := ShortUser{ID: execution.AssignedTo.String}
	if execution.Assignee.ID != "" {
		assignee = ConvertShortUser(&execution.Assignee)
	}

	quest := Quest{ID: execution.QuestID}
	if execution.Quest.ID != "" {
		quest = ConvertQuest(&execution.Quest)
	}

	return Execution{
		ID:             execution.ID,
		Quest:          quest,
		Assignee:       assignee,
		Status:         string(execution.Status),
		StartedAt:      convertNullTime(execution.StartedAt),
		CompletedAt:    convertNullTime(execution.CompletedAt),
		Memo:           execution.Memo,
		PhotoReference: execution.PhotoReference,
	}
}

func ConvertRewardLedgerEntry(entry *entity.RewardLedgerEntry) RewardLedgerEntry {
	if entry == nil {
		return RewardLedgerEntry{}
	}

	return RewardLedgerEntry{
		ID:          entry.ID,
		ExecutionID: entry.ExecutionID,
		QuestID:     entry.QuestID,
		QuestTitle:  entry.Quest.Title,
		Amount:      entry.Amount,
		Description: entry.Description,
		Status:      string(entry.Status),
		PaidAt:      convertNullTime(entry.PaidAt),
	}
}

func convertNullTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}

	return t.Time.Format(time.RFC3339Nano)
}
