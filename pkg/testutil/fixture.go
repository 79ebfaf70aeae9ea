package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/internal/repository"
	"github.com/homequest/backend/migration"

	"golang.org/x/crypto/bcrypt"
)

const FixturePassword = "password"

var (
	// Users
	Parent1 = &entity.User{
		Base:  entity.Base{ID: "parent1"},
		Name:  "Mom",
		Email: "parent1@example.com",
		Role:  entity.ParentRole,
	}

	Child1 = &entity.User{
		Base:  entity.Base{ID: "child1"},
		Name:  "Taro",
		Email: "child1@example.com",
		Role:  entity.ChildRole,
	}

	Child2 = &entity.User{
		Base:  entity.Base{ID: "child2"},
		Name:  "Hanako",
		Email: "child2@example.com",
		Role:  entity.ChildRole,
	}

	Users = []*entity.User{Parent1, Child1, Child2}

	// Quests
	Quest1 = &entity.Quest{
		Base:        entity.Base{ID: "quest1"},
		Title:       "Wash dishes",
		Description: "Wash all dishes after dinner",
		Reward:      entity.PointsReward(400),
		CreatedBy:   Parent1.ID,
	}

	Quest2 = &entity.Quest{
		Base:        entity.Base{ID: "quest2"},
		Title:       "Clean room",
		Description: "Put the toys back in the box",
		Reward:      entity.DescriptionReward("Ice cream on Sunday"),
		CreatedBy:   Parent1.ID,
	}

	Quest3 = &entity.Quest{
		Base:      entity.Base{ID: "quest3"},
		Title:     "Walk the dog",
		Reward:    entity.PointsReward(100),
		CreatedBy: Parent1.ID,
	}

	Quest4 = &entity.Quest{
		Base:      entity.Base{ID: "quest4"},
		Title:     "Water plants",
		Reward:    entity.PointsReward(50),
		CreatedBy: Parent1.ID,
	}

	Quests = []*entity.Quest{Quest1, Quest2, Quest3, Quest4}

	// Executions
	Execution1 = &entity.Execution{
		Base:    entity.Base{ID: "execution1"},
		QuestID: Quest1.ID,
		Status:  entity.Unclaimed,
	}

	Execution2 = &entity.Execution{
		Base:       entity.Base{ID: "execution2"},
		QuestID:    Quest2.ID,
		AssignedTo: sql.NullString{Valid: true, String: Child1.ID},
		Status:     entity.InProgress,
		StartedAt:  sql.NullTime{Valid: true, Time: time.Now()},
	}

	Execution3 = &entity.Execution{
		Base:       entity.Base{ID: "execution3"},
		QuestID:    Quest3.ID,
		AssignedTo: sql.NullString{Valid: true, String: Child2.ID},
		Status:     entity.PendingApproval,
		StartedAt:  sql.NullTime{Valid: true, Time: time.Now()},
	}

	Execution4 = &entity.Execution{
		Base:       entity.Base{ID: "execution4"},
		QuestID:    Quest4.ID,
		AssignedTo: sql.NullString{Valid: true, String: Child2.ID},
		Status:     entity.Unclaimed,
	}

	Executions = []*entity.Execution{Execution1, Execution2, Execution3, Execution4}

	// Approval tokens
	ApprovalToken3 = &entity.ApprovalToken{
		ID:          "approval_token3",
		Token:       "Ff8TqVt2xXo9nY1cQm6kJ4hG3dS0aPzLwEeRrUuIiOo",
		ExecutionID: Execution3.ID,
		IsValid:     true,
	}

	ApprovalTokens = []*entity.ApprovalToken{ApprovalToken3}
)

// CreateFixtureDb migrates the database of ctx and inserts fixture data.
func CreateFixtureDb(ctx context.Context) {
	if err := migration.AutoMigrate(ctx); err != nil {
		panic(err)
	}

	InsertUsers(ctx)
	InsertQuests(ctx)
	InsertExecutions(ctx)
	InsertApprovalTokens(ctx)
}

func InsertUsers(ctx context.Context) {
	hash, err := bcrypt.GenerateFromPassword([]byte(FixturePassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	userRepo := repository.NewUserRepository()
	for _, user := range Users {
		u := *user
		u.PasswordHash = string(hash)
		if err := userRepo.Create(ctx, &u); err != nil {
			panic(err)
		}
	}
}

func InsertQuests(ctx context.Context) {
	questRepo := repository.NewQuestRepository()
	for _, quest := range Quests {
		q := *quest
		if err := questRepo.Create(ctx, &q); err != nil {
			panic(err)
		}
	}
}

func InsertExecutions(ctx context.Context) {
	executionRepo := repository.NewExecutionRepository()
	for _, execution := range Executions {
		e := *execution
		if err := executionRepo.Create(ctx, &e); err != nil {
			panic(err)
		}
	}
}

func InsertApprovalTokens(ctx context.Context) {
	tokenRepo := repository.NewApprovalTokenRepository()
	for _, token := range ApprovalTokens {
		t := *token
		if err := tokenRepo.Create(ctx, &t); err != nil {
			panic(err)
		}
	}
}
