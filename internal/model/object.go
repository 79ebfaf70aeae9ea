package model

type AccessToken struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

type ShortUser struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Reward struct {
	Kind        string `json:"kind"`
	Points      int64  `json:"points,omitempty"`
	Description string `json:"description,omitempty"`
	Display     string `json:"display"`
}

type Quest struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Reward      Reward    `json:"reward"`
	Deadline    string    `json:"deadline,omitempty"`
	CreatedBy   ShortUser `json:"created_by"`
	CreatedAt   string    `json:"created_at"`
}

type Execution struct {
	ID             string    `json:"id"`
	Quest          Quest     `json:"quest"`
	Assignee       ShortUser `json:"assignee"`
	Status         string    `json:"status"`
	StartedAt      string    `json:"started_at,omitempty"`
	CompletedAt    string    `json:"completed_at,omitempty"`
	Memo           string    `json:"memo,omitempty"`
	PhotoReference string    `json:"photo_reference,omitempty"`
}

type RewardLedgerEntry struct {
	ID          string `json:"id"`
	ExecutionID string `json:"execution_id"`
	QuestID     string `json:"quest_id"`
	QuestTitle  string `json:"quest_title"`
	Amount      int64  `json:"amount"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	PaidAt      string `json:"paid_at,omitempty"`
}
