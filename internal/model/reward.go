package model

type GetMyRewardsRequest struct{}

type GetMyRewardsResponse struct {
	Rewards      []RewardLedgerEntry `json:"rewards"`
	TotalQuests  int                 `json:"total_quests"`
	TotalRewards int64               `json:"total_rewards"`
}

type MarkRewardPaidRequest struct {
	ID string `json:"id"`
}

type MarkRewardPaidResponse struct{}
