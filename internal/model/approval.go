package model

type RedeemApprovalTokenRequest struct {
	ApproveToken string `json:"approve_token"`
}

type RedeemApprovalTokenResponse struct {
	Message      string `json:"message"`
	QuestTitle   string `json:"quest_title"`
	AssigneeName string `json:"assignee_name"`
}

type ReissueApprovalTokenRequest struct {
	ExecutionID string `json:"execution_id"`
}

type ReissueApprovalTokenResponse struct {
	Outcome string `json:"outcome"`
}
