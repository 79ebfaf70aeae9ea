package notification

import (
	"context"
	"fmt"
	"net/url"

	"github.com/homequest/backend/internal/common"
	"github.com/homequest/backend/internal/entity"
)

// ApprovalRequest asks the approver of an execution to confirm its
// completion by opening ApprovalURL.
type ApprovalRequest struct {
	ExecutionID string `json:"execution_id"`
	Recipient   string `json:"recipient"`
	Subject     string `json:"subject"`
	Body        string `json:"body"`
	ApprovalURL string `json:"approval_url"`
}

type Outcome struct {
	Status entity.NotificationOutcome
	Reason string
}

func Sent() Outcome {
	return Outcome{Status: entity.NotificationSent}
}

func Queued() Outcome {
	return Outcome{Status: entity.NotificationQueued}
}

func Failed(reason string) Outcome {
	return Outcome{Status: entity.NotificationFailed, Reason: reason}
}

func (o Outcome) IsFailed() bool {
	return o.Status == entity.NotificationFailed
}

type Dispatcher interface {
	// NotifyApprovalRequested never returns an error, a delivery problem is
	// reported as a Failed outcome.
	NotifyApprovalRequested(ctx context.Context, req *ApprovalRequest) Outcome
}

const approvalBodyTemplate = `<p>{{.AssigneeName}} reported that the quest <b>{{.QuestTitle}}</b> is complete.</p>
{{- if .Memo}}
<p>Report: {{.Memo}}</p>
{{- end}}
{{- if .PhotoReference}}
<p><img src="{{.PhotoReference}}" alt="photo" style="max-width:480px"></p>
{{- end}}
<p>Reward: {{.Reward}}</p>
<p><a href="{{.ApprovalURL}}">Approve</a></p>
<p>This link can be used only once.</p>`

// ApprovalURL returns <appURL>/?approve_token=<token>.
func ApprovalURL(appURL, token string) string {
	return fmt.Sprintf("%s/?%s", appURL, url.Values{"approve_token": {token}}.Encode())
}

// NewApprovalRequest builds the request for an execution which is loaded with
// its quest, quest creator and assignee.
func NewApprovalRequest(execution *entity.Execution, appURL, token string) (*ApprovalRequest, error) {
	approvalURL := ApprovalURL(appURL, token)
	body, err := common.ExecuteTemplate(approvalBodyTemplate, map[string]any{
		"AssigneeName":   execution.Assignee.Name,
		"QuestTitle":     execution.Quest.Title,
		"Memo":           execution.Memo,
		"PhotoReference": execution.PhotoReference,
		"Reward":         execution.Quest.Reward.String(),
		"ApprovalURL":    approvalURL,
	})
	if err != nil {
		return nil, err
	}

	return &ApprovalRequest{
		ExecutionID: execution.ID,
		Recipient:   execution.Quest.Creator.Email,
		Subject:     fmt.Sprintf("[Approval request] %s was reported complete", execution.Quest.Title),
		Body:        body,
		ApprovalURL: approvalURL,
	}, nil
}
