package notification

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/homequest/backend/config"
	"github.com/homequest/backend/internal/entity"
	"github.com/homequest/backend/pkg/pubsub"

	"github.com/stretchr/testify/require"
)

func sampleExecution() *entity.Execution {
	return &entity.Execution{
		Base: entity.Base{ID: "execution1"},
		Quest: entity.Quest{
			Title:   "Wash dishes",
			Reward:  entity.PointsReward(400),
			Creator: entity.User{Name: "Mom", Email: "mom@example.com"},
		},
		Assignee: entity.User{Name: "Taro"},
		Memo:     "All clean <3",
	}
}

func TestNewApprovalRequest(t *testing.T) {
	req, err := NewApprovalRequest(sampleExecution(), "http://localhost:8080", "abc-DEF_123")
	require.NoError(t, err)

	require.Equal(t, "execution1", req.ExecutionID)
	require.Equal(t, "mom@example.com", req.Recipient)
	require.Equal(t, "[Approval request] Wash dishes was reported complete", req.Subject)
	require.Equal(t, "http://localhost:8080/?approve_token=abc-DEF_123", req.ApprovalURL)
	require.Contains(t, req.Body, "Taro")
	require.Contains(t, req.Body, "400 points")
	require.Contains(t, req.Body, req.ApprovalURL)
	require.Contains(t, req.Body, "All clean &lt;3")
}

func TestSMTPDispatcher(t *testing.T) {
	req, err := NewApprovalRequest(sampleExecution(), "http://localhost:8080", "token")
	require.NoError(t, err)

	var sentTo []string
	var sentMsg string
	d := NewSMTPDispatcher(config.SMTPConfigs{
		Host:     "smtp.example.com",
		Port:     "587",
		Username: "home@example.com",
		Password: "password",
	})
	d.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		require.Equal(t, "smtp.example.com:587", addr)
		require.Equal(t, "home@example.com", from)
		sentTo = to
		sentMsg = string(msg)
		return nil
	}

	outcome := d.NotifyApprovalRequested(context.Background(), req)
	require.Equal(t, Sent(), outcome)
	require.Equal(t, []string{"mom@example.com"}, sentTo)
	require.True(t, strings.HasPrefix(sentMsg, "From: home@example.com\r\n"))
	require.Contains(t, sentMsg, "Content-Type: text/html")
	require.Contains(t, sentMsg, req.ApprovalURL)

	d.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("535 authentication failed")
	}
	outcome = d.NotifyApprovalRequested(context.Background(), req)
	require.True(t, outcome.IsFailed())
	require.Equal(t, "535 authentication failed", outcome.Reason)

	outcome = d.NotifyApprovalRequested(context.Background(), &ApprovalRequest{ExecutionID: "x"})
	require.True(t, outcome.IsFailed())
}

type fakePublisher struct {
	topic string
	pack  *pubsub.Pack
	err   error
}

func (p *fakePublisher) Publish(ctx context.Context, topic string, pack *pubsub.Pack) error {
	p.topic = topic
	p.pack = pack
	return p.err
}

func TestKafkaDispatcher(t *testing.T) {
	publisher := &fakePublisher{}
	d := NewKafkaDispatcher(publisher, "approval_requested")

	req := &ApprovalRequest{ExecutionID: "execution1", Recipient: "mom@example.com"}
	require.Equal(t, Queued(), d.NotifyApprovalRequested(context.Background(), req))
	require.Equal(t, "approval_requested", publisher.topic)
	require.Equal(t, []byte("execution1"), publisher.pack.Key)
	require.Contains(t, string(publisher.pack.Msg), `"recipient":"mom@example.com"`)

	publisher.err = errors.New("broker down")
	outcome := d.NotifyApprovalRequested(context.Background(), req)
	require.True(t, outcome.IsFailed())
	require.Equal(t, "broker down", outcome.Reason)
}

func TestLogDispatcher(t *testing.T) {
	outcome := NewLogDispatcher().NotifyApprovalRequested(context.Background(), &ApprovalRequest{})
	require.Equal(t, Sent(), outcome)
}
