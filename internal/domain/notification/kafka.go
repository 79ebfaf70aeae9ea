package notification

import (
	"context"
	"encoding/json"

	"github.com/homequest/backend/pkg/pubsub"
	"github.com/homequest/backend/pkg/xcontext"
)

type kafkaDispatcher struct {
	publisher pubsub.Publisher
	topic     string
}

// NewKafkaDispatcher queues requests to topic. They are delivered by the
// mailer worker.
func NewKafkaDispatcher(publisher pubsub.Publisher, topic string) *kafkaDispatcher {
	return &kafkaDispatcher{publisher: publisher, topic: topic}
}

func (d *kafkaDispatcher) NotifyApprovalRequested(ctx context.Context, req *ApprovalRequest) Outcome {
	b, err := json.Marshal(req)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal approval request: %v", err)
		return Failed(err.Error())
	}

	err = d.publisher.Publish(ctx, d.topic, &pubsub.Pack{Key: []byte(req.ExecutionID), Msg: b})
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot publish approval request of execution %s: %v", req.ExecutionID, err)
		return Failed(err.Error())
	}

	return Queued()
}
