package notification

import (
	"bytes"
	"context"
	"fmt"
	"mime"
	"net/smtp"

	"github.com/homequest/backend/config"
	"github.com/homequest/backend/pkg/xcontext"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type smtpDispatcher struct {
	cfg      config.SMTPConfigs
	sendMail sendMailFunc
}

// NewSMTPDispatcher sends requests as HTML emails. smtp.SendMail upgrades the
// connection with STARTTLS when the server supports it.
func NewSMTPDispatcher(cfg config.SMTPConfigs) *smtpDispatcher {
	return &smtpDispatcher{cfg: cfg, sendMail: smtp.SendMail}
}

func (d *smtpDispatcher) NotifyApprovalRequested(ctx context.Context, req *ApprovalRequest) Outcome {
	if req.Recipient == "" {
		return Failed("empty recipient")
	}

	from := d.cfg.From
	if from == "" {
		from = d.cfg.Username
	}

	var auth smtp.Auth
	if d.cfg.Username != "" {
		auth = smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)
	}

	err := d.sendMail(d.cfg.Address(), auth, from, []string{req.Recipient}, buildMessage(from, req))
	if err != nil {
		xcontext.Logger(ctx).Warnf("Cannot send approval email of execution %s: %v", req.ExecutionID, err)
		return Failed(err.Error())
	}

	return Sent()
}

func buildMessage(from string, req *ApprovalRequest) []byte {
	buf := new(bytes.Buffer)
	fmt.Fprintf(buf, "From: %s\r\n", from)
	fmt.Fprintf(buf, "To: %s\r\n", req.Recipient)
	fmt.Fprintf(buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", req.Subject))
	fmt.Fprintf(buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(buf, "Content-Type: text/html; charset=\"utf-8\"\r\n")
	fmt.Fprintf(buf, "\r\n")
	buf.WriteString(req.Body)
	return buf.Bytes()
}
