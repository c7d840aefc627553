package email

import (
	"fmt"
	"net/smtp"
	"time"

	"github.com/barakabank/bank-service/internal/config"
	"github.com/barakabank/bank-service/internal/models"
	"github.com/jordan-wright/email"
	"github.com/sirupsen/logrus"
)

// Sender handles sending emails via SMTP
type Sender struct {
	cfg    *config.Config
	logger *logrus.Logger
}

// NewSender creates a new email sender
func NewSender(cfg *config.Config, logger *logrus.Logger) *Sender {
	return &Sender{
		cfg:    cfg,
		logger: logger,
	}
}

var operationSubjects = map[models.OperationStatus]string{
	models.StatusCompleted: "Operation Executed",
	models.StatusApproved:  "Operation Approved and Executed",
	models.StatusRejected:  "Operation Rejected",
	models.StatusPending:   "Operation Pending Review",
}

// SendOperationNotice notifies an account owner about the outcome of an operation
func (s *Sender) SendOperationNotice(to, fullName string, op *models.Operation) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = operationSubjects[op.Status]

	body := fmt.Sprintf("Dear %s,\n\n", fullName)
	switch op.Status {
	case models.StatusCompleted, models.StatusApproved:
		body += fmt.Sprintf(
			"Your %s of %s DH has been executed.\n"+
				"Operation reference: %d\n"+
				"Execution time: %s\n",
			op.Type, op.Amount, op.ID, op.ExecutedAt.Format("2006-01-02 15:04:05"),
		)
	case models.StatusRejected:
		body += fmt.Sprintf(
			"Your %s of %s DH (reference %d) has been rejected after review.\n"+
				"Please contact your agency for details.\n",
			op.Type, op.Amount, op.ID,
		)
	default:
		body += fmt.Sprintf(
			"Your %s of %s DH (reference %d) is awaiting review.\n"+
				"Remember to attach a supporting document to speed up approval.\n",
			op.Type, op.Amount, op.ID,
		)
	}
	body += "\nBest regards,\nBaraka Bank"
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send operation notice to %s: %v", to, err)
		return fmt.Errorf("failed to send operation notice: %w", err)
	}
	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

// SendPendingReviewDigest reminds an agent about operations waiting too long
func (s *Sender) SendPendingReviewDigest(to string, operations []models.Operation) error {
	e := email.NewEmail()
	e.From = s.cfg.SenderEmail
	e.To = []string{to}
	e.Subject = fmt.Sprintf("%d operation(s) awaiting review", len(operations))

	body := "The following operations are still pending review:\n\n"
	for _, op := range operations {
		body += fmt.Sprintf("- #%d %s of %s DH, requested on %s\n",
			op.ID, op.Type, op.Amount, op.CreatedAt.Format("2006-01-02"))
	}
	body += fmt.Sprintf("\nGenerated on %s.\n\nBaraka Bank", time.Now().Format("2006-01-02 15:04:05"))
	e.Text = []byte(body)

	if err := s.send(e); err != nil {
		s.logger.Errorf("Failed to send review digest to %s: %v", to, err)
		return fmt.Errorf("failed to send review digest: %w", err)
	}
	s.logger.Infof("Email sent to %s: %s", to, e.Subject)
	return nil
}

func (s *Sender) send(e *email.Email) error {
	addr := fmt.Sprintf("%s:%s", s.cfg.SMTPHost, s.cfg.SMTPPort)
	auth := smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	return e.Send(addr, auth)
}
