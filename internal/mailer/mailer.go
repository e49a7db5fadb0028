package mailer

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/hiresage/hiresage/internal/candidate"
)

// Sender delivers evaluation outcome emails. Sending is best-effort from the
// orchestrator's point of view: a failed send is logged and never retried
// within the same evaluation.
type Sender interface {
	SendOffer(ctx context.Context, c *candidate.Candidate, letterPath string) error
	SendRejection(ctx context.Context, c *candidate.Candidate, letterPath string) error
}

// SMTPConfig configures the SMTP sender. Password is resolved through the
// secrets loader before construction.
type SMTPConfig struct {
	Host     string
	Port     int
	From     string
	Username string
	Password string
}

// SMTPSender sends plain-text mail over SMTP with the generated letter as the
// message body.
type SMTPSender struct {
	cfg    SMTPConfig
	logger *zap.Logger
}

func NewSMTPSender(cfg SMTPConfig, logger *zap.Logger) (*SMTPSender, error) {
	if strings.TrimSpace(cfg.Host) == "" {
		return nil, errors.New("smtp host is required")
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, errors.New("smtp from address is required")
	}
	if cfg.Port <= 0 {
		cfg.Port = 587
	}
	return &SMTPSender{cfg: cfg, logger: logger}, nil
}

func (s *SMTPSender) SendOffer(ctx context.Context, c *candidate.Candidate, letterPath string) error {
	subject := fmt.Sprintf("Your offer for the %s position", positionOf(c))
	return s.send(ctx, c, subject, letterPath)
}

func (s *SMTPSender) SendRejection(ctx context.Context, c *candidate.Candidate, letterPath string) error {
	subject := "Update on your application"
	return s.send(ctx, c, subject, letterPath)
}

func (s *SMTPSender) send(ctx context.Context, c *candidate.Candidate, subject, letterPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Email) == "" {
		return fmt.Errorf("candidate %s has no email address", c.ID)
	}

	body, err := os.ReadFile(letterPath)
	if err != nil {
		return fmt.Errorf("read letter %q: %w", letterPath, err)
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.cfg.From, c.Email, subject, string(body))

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{c.Email}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail to %s: %w", c.Email, err)
	}

	s.logger.Info("email sent",
		zap.String("candidate_id", c.ID),
		zap.String("to", c.Email),
		zap.String("subject", subject),
	)

	return nil
}

// Disabled is the sender used when no SMTP configuration is present. It logs
// what would have been sent and succeeds.
type Disabled struct {
	logger *zap.Logger
}

func NewDisabled(logger *zap.Logger) *Disabled {
	return &Disabled{logger: logger}
}

func (d *Disabled) SendOffer(_ context.Context, c *candidate.Candidate, letterPath string) error {
	d.logger.Info("email disabled, skipping offer email",
		zap.String("candidate_id", c.ID),
		zap.String("letter", letterPath),
	)
	return nil
}

func (d *Disabled) SendRejection(_ context.Context, c *candidate.Candidate, letterPath string) error {
	d.logger.Info("email disabled, skipping rejection email",
		zap.String("candidate_id", c.ID),
		zap.String("letter", letterPath),
	)
	return nil
}

func positionOf(c *candidate.Candidate) string {
	if strings.TrimSpace(c.AppliedFor) == "" {
		return "open"
	}
	return c.AppliedFor
}
