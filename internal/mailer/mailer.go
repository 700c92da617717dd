package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/url"
	"sync"

	"github.com/joblane/platform/config"
	"github.com/joblane/platform/pkg/circuit"
	"github.com/joblane/platform/pkg/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// Sender is the outbound message transport. The SMTP implementation keeps
// one connection open across calls; tests supply a stub.
type Sender interface {
	Send(message *gomail.Message) error
	Close() error
}

// smtpSender wraps a gomail dialer, opening the connection lazily and
// re-dialing after a send failure.
type smtpSender struct {
	dialer *gomail.Dialer

	mu sync.Mutex
	sc gomail.SendCloser
}

func newSMTPSender(cfg config.SMTPConfig) *smtpSender {
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Account, cfg.Password),
	}
}

func (s *smtpSender) Send(message *gomail.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sc == nil {
		sc, err := s.dialer.Dial()
		if err != nil {
			return fmt.Errorf("failed to dial smtp server: %w", err)
		}
		s.sc = sc
	}

	if err := gomail.Send(s.sc, message); err != nil {
		// Drop the connection; the next call re-dials.
		_ = s.sc.Close()
		s.sc = nil
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

func (s *smtpSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sc == nil {
		return nil
	}
	err := s.sc.Close()
	s.sc = nil
	return err
}

const verificationSubject = "Verify your JobLane email address"

const verificationTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #1f2933;">
	<h2>Welcome to JobLane, {{.Name}}!</h2>
	<p>Please confirm your email address to activate your account.</p>
	<p>
		<a href="{{.VerifyURL}}"
		   style="display:inline-block;padding:10px 24px;background:#2563eb;color:#ffffff;text-decoration:none;border-radius:4px;">
			Verify Email
		</a>
	</p>
	<p>Or paste this link into your browser:</p>
	<p><a href="{{.VerifyURL}}">{{.VerifyURL}}</a></p>
	<p>This link expires in {{.TTL}}. If you did not create a JobLane account, you can ignore this message.</p>
</body>
</html>`

// Mailer dispatches verification emails. It is constructed once at startup
// with an injected transport, reused per call, and closed at shutdown.
// Callers treat delivery failure as best-effort: log and move on.
type Mailer struct {
	sender  Sender
	breaker *circuit.Breaker
	tmpl    *template.Template
	from    string
	baseURL string
	ttl     string
}

// New builds the production mailer from SMTP configuration.
func New(cfg *config.Config, log *zap.Logger) *Mailer {
	return NewWithSender(cfg, newSMTPSender(cfg.SMTP), log)
}

// NewWithSender builds a mailer around an explicit transport.
func NewWithSender(cfg *config.Config, sender Sender, log *zap.Logger) *Mailer {
	return &Mailer{
		sender:  sender,
		breaker: circuit.NewBreaker("smtp", circuit.DefaultConfig(), log),
		tmpl:    template.Must(template.New("verification").Parse(verificationTemplate)),
		from:    cfg.SMTP.From,
		baseURL: cfg.App.BaseURL,
		ttl:     cfg.Token.VerificationTTL.String(),
	}
}

// SendVerification renders and dispatches the verification email. The
// returned error is informational; registration must not fail because the
// notification channel is degraded, so callers log it and continue.
func (m *Mailer) SendVerification(ctx context.Context, email, name, token string) error {
	verifyURL := fmt.Sprintf("%s/api/v1/auth/verify?token=%s", m.baseURL, url.QueryEscape(token))

	var body bytes.Buffer
	if err := m.tmpl.Execute(&body, map[string]string{
		"Name":      name,
		"VerifyURL": verifyURL,
		"TTL":       m.ttl,
	}); err != nil {
		return fmt.Errorf("failed to render verification email: %w", err)
	}

	message := gomail.NewMessage()
	message.SetHeader("From", m.from)
	message.SetHeader("To", email)
	message.SetHeader("Subject", verificationSubject)
	message.SetBody("text/html", body.String())

	err := m.breaker.Do(func() error {
		return m.sender.Send(message)
	})
	if err != nil {
		logger.WarnWithContext(ctx, "Failed to deliver verification email").
			Err(err).
			Log()
		return err
	}

	logger.InfoWithContext(ctx, "Verification email dispatched").
		Log()

	return nil
}

// Close releases the underlying transport connection.
func (m *Mailer) Close() error {
	return m.sender.Close()
}
