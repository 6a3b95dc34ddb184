package intake

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/mail"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"github.com/mikey/callsheet-pipeline/internal/core"
	"go.uber.org/zap"
)

// SMTPIntake receives production emails over SMTP and runs each one through
// the processing pipeline. Results are reported through an optional callback;
// delivery is always accepted so the upstream MTA never queues retries for
// emails we merely failed to classify.
type SMTPIntake struct {
	coordinator    *core.BatchCoordinator
	logger         *zap.Logger
	listenAddr     string
	server         *smtp.Server
	processTimeout time.Duration
	onResult       func(core.EmailProcessingResult)
}

// NewSMTPIntake creates a new SMTP intake server
func NewSMTPIntake(
	coordinator *core.BatchCoordinator,
	logger *zap.Logger,
	listenAddr string,
	processTimeout time.Duration,
) *SMTPIntake {
	if processTimeout <= 0 {
		processTimeout = 60 * time.Second
	}
	return &SMTPIntake{
		coordinator:    coordinator,
		logger:         logger,
		listenAddr:     listenAddr,
		processTimeout: processTimeout,
	}
}

// OnResult registers a callback invoked for every processed email.
// Must be called before Start.
func (f *SMTPIntake) OnResult(fn func(core.EmailProcessingResult)) {
	f.onResult = fn
}

// Start starts the SMTP intake service
func (f *SMTPIntake) Start() error {
	f.server = smtp.NewServer(&smtpBackend{intake: f})

	f.server.Addr = f.listenAddr
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	f.server.MaxRecipients = 50
	f.server.AllowInsecureAuth = true

	f.logger.Info("SMTP intake starting", zap.String("address", f.listenAddr))

	go func() {
		if err := f.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				f.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP intake service
func (f *SMTPIntake) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail processes a single email through the pipeline.
// This is mainly used for testing or direct API calls.
func (f *SMTPIntake) ProcessEmail(ctx context.Context, email *core.EmailContent) (*core.EmailProcessingResult, error) {
	result := f.coordinator.ProcessEmail(ctx, *email)
	return &result, nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	intake *SMTPIntake
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		intake:     b.intake,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	intake     *SMTPIntake
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not needed for intake)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data handles the email data
func (s *smtpSession) Data(r io.Reader) error {
	rawData, err := io.ReadAll(r)
	if err != nil {
		s.intake.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(rawData))
	if err != nil {
		s.intake.logger.Error("Failed to parse email message", zap.Error(err))
		return err
	}

	email, err := emailFromMessage(msg, s.sender)
	if err != nil {
		s.intake.logger.Error("Failed to extract email content", zap.Error(err))
		return err
	}

	senderDomain := "unknown"
	if parts := strings.Split(email.Sender, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.intake.processTimeout)
	defer cancel()

	result := s.intake.coordinator.ProcessEmail(ctx, *email)

	if s.intake.onResult != nil {
		s.intake.onResult(result)
	}

	logFields := []zap.Field{
		zap.String("message_id", email.MessageID),
		zap.String("sender_domain", senderDomain),
		zap.Int("attachments", len(email.Attachments)),
	}
	if result.Classification != nil {
		logFields = append(logFields,
			zap.String("type", string(result.Classification.Type)),
			zap.String("priority", string(result.Classification.Priority)),
			zap.Float64("confidence", result.Classification.Confidence))
	}
	if len(result.Errors) > 0 {
		logFields = append(logFields, zap.Strings("errors", result.Errors))
	}
	s.intake.logger.Info("Processed email", logFields...)

	return nil
}

// Logout handles SMTP logout (not needed for intake)
func (s *smtpSession) Logout() error {
	return nil
}

// ParseEmail reads a raw RFC 5322 message and converts it into pipeline
// input. Used by the CLI; the SMTP session does the same conversion after
// the DATA command.
func ParseEmail(r io.Reader) (*core.EmailContent, error) {
	msg, err := mail.ReadMessage(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse email: %w", err)
	}
	return emailFromMessage(msg, "")
}

// emailFromMessage converts a parsed mail message into pipeline input.
// The Message-ID header is used when present so cached classifications
// survive redelivery; otherwise a fresh identifier is generated.
func emailFromMessage(msg *mail.Message, envelopeSender string) (*core.EmailContent, error) {
	parsed, err := extractMessageContent(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse message content: %w", err)
	}

	subject := msg.Header.Get("Subject")
	if decoded, err := decodeEncodedHeader(subject); err == nil {
		subject = decoded
	}

	sender := msg.Header.Get("From")
	if sender == "" {
		sender = envelopeSender
	}

	messageID := strings.Trim(msg.Header.Get("Message-Id"), "<> ")
	if messageID == "" {
		messageID = uuid.NewString()
	}

	timestamp := time.Now()
	if date, err := msg.Header.Date(); err == nil {
		timestamp = date
	}

	return &core.EmailContent{
		MessageID:      messageID,
		Subject:        subject,
		Body:           parsed.text,
		Sender:         sender,
		Timestamp:      timestamp,
		HasAttachments: len(parsed.attachments) > 0,
		Attachments:    parsed.attachments,
	}, nil
}
