package notification

//go:generate go run go.uber.org/mock/mockgen -source=./notification.go -destination=./mocks/notification_mock.go -package=mocks

import (
	"bytes"
	"context"
	"encoding/json"
	"fleet/config"
	"fleet/infras/otel"
	"fleet/shared/constant"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	ChannelSMS   = "sms"
	ChannelEmail = "email"

	otelScopeName   = constant.OtelExternalScopeName + ".notification"
	otelAttrChannel = "channel"

	defaultHTTPTimeout = 10 * time.Second
	maxErrorBodyBytes  = 512
)

// DispatchError is an outbound delivery failure. It is recorded against the recipient and never
// surfaced to API callers.
type DispatchError struct {
	Channel   string
	Recipient string
	Err       error
}

func (e *DispatchError) Error() string {
	return fmt.Sprintf("%s dispatch to %s failed: %v", e.Channel, e.Recipient, e.Err)
}

func (e *DispatchError) Unwrap() error {
	return e.Err
}

type Result struct {
	Channel   string
	Success   bool
	Simulated bool
	Err       error
}

type Dispatcher interface {
	SendSMS(ctx context.Context, number, text string) Result
	SendEmail(ctx context.Context, address, subject, body string) Result
}

type smsPayload struct {
	To      string `json:"to"`
	From    string `json:"from,omitempty"`
	Message string `json:"message"`
}

type dispatcherImpl struct {
	cfg    *config.Config
	client *http.Client
	otel   otel.Otel
}

func New(cfg *config.Config, otel otel.Otel) Dispatcher {
	return &dispatcherImpl{
		cfg:    cfg,
		client: &http.Client{Timeout: defaultHTTPTimeout},
		otel:   otel,
	}
}

// SendSMS posts the message to the configured SMS gateway. Without a gateway the send is simulated.
func (d *dispatcherImpl) SendSMS(ctx context.Context, number, text string) (res Result) {
	ctx, scope := d.otel.NewScope(ctx, otelScopeName, otelScopeName+".SendSMS")
	defer scope.End()
	defer func() { scope.TraceIfError(res.Err) }()

	scope.SetAttribute(otelAttrChannel, ChannelSMS)

	res = Result{Channel: ChannelSMS}
	sms := d.cfg.Notification.SMS

	if sms.GatewayURL == "" {
		log.Info().Str("to", number).Str("message", text).Msg("SMS gateway not configured, simulating send")

		res.Success = true
		res.Simulated = true

		return res
	}

	body, err := json.Marshal(smsPayload{To: number, From: sms.Sender, Message: text})
	if err != nil {
		res.Err = &DispatchError{Channel: ChannelSMS, Recipient: number, Err: err}

		return res
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sms.GatewayURL, bytes.NewReader(body))
	if err != nil {
		res.Err = &DispatchError{Channel: ChannelSMS, Recipient: number, Err: err}

		return res
	}

	req.Header.Set(constant.RequestHeaderContentType, constant.ContentTypeJSON)

	if sms.Token != "" {
		req.Header.Set(constant.RequestHeaderAuthorization, "Bearer "+sms.Token)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		log.Error().Err(err).Str("to", number).Msg("failed to call SMS gateway")

		res.Err = &DispatchError{Channel: ChannelSMS, Recipient: number, Err: err}

		return res
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyBytes))

		res.Err = &DispatchError{
			Channel:   ChannelSMS,
			Recipient: number,
			Err:       fmt.Errorf("gateway responded %s: %s", resp.Status, strings.TrimSpace(string(detail))),
		}

		log.Error().Err(res.Err).Str("to", number).Msg("SMS gateway rejected message")

		return res
	}

	res.Success = true

	return res
}

// SendEmail delivers a plain text mail through the configured SMTP relay. Without a host the send is simulated.
func (d *dispatcherImpl) SendEmail(ctx context.Context, address, subject, body string) (res Result) {
	ctx, scope := d.otel.NewScope(ctx, otelScopeName, otelScopeName+".SendEmail")
	defer scope.End()
	defer func() { scope.TraceIfError(res.Err) }()

	scope.SetAttribute(otelAttrChannel, ChannelEmail)

	res = Result{Channel: ChannelEmail}
	mail := d.cfg.Notification.SMTP

	if mail.Host == "" {
		log.Info().Str("to", address).Str("subject", subject).Msg("SMTP not configured, simulating send")

		res.Success = true
		res.Simulated = true

		return res
	}

	var auth smtp.Auth
	if mail.Username != "" {
		auth = smtp.PlainAuth("", mail.Username, mail.Password, mail.Host)
	}

	message := buildMessage(mail.From, address, subject, body)
	done := make(chan error, 1)

	go func() {
		done <- smtp.SendMail(net.JoinHostPort(mail.Host, mail.Port), auth, mail.From, []string{address}, message)
	}()

	select {
	case err := <-done:
		if err != nil {
			log.Error().Err(err).Str("to", address).Msg("failed to send email")

			res.Err = &DispatchError{Channel: ChannelEmail, Recipient: address, Err: err}

			return res
		}
	case <-ctx.Done():
		res.Err = &DispatchError{Channel: ChannelEmail, Recipient: address, Err: ctx.Err()}

		return res
	}

	res.Success = true

	return res
}

func buildMessage(from, to, subject, body string) []byte {
	var builder strings.Builder

	builder.WriteString("From: " + from + "\r\n")
	builder.WriteString("To: " + to + "\r\n")
	builder.WriteString("Subject: " + subject + "\r\n")
	builder.WriteString("MIME-Version: 1.0\r\n")
	builder.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	builder.WriteString("\r\n")
	builder.WriteString(body)

	return []byte(builder.String())
}
