package mailservice

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sushihentaime/blogsphere/internal/common"
	"golang.org/x/exp/rand"
)

func NewMailService(mb common.MessageConsumer, cfg Config, logger *slog.Logger) (*MailService, error) {
	tp, err := NewTemplate()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &MailService{
		mb:     mb,
		m:      NewMailer(cfg, tp),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}, nil
}

// SendVerificationEmails mails the verification link of every user.created message.
func (s *MailService) SendVerificationEmails() {
	s.consume(common.UserCreatedKey, common.UserCreatedQueue, "verification email", func(body []byte) (string, any, string, error) {
		var data verificationEmail
		if err := json.Unmarshal(body, &data); err != nil {
			return "", nil, "", err
		}
		return data.Email, data, verificationTemplate, nil
	})
}

// SendOTPEmails mails the one-time password of every user.otp message.
func (s *MailService) SendOTPEmails() {
	s.consume(common.UserOTPKey, common.UserOTPQueue, "otp email", func(body []byte) (string, any, string, error) {
		var data otpEmail
		if err := json.Unmarshal(body, &data); err != nil {
			return "", nil, "", err
		}
		return data.Email, data, otpTemplate, nil
	})
}

type decodeFunc func(body []byte) (recipient string, data any, templateFile string, err error)

func (s *MailService) consume(key common.BindingKey, queue common.Queue, kind string, decode decodeFunc) {
	msgs, err := s.mb.Consume(key, common.UserExchange, queue)
	if err != nil {
		s.logger.Error("could not consume message", slog.String("error", err.Error()))
		return
	}

	go func() {
		for {
			select {
			case msg, ok := <-msgs:
				if !ok {
					return
				}

				recipient, data, templateFile, err := decode(msg.Body)
				if err != nil {
					s.logger.Error("could not unmarshal message", slog.String("error", err.Error()))
					msg.Nack(false, false)
					continue
				}

				s.deliver(msg, kind, recipient, data, templateFile)

			case <-s.ctx.Done():
				s.logger.Info("stopping mail consumer due to context cancellation", slog.String("queue", string(queue)))
				return
			}
		}
	}()
}

// deliver sends one email using exponential backoff with jitter. The message is
// acknowledged either way so a bad address cannot block the queue.
func (s *MailService) deliver(msg amqp.Delivery, kind, recipient string, data any, templateFile string) {
	for attempt := 0; attempt < maxRetries; attempt++ {
		err := s.m.send(recipient, data, templateFile)
		if err == nil {
			s.logger.Info(kind+" sent", slog.String("email", recipient))
			msg.Ack(false)
			return
		}

		delay := time.Duration(rand.Int63n(int64(baseDelay) << uint(attempt)))
		s.logger.Info("delaying "+kind, slog.String("email", recipient), slog.Int("attempt", attempt), slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-s.ctx.Done():
			return
		}
	}

	s.logger.Error("could not send "+kind, slog.String("email", recipient))
	msg.Ack(false)
}

func (s *MailService) Close() {
	s.cancel()
}
