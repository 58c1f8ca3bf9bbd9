package mail

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"

	"github.com/dtroode/credential-server/internal/model"
)

// EventPasswordResetOTP is the type of events published by KafkaSender.
const EventPasswordResetOTP = "password_reset_otp"

// OTPEvent asks the mail service to deliver a reset code.
type OTPEvent struct {
	Type        string    `json:"type"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	Code        string    `json:"code"`
	Subject     string    `json:"subject"`
	HTML        string    `json:"html"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

var _ model.EmailSender = (*KafkaSender)(nil)

// KafkaSender publishes reset codes to a topic consumed by a mail service.
type KafkaSender struct {
	writer      messageWriter
	sendTimeout time.Duration
	otpTTL      time.Duration
	now         func() time.Time
}

// NewKafkaSender creates a synchronous producer that waits for all replicas.
func NewKafkaSender(brokers []string, topic, username, password string, useTLS bool, sendTimeout, otpTTL time.Duration) *KafkaSender {
	transport := &kafka.Transport{}
	if username != "" {
		transport.SASL = plain.Mechanism{
			Username: username,
			Password: password,
		}
	}
	if useTLS {
		transport.TLS = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	return newKafkaSender(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Transport:    transport,
		WriteTimeout: 10 * time.Second,
	}, sendTimeout, otpTTL)
}

func newKafkaSender(writer messageWriter, sendTimeout, otpTTL time.Duration) *KafkaSender {
	return &KafkaSender{
		writer:      writer,
		sendTimeout: sendTimeout,
		otpTTL:      otpTTL,
		now:         time.Now,
	}
}

func (s *KafkaSender) SendOTP(ctx context.Context, to, code, displayName string) error {
	body, err := renderOTP(code, displayName, s.otpTTL)
	if err != nil {
		return err
	}

	value, err := json.Marshal(OTPEvent{
		Type:        EventPasswordResetOTP,
		Email:       to,
		DisplayName: displayName,
		Code:        code,
		Subject:     OTPSubject,
		HTML:        body,
		ExpiresAt:   s.now().Add(s.otpTTL).UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode otp event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	err = s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(to),
		Value: value,
		Time:  s.now(),
	})
	if err != nil {
		return fmt.Errorf("failed to publish otp event: %w", err)
	}

	return nil
}

// Close flushes and closes the producer.
func (s *KafkaSender) Close() error {
	return s.writer.Close()
}
