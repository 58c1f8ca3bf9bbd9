package mail

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOTP(t *testing.T) {
	body, err := renderOTP("042137", "alice", 10*time.Minute)
	require.NoError(t, err)

	assert.Contains(t, body, "042137")
	assert.Contains(t, body, "Hello alice")
	assert.Contains(t, body, "expires in 10 minutes")
}

func TestRenderOTP_EscapesName(t *testing.T) {
	body, err := renderOTP("123456", "<script>", 10*time.Minute)
	require.NoError(t, err)

	assert.NotContains(t, body, "<script>")
}

func TestBuildMessage(t *testing.T) {
	msg := string(buildMessage("Credential Server", "no-reply@example.com", "alice@example.com", OTPSubject, "<p>hi</p>"))

	assert.True(t, strings.HasPrefix(msg, "From: Credential Server <no-reply@example.com>\r\n"))
	assert.Contains(t, msg, "To: alice@example.com\r\n")
	assert.Contains(t, msg, "Subject: Password Reset OTP\r\n")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>hi</p>"))
}

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msgs...)
	return nil
}

func (f *fakeWriter) Close() error { return nil }

func TestKafkaSender_SendOTP(t *testing.T) {
	w := &fakeWriter{}
	s := newKafkaSender(w, time.Second, 10*time.Minute)
	fixed := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	require.NoError(t, s.SendOTP(context.Background(), "alice@example.com", "123456", "alice"))
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	assert.Equal(t, []byte("alice@example.com"), msg.Key)

	var event OTPEvent
	require.NoError(t, json.Unmarshal(msg.Value, &event))
	assert.Equal(t, EventPasswordResetOTP, event.Type)
	assert.Equal(t, "alice@example.com", event.Email)
	assert.Equal(t, "123456", event.Code)
	assert.Equal(t, OTPSubject, event.Subject)
	assert.Contains(t, event.HTML, "123456")
	assert.Equal(t, fixed.Add(10*time.Minute), event.ExpiresAt)
}

func TestKafkaSender_WriteError(t *testing.T) {
	s := newKafkaSender(&fakeWriter{err: errors.New("broker down")}, time.Second, 10*time.Minute)

	err := s.SendOTP(context.Background(), "alice@example.com", "123456", "alice")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

// fakeSMTP accepts one message without TLS or auth and returns its DATA.
func fakeSMTP(t *testing.T) (string, int, <-chan string) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { _ = ln.Close() })

	data := make(chan string, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		tp := textproto.NewConn(conn)
		_ = tp.PrintfLine("220 localhost ESMTP")
		for {
			line, err := tp.ReadLine()
			if err != nil {
				return
			}
			switch cmd := strings.ToUpper(strings.Fields(line)[0]); cmd {
			case "EHLO", "HELO":
				_ = tp.PrintfLine("250 localhost")
			case "MAIL", "RCPT":
				_ = tp.PrintfLine("250 OK")
			case "DATA":
				_ = tp.PrintfLine("354 go ahead")
				body, err := tp.ReadDotBytes()
				if err != nil {
					return
				}
				data <- string(body)
				_ = tp.PrintfLine("250 queued")
			case "QUIT":
				_ = tp.PrintfLine("221 bye")
				return
			default:
				_ = tp.PrintfLine("502 unsupported")
			}
		}
	}()

	host, portStr, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return host, port, data
}

func TestSMTPSender_SendOTP(t *testing.T) {
	host, port, data := fakeSMTP(t)
	s := NewSMTPSender(host, port, "", "", "no-reply@example.com", "Credential Server", 5*time.Second, 10*time.Minute)

	require.NoError(t, s.SendOTP(context.Background(), "alice@example.com", "654321", "alice"))

	select {
	case body := <-data:
		assert.Contains(t, body, "Subject: Password Reset OTP")
		assert.Contains(t, body, "654321")
	case <-time.After(5 * time.Second):
		t.Fatal("message was not delivered")
	}
}

func TestSMTPSender_RejectsHeaderInjection(t *testing.T) {
	s := NewSMTPSender("localhost", 25, "", "", "no-reply@example.com", "", time.Second, 10*time.Minute)

	err := s.SendOTP(context.Background(), "alice@example.com\r\nBcc: eve@example.com", "654321", "alice")
	require.Error(t, err)
}

func TestSMTPSender_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	s := NewSMTPSender("127.0.0.1", addr.Port, "", "", "no-reply@example.com", "", time.Second, 10*time.Minute)

	err = s.SendOTP(context.Background(), "alice@example.com", "654321", "alice")
	require.Error(t, err)
}

