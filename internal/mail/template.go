// Package mail delivers password reset codes by SMTP or through a Kafka
// outbox topic.
package mail

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"
)

// OTPSubject is the subject line of reset emails.
const OTPSubject = "Password Reset OTP"

var otpTemplate = template.Must(template.New("otp").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Password Reset Request</h2>
    <p>Hello {{.Name}},</p>
    <p>Use the code below to reset your password:</p>
    <p style="font-size: 32px; font-weight: bold; letter-spacing: 8px; text-align: center;">{{.Code}}</p>
    <p>The code expires in {{.ValidFor}} minutes.</p>
    <p style="color: #d32f2f;">If you did not request a password reset, ignore this email.</p>
  </div>
</body>
</html>`))

type otpData struct {
	Name     string
	Code     string
	ValidFor int
}

// renderOTP renders the HTML body for a reset code.
func renderOTP(code, displayName string, validFor time.Duration) (string, error) {
	if displayName == "" {
		displayName = "there"
	}

	var buf bytes.Buffer
	err := otpTemplate.Execute(&buf, otpData{
		Name:     displayName,
		Code:     code,
		ValidFor: int(validFor.Minutes()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render otp email: %w", err)
	}
	return buf.String(), nil
}

// buildMessage assembles an RFC 5322 HTML message.
func buildMessage(fromName, from, to, subject, htmlBody string) []byte {
	fromHeader := from
	if fromName != "" {
		fromHeader = fmt.Sprintf("%s <%s>", fromName, from)
	}

	return []byte(strings.Join([]string{
		fmt.Sprintf("From: %s", fromHeader),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		`Content-Type: text/html; charset="UTF-8"`,
		"",
		htmlBody,
	}, "\r\n"))
}
