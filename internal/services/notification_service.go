// internal/services/notification_service.go
package services

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nexpoint/nexpoint-backend/internal/config"
	"github.com/nexpoint/nexpoint-backend/internal/models"
)

// DeliveryResult reports the outcome of one notification attempt. A Skipped
// or Failed delivery never affects the order itself: invoice email is a
// courtesy, order and stock integrity are the guarantee.
type DeliveryResult struct {
	Status     models.DeliveryStatus
	Recipients []string
	Err        error
}

// NotificationService emails the invoice to the customer and to the fixed
// operator mailbox.
type NotificationService struct {
	config *config.Config
}

func NewNotificationService(cfg *config.Config) *NotificationService {
	return &NotificationService{config: cfg}
}

// Configured reports whether SMTP credentials are present. Without them
// delivery is skipped, not failed.
func (s *NotificationService) Configured() bool {
	email := s.config.Email
	return email.SMTPHost != "" && email.SMTPUsername != "" && email.SMTPPassword != ""
}

// SendOrderConfirmation delivers the invoice document for a confirmed order.
func (s *NotificationService) SendOrderConfirmation(order *models.Order, invoice []byte) DeliveryResult {
	recipients := []string{order.Email, s.config.Email.OperatorEmail}

	if !s.Configured() {
		logrus.WithField("order_number", order.OrderNumber).
			Warn("Email credentials not configured, skipping invoice delivery")
		return DeliveryResult{Status: models.DeliveryStatusSkipped, Recipients: recipients}
	}

	subject := "Order Confirmation - " + order.OrderNumber
	body := fmt.Sprintf(
		"Hi %s,\n\nThank you for your order from Nexpoint! Please find your invoice attached.\n\nOrder Number: %s\n\nBest regards,\nNEXPOINT Team",
		order.CustomerName, order.OrderNumber,
	)

	msg, err := buildMessage(s.config.Email, recipients, subject, body, order.OrderNumber+".pdf", invoice)
	if err != nil {
		return DeliveryResult{Status: models.DeliveryStatusFailed, Recipients: recipients, Err: err}
	}

	email := s.config.Email
	auth := smtp.PlainAuth("", email.SMTPUsername, email.SMTPPassword, email.SMTPHost)
	addr := fmt.Sprintf("%s:%s", email.SMTPHost, email.SMTPPort)

	if err := smtp.SendMail(addr, auth, email.FromEmail, recipients, msg); err != nil {
		logrus.WithFields(logrus.Fields{
			"order_number": order.OrderNumber,
			"error":        err,
		}).Error("Failed to send invoice email")
		return DeliveryResult{Status: models.DeliveryStatusFailed, Recipients: recipients, Err: err}
	}

	return DeliveryResult{Status: models.DeliveryStatusSent, Recipients: recipients}
}

// buildMessage composes a multipart MIME message with the invoice attached.
func buildMessage(email config.EmailConfig, to []string, subject, body, filename string, attachment []byte) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s <%s>\r\n", email.FromName, email.FromEmail)
	// Headers are written before the multipart body, so build them directly.
	headers := fmt.Sprintf(
		"To: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: multipart/mixed; boundary=%q\r\n\r\n",
		strings.Join(to, ", "), subject, writer.Boundary(),
	)
	buf.WriteString(headers)

	textHeader := textproto.MIMEHeader{}
	textHeader.Set("Content-Type", "text/plain; charset=\"UTF-8\"")
	textPart, err := writer.CreatePart(textHeader)
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	attachHeader := textproto.MIMEHeader{}
	attachHeader.Set("Content-Type", "application/pdf")
	attachHeader.Set("Content-Transfer-Encoding", "base64")
	attachHeader.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	attachPart, err := writer.CreatePart(attachHeader)
	if err != nil {
		return nil, err
	}

	encoded := base64.StdEncoding.EncodeToString(attachment)
	// Wrap base64 at 76 columns per RFC 2045.
	for len(encoded) > 0 {
		n := 76
		if len(encoded) < n {
			n = len(encoded)
		}
		if _, err := attachPart.Write([]byte(encoded[:n] + "\r\n")); err != nil {
			return nil, err
		}
		encoded = encoded[n:]
	}

	if err := writer.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}
