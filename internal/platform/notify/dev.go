package notify

import (
	"context"

	"github.com/krishisetu/krishisetu/pkg/logger"
)

// DevSMS logs codes instead of dispatching them. Used outside production so
// the OTP flows work without an SMS gateway account.
type DevSMS struct{}

func NewDevSMS() *DevSMS {
	return &DevSMS{}
}

func (d *DevSMS) SendOTP(ctx context.Context, phone, code string) error {
	logger.InfoContext(ctx, "dev sms: otp issued", "phone", phone, "code", code)
	return nil
}

// DevEmail logs instead of sending.
type DevEmail struct{}

func NewDevEmail() *DevEmail {
	return &DevEmail{}
}

func (d *DevEmail) Send(toEmail, toName, subject, text, html string) (string, error) {
	logger.Info("dev email", "to", toEmail, "subject", subject, "text", text)
	return "dev", nil
}

func (d *DevEmail) SendBookingUpdate(toEmail, toName, topic, status string) error {
	_, err := d.Send(toEmail, toName, "Consultation update", "Your consultation on "+topic+" is now "+status+".", "")
	return err
}

func (d *DevEmail) SendWorkshopConfirmation(toEmail, toName, title, location string) error {
	_, err := d.Send(toEmail, toName, "Workshop registration confirmed", "You are registered for "+title+" at "+location+".", "")
	return err
}
