package notify

import "context"

// SMSSender delivers one-time codes to a phone number. The development
// implementation logs the code instead of sending it.
type SMSSender interface {
	SendOTP(ctx context.Context, phone, code string) error
}

// EmailSender delivers transactional email (booking updates, workshop
// confirmations). Disabled senders return an error from Send.
type EmailSender interface {
	Send(toEmail, toName, subject, text, html string) (string, error)
	SendBookingUpdate(toEmail, toName, topic, status string) error
	SendWorkshopConfirmation(toEmail, toName, title, location string) error
}
