package email

import (
	"context"
	"fmt"

	"github.com/hivemotors/carbooking/config"
	"github.com/hivemotors/carbooking/internal/broadcast"
	"github.com/hivemotors/carbooking/internal/kafka"
	"github.com/hivemotors/carbooking/internal/logger"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

const timeLayout = "02 Jan 2006 15:04 MST"

type Sender struct {
	cfg config.MailConfig
}

func NewSender(cfg config.MailConfig) *Sender {
	return &Sender{cfg: cfg}
}

// Send delivers the notification for one booking event. Delivery is
// best-effort: failures propagate to the caller for logging only, state is
// never rolled back on a failed mail.
func (s *Sender) Send(ctx context.Context, event kafka.BookingEvent) error {
	if event.CustomerEmail == "" {
		logger.Get().Warn("booking event without customer email, skipping mail",
			zap.String("booking_id", event.BookingID))
		return nil
	}

	var subject, body string
	switch event.Type {
	case broadcast.EventBookingCreated:
		subject = "Booking Confirmation"
		body = fmt.Sprintf(
			"Dear %s,\n\nYour booking for %s has been confirmed.\n\n"+
				"Booking Details:\n"+
				"Start: %s\n"+
				"End: %s\n\n"+
				"Thank you for choosing %s.",
			event.CustomerName, event.CarLabel,
			event.Start.Format(timeLayout), event.End.Format(timeLayout),
			s.cfg.FromName,
		)
	case broadcast.EventBookingCancelled:
		confirmLink := fmt.Sprintf("%s/api/bookings/%s/confirm-cancellation", s.cfg.PublicBaseURL, event.BookingID)
		subject = "Booking Cancellation Confirmation"
		body = fmt.Sprintf(
			"Dear %s,\n\nYour booking for %s has been cancelled.\n\n"+
				"Please confirm your cancellation by opening the following link:\n%s\n\n"+
				"We hope to see you again soon.",
			event.CustomerName, event.CarLabel, confirmLink,
		)
	default:
		return nil
	}

	if s.cfg.SendGridKey == "" {
		logger.Get().Warn("sendgrid key not configured, mail not sent",
			zap.String("booking_id", event.BookingID), zap.String("type", event.Type))
		return nil
	}

	from := mail.NewEmail(s.cfg.FromName, s.cfg.FromEmail)
	to := mail.NewEmail(event.CustomerName, event.CustomerEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.cfg.SendGridKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("send mail via sendgrid: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("sendgrid returned status %d: %s", response.StatusCode, response.Body)
	}

	logger.Get().Info("notification mail sent",
		zap.String("booking_id", event.BookingID),
		zap.String("type", event.Type),
		zap.String("to", event.CustomerEmail))
	return nil
}
