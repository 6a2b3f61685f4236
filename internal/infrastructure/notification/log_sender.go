package notification

import (
	"context"

	"github.com/sirupsen/logrus"
)

// LogSender writes confirmations to the application log. It is the default
// driver for local development.
type LogSender struct {
	log *logrus.Logger
}

func NewLogSender(log *logrus.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, c Confirmation) error {
	s.log.WithFields(logrus.Fields{
		"appointment_id":    c.AppointmentID,
		"doctor_id":         c.DoctorID,
		"user_id":           c.UserID,
		"email":             c.Email,
		"appointment_start": c.AppointmentStart,
		"appointment_end":   c.AppointmentEnd,
	}).Info("Appointment confirmation")
	return nil
}

func (s *LogSender) Close() error {
	return nil
}
