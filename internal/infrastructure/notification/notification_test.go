package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/smtp"
	"strings"
	"sync"
	"testing"
	"time"

	"clinic-booking-api/config"
	"clinic-booking-api/internal/domain/entity"
	"clinic-booking-api/pkg/metrics"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker/v2"
)

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type recordingSender struct {
	mu     sync.Mutex
	sent   []Confirmation
	block  chan struct{}
	err    error
	closed bool
}

func (s *recordingSender) Send(_ context.Context, c Confirmation) error {
	if s.block != nil {
		<-s.block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, c)
	return s.err
}

func (s *recordingSender) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func testAppointment() (entity.Caller, entity.Appointment) {
	caller := entity.Caller{UserID: uuid.New(), Email: "pat@clinic.local", RoleID: entity.RoleIDUser}
	start := time.Date(2031, time.March, 4, 11, 0, 0, 0, time.UTC)
	appt := entity.NewAppointment(uuid.New(), uuid.New(), start, start.Add(30*time.Minute)).
		WithAssignedUser(caller.UserID)
	appt.Doctor = entity.Doctor{ID: appt.DoctorID, FirstName: "Grace", LastName: "Hopper"}
	return caller, appt
}

func TestDispatcher_DeliversAndDrainsOnShutdown(t *testing.T) {
	sender := &recordingSender{}
	d := NewDispatcher(sender, quietLogger(), metrics.NewCollector("test", prometheus.NewRegistry()), 10)

	caller, appt := testAppointment()
	for i := 0; i < 3; i++ {
		if err := d.SendConfirmation(context.Background(), caller, appt); err != nil {
			t.Fatalf("SendConfirmation() error = %v", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := d.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	if len(sender.sent) != 3 {
		t.Fatalf("delivered %d confirmations, want 3", len(sender.sent))
	}
	if sender.sent[0].Email != caller.Email || sender.sent[0].DoctorName != "Grace Hopper" {
		t.Fatalf("confirmation = %+v", sender.sent[0])
	}
	if !sender.closed {
		t.Fatalf("sender not closed on shutdown")
	}

	if err := d.SendConfirmation(context.Background(), caller, appt); !errors.Is(err, ErrDispatcherClosed) {
		t.Fatalf("SendConfirmation() after shutdown error = %v, want %v", err, ErrDispatcherClosed)
	}
}

func TestDispatcher_DropsWhenFull(t *testing.T) {
	sender := &recordingSender{block: make(chan struct{})}
	d := NewDispatcher(sender, quietLogger(), nil, 1)
	caller, appt := testAppointment()

	// the worker may pick the first entry up before blocking, so fill past capacity
	var full bool
	for i := 0; i < 3; i++ {
		if err := d.SendConfirmation(context.Background(), caller, appt); errors.Is(err, ErrQueueFull) {
			full = true
			break
		}
	}
	if !full {
		t.Fatalf("queue never reported full")
	}

	close(sender.block)
	if err := d.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestSMTPSender_FormatsAndTrips(t *testing.T) {
	s := NewSMTPSender(config.SMTPConfig{Host: "mail.local", Port: 2525, From: "no-reply@clinic.local"})

	var gotAddr string
	var gotMsg []byte
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotMsg = addr, msg
		return nil
	}

	_, appt := testAppointment()
	c := NewConfirmation(entity.Caller{Email: "pat@clinic.local"}, appt, time.Now())
	if err := s.Send(context.Background(), c); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	if gotAddr != "mail.local:2525" {
		t.Fatalf("addr = %q", gotAddr)
	}
	if !strings.Contains(string(gotMsg), "To: pat@clinic.local\r\n") || !strings.Contains(string(gotMsg), "Grace Hopper") {
		t.Fatalf("message = %q", gotMsg)
	}

	calls := 0
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		calls++
		return errors.New("connection refused")
	}
	for i := 0; i < consecutiveFailures; i++ {
		_ = s.Send(context.Background(), c)
	}
	if err := s.Send(context.Background(), c); !errors.Is(err, gobreaker.ErrOpenState) {
		t.Fatalf("Send() with open breaker error = %v, want %v", err, gobreaker.ErrOpenState)
	}
	if calls != consecutiveFailures {
		t.Fatalf("sendMail called %d times, want %d", calls, consecutiveFailures)
	}
}

type fakeWriter struct {
	msgs   []kafka.Message
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestKafkaSender_KeysByAppointment(t *testing.T) {
	w := &fakeWriter{}
	s := &KafkaSender{writer: w}

	caller, appt := testAppointment()
	c := NewConfirmation(caller, appt, time.Now())
	if err := s.Send(context.Background(), c); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	if len(w.msgs) != 1 {
		t.Fatalf("wrote %d messages, want 1", len(w.msgs))
	}
	if string(w.msgs[0].Key) != appt.ID.String() {
		t.Fatalf("key = %q, want %q", w.msgs[0].Key, appt.ID)
	}

	var decoded Confirmation
	if err := json.Unmarshal(w.msgs[0].Value, &decoded); err != nil {
		t.Fatalf("payload is not JSON: %v", err)
	}
	if decoded.AppointmentID != appt.ID || decoded.Email != caller.Email {
		t.Fatalf("payload = %+v", decoded)
	}

	if err := s.Close(); err != nil || !w.closed {
		t.Fatalf("Close() = %v, closed = %v", err, w.closed)
	}
}

func TestLogSender_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetFormatter(&logrus.JSONFormatter{})

	caller, appt := testAppointment()
	if err := NewLogSender(log).Send(context.Background(), NewConfirmation(caller, appt, time.Now())); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v", err)
	}
	if entry["appointment_id"] != appt.ID.String() || entry["email"] != caller.Email {
		t.Fatalf("log entry = %v", entry)
	}
}
