package email

import (
	"bytes"
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/Domenick1991/flightbooking/config"
	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg Message) error {
	return m.Called(ctx, msg).Error(0)
}

func TestRelay_SendsConfirmation(t *testing.T) {
	sender := &MockSender{}
	ctx := context.Background()
	sender.On("Send", ctx, Message{
		From:    "no-reply@flightapp.com",
		To:      "a@x.com",
		Subject: "Ticket Booking Confirmation",
		Body:    ConfirmationBody(domain.TicketBookedEvent{PNR: "ABCD1234", FlightID: 7, Seats: 2}),
	}).Return(nil).Once()

	relay := NewRelay(sender, "no-reply@flightapp.com", nil)
	err := relay.HandleMessage(ctx, []byte(`{"email":"a@x.com","pnr":"ABCD1234","flightId":7,"seats":2}`))

	require.NoError(t, err)
	sender.AssertExpectations(t)
}

func TestRelay_UndecodableMessageIsLogged(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	sender := &MockSender{}

	relay := NewRelay(sender, "no-reply@flightapp.com", logger.NewWithWriter("email", &buf))
	err := relay.HandleMessage(context.Background(), []byte("{not json"))

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "undecodable booking event")
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRelay_SendFailureIsAbsorbed(t *testing.T) {
	color.NoColor = true
	var buf bytes.Buffer
	sender := &MockSender{}
	sender.On("Send", mock.Anything, mock.Anything).Return(errors.New("smtp down")).Once()

	relay := NewRelay(sender, "no-reply@flightapp.com", logger.NewWithWriter("email", &buf))
	relay.Handle(context.Background(), domain.TicketBookedEvent{Email: "a@x.com", PNR: "ABCD1234"})

	assert.Contains(t, buf.String(), "smtp down")
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestConfirmationBody(t *testing.T) {
	body := ConfirmationBody(domain.TicketBookedEvent{PNR: "ABCD1234", FlightID: 7, Seats: 2})

	assert.Contains(t, body, "PNR: ABCD1234")
	assert.Contains(t, body, "Flight ID: 7")
	assert.Contains(t, body, "Seats: 2")
}

func TestSMTPSender_Send(t *testing.T) {
	s := NewSMTPSender(config.EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 587, Username: "u", Password: "p"})
	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	s.sendMail = func(addr string, _ smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		return nil
	}

	err := s.Send(context.Background(), Message{From: "no-reply@flightapp.com", To: "a@x.com", Subject: ConfirmationSubject, Body: "hello"})

	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com:587", gotAddr)
	assert.Equal(t, "no-reply@flightapp.com", gotFrom)
	assert.Equal(t, []string{"a@x.com"}, gotTo)
	assert.Contains(t, string(gotMsg), "Subject: Ticket Booking Confirmation\r\n")
	assert.Contains(t, string(gotMsg), "\r\n\r\nhello")
}

func TestSMTPSender_SendError(t *testing.T) {
	s := NewSMTPSender(config.EmailConfig{SMTPHost: "smtp.example.com", SMTPPort: 25})
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("refused") }

	assert.ErrorContains(t, s.Send(context.Background(), Message{To: "a@x.com"}), "refused")
}
