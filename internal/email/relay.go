package email

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/logger"
)

// Relay turns booking events into confirmation mails. Failures are logged
// and never retried.
type Relay struct {
	sender Sender
	from   string
	log    *logger.Logger
}

func NewRelay(sender Sender, from string, log *logger.Logger) *Relay {
	if log == nil {
		log = logger.Nop()
	}
	return &Relay{sender: sender, from: from, log: log}
}

// HandleMessage decodes a raw broker message. It always returns nil so the
// consumer keeps going.
func (r *Relay) HandleMessage(ctx context.Context, body []byte) error {
	var event domain.TicketBookedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		r.log.Errorf("relay", "undecodable booking event: %v", err)
		return nil
	}
	r.Handle(ctx, event)
	return nil
}

func (r *Relay) Handle(ctx context.Context, event domain.TicketBookedEvent) {
	r.log.Infof("relay", "received booking %s for %s", event.PNR, event.Email)
	if event.Email == "" {
		r.log.Warnf("relay", "booking %s has no recipient, skipping", event.PNR)
		return
	}

	msg := Message{
		From:    r.from,
		To:      event.Email,
		Subject: ConfirmationSubject,
		Body:    ConfirmationBody(event),
	}
	if err := r.sender.Send(ctx, msg); err != nil {
		r.log.Errorf("relay", "confirmation for %s not sent: %v", event.PNR, err)
		return
	}
	r.log.Infof("relay", "confirmation for %s sent to %s", event.PNR, event.Email)
}

func ConfirmationBody(event domain.TicketBookedEvent) string {
	return fmt.Sprintf("Dear Customer,\n\n"+
		"Your ticket has been booked successfully.\n\n"+
		"PNR: %s\n"+
		"Flight ID: %d\n"+
		"Seats: %d\n\n"+
		"Thank you for flying with us.\n", event.PNR, event.FlightID, event.Seats)
}
