package domain

import "time"

// PNRLength is the size of the booking reference handed to customers.
const PNRLength = 8

type Ticket struct {
	ID            int64
	PNR           string
	FlightID      int64
	PassengerID   int64
	NumberOfSeats int
	Booked        bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TicketView joins a ticket with its passenger and flight for read endpoints.
type TicketView struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	Origin        string    `json:"origin"`
	Destination   string    `json:"destination"`
	PNR           string    `json:"pnr"`
	DepartureTime time.Time `json:"departureTime"`
	ArrivalTime   time.Time `json:"arrivalTime"`
	NumberOfSeats int       `json:"numberOfSeats"`
	Booked        bool      `json:"booked"`
}

// TicketBookedEvent is published once a ticket row exists.
type TicketBookedEvent struct {
	Email    string `json:"email"`
	PNR      string `json:"pnr"`
	FlightID int64  `json:"flightId"`
	Seats    int    `json:"seats"`
}
