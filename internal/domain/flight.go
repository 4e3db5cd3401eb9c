package domain

import "time"

type Flight struct {
	ID             int64     `json:"flightId"`
	Airline        string    `json:"airline"`
	Origin         string    `json:"origin"`
	Destination    string    `json:"destination"`
	Price          float64   `json:"price"`
	DepartureTime  time.Time `json:"departureTime"`
	ArrivalTime    time.Time `json:"arrivalTime"`
	TotalSeats     int       `json:"totalSeats"`
	AvailableSeats int       `json:"availableSeats"`
	CreatedAt      time.Time `json:"-"`
	UpdatedAt      time.Time `json:"-"`
}
