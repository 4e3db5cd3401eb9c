package domain

type Address struct {
	ID      int64  `json:"-"`
	HouseNo string `json:"houseNo"`
	City    string `json:"city"`
	State   string `json:"state"`
}

type Passenger struct {
	ID          int64
	Name        string
	PhoneNumber string
	Email       string
	Address     Address
}

// PassengerDetails is the contact view other services read by id.
type PassengerDetails struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	PhoneNum string `json:"phoneNum"`
	City     string `json:"city,omitempty"`
	State    string `json:"state,omitempty"`
}
