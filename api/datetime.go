package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Clients send either RFC 3339 timestamps or zone-less local date-times.
var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

type dateTime struct {
	time.Time
}

func (d *dateTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("invalid date-time %q", s)
}
