package repository

import (
	"encoding/base64"
	"encoding/json"
	"time"
)

// txCursor is the keyset position after the last transaction of a page.
// Transactions are listed by (date, id) descending.
type txCursor struct {
	Date string `json:"d"`
	ID   string `json:"i"`
}

func encodeCursor(date time.Time, id string) string {
	data, _ := json.Marshal(txCursor{Date: date.UTC().Format(time.DateOnly), ID: id})
	return base64.RawURLEncoding.EncodeToString(data)
}

// decodeCursor returns ErrInvalidCursor for anything encodeCursor could not
// have produced.
func decodeCursor(s string) (time.Time, string, error) {
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return time.Time{}, "", ErrInvalidCursor
	}
	var c txCursor
	if err := json.Unmarshal(data, &c); err != nil || c.ID == "" {
		return time.Time{}, "", ErrInvalidCursor
	}
	date, err := time.Parse(time.DateOnly, c.Date)
	if err != nil {
		return time.Time{}, "", ErrInvalidCursor
	}
	return date, c.ID, nil
}
