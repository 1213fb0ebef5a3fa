package subscriber

import "time"

// Subscriber is the persisted record. It is created once and never mutated.
type Subscriber struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"createdAt"`
}

// Summary is the only projection reads ever return.
type Summary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func (s Subscriber) Summary() Summary {
	return Summary{ID: s.ID, Name: s.Name}
}
