package domain

import "time"

// User is the slice of the user aggregate the reservation core needs:
// identity plus the loyalty points balance.
// Points is a non-negative integer; the schema enforces points >= 0 as a
// backstop and LoyaltyLedger enforces it in code.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Points    int       `json:"points"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
