package models

// User is a registered account and the exclusive owner of its booked
// tickets. Password carries the plain-text value only transiently during
// sign-up; it is cleared once hashed and omitted from storage when empty.
type User struct {
	Username       string   `json:"username"`
	UserID         string   `json:"user_id"`
	Password       string   `json:"password,omitempty"`
	HashedPassword string   `json:"hashed_password"`
	TicketsBooked  []Ticket `json:"tickets_booked"`
}

// Normalize replaces a nil ticket list with an empty one. Records written
// by older tooling may omit the field entirely.
func (u *User) Normalize() {
	if u.TicketsBooked == nil {
		u.TicketsBooked = []Ticket{}
	}
}

// Clone returns a copy whose ticket list does not share storage with the
// original, so a later splice of the original cannot show through.
func (u User) Clone() User {
	u.TicketsBooked = append([]Ticket{}, u.TicketsBooked...)
	return u
}
