package domain

import "time"

type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "Booked"
	BookingStatusCancelled BookingStatus = "Cancelled"
	BookingStatusCompleted BookingStatus = "Completed"
)

type Booking struct {
	ID                    string
	CarID                 string
	CustomerID            string
	Interval              Interval
	Status                BookingStatus
	CancellationConfirmed bool
	Feedback              *string
	Rating                *int
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Active reports whether the booking still claims its interval.
func (b *Booking) Active() bool {
	return b.Status == BookingStatusBooked
}

func (b *Booking) DurationHours() float64 {
	return b.Interval.End.Sub(b.Interval.Start).Hours()
}
