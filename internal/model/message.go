package model

import "time"

// Message is a single accepted direct message. Timestamp is assigned by the
// server at acceptance, never by the client. Messages are immutable.
type Message struct {
	SenderID   ParticipantID
	ReceiverID ParticipantID
	Content    string
	Timestamp  time.Time
	// Seq breaks ordering ties between messages accepted in the same instant
	Seq int64
}

// RateKey identifies one daily send counter. A zero ReceiverID means the
// counter covers all receivers for the sender. Day is part of the key, so
// counters roll over naturally at the calendar-day boundary.
type RateKey struct {
	SenderID   ParticipantID
	ReceiverID ParticipantID
	Day        string
}

// DayFormat is the layout used for the Day component of a RateKey
const DayFormat = "2006-01-02"

// TotalRateKey returns the all-receivers counter key for a sender on a day
func TotalRateKey(sender ParticipantID, day string) RateKey {
	return RateKey{SenderID: sender, Day: day}
}

// PairRateKey returns the per-counterpart counter key for a sender on a day
func PairRateKey(sender, receiver ParticipantID, day string) RateKey {
	return RateKey{SenderID: sender, ReceiverID: receiver, Day: day}
}

// Decision is the outcome of the authorization gate. A denied decision
// always carries a human-readable reason.
type Decision struct {
	Allowed bool
	Reason  string
}

// Admit returns an admitting decision
func Admit() Decision {
	return Decision{Allowed: true}
}

// Deny returns a denying decision with the given reason
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}
