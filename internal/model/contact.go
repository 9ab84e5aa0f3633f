package model

import "fmt"

// ContactPair is the unordered pair of participants in an established
// relationship. Low/High ordering makes {A,B} and {B,A} the same record.
type ContactPair struct {
	Low  ParticipantID
	High ParticipantID
}

// NewContactPair builds a normalized pair from two participant ids
func NewContactPair(a, b ParticipantID) ContactPair {
	if a > b {
		a, b = b, a
	}
	return ContactPair{Low: a, High: b}
}

// Key returns the canonical string form of the pair
func (p ContactPair) Key() string {
	return fmt.Sprintf("%d:%d", p.Low, p.High)
}
