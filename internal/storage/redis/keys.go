package redis

import (
	"fmt"

	"github.com/touchline/touchline-chat/internal/model"
)

// Key prefix for all chat-related data
const keyPrefix = "tlchat"

// participantKey returns the Redis key for a Participant
func participantKey(id model.ParticipantID) string {
	return fmt.Sprintf("%s:participant:%d", keyPrefix, id)
}

// usernameIndexKey returns the Redis key for the username -> participant id index
func usernameIndexKey(username string) string {
	return fmt.Sprintf("%s:idx:username:%s", keyPrefix, username)
}

// participantIndexKey returns the Redis key for the SET of all participant ids
func participantIndexKey() string {
	return fmt.Sprintf("%s:idx:participants", keyPrefix)
}

// contactsKey returns the Redis key for the SET of established contact pairs
func contactsKey() string {
	return fmt.Sprintf("%s:contacts", keyPrefix)
}

// rateKey returns the Redis key for a daily send counter.
// The calendar day is part of the key so counters expire per day.
func rateKey(key model.RateKey) string {
	if key.ReceiverID == 0 {
		return fmt.Sprintf("%s:rate:%s:%d", keyPrefix, key.Day, key.SenderID)
	}
	return fmt.Sprintf("%s:rate:%s:%d:%d", keyPrefix, key.Day, key.SenderID, key.ReceiverID)
}

// conversationKey returns the Redis key for the LIST of messages between a pair
func conversationKey(pair model.ContactPair) string {
	return fmt.Sprintf("%s:conversation:%s", keyPrefix, pair.Key())
}
