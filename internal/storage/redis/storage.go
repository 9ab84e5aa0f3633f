package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/touchline/touchline-chat/internal/model"
	"github.com/touchline/touchline-chat/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Participant operations

func (s *Storage) SaveParticipant(ctx context.Context, p *model.Participant) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}

	// Use pipeline for atomic save + index updates
	pipe := s.client.Pipeline()
	pipe.Set(ctx, participantKey(p.ID), data, 0)
	pipe.Set(ctx, usernameIndexKey(p.Username), strconv.FormatInt(int64(p.ID), 10), 0)
	pipe.SAdd(ctx, participantIndexKey(), strconv.FormatInt(int64(p.ID), 10))
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Storage) GetParticipant(ctx context.Context, id model.ParticipantID) (*model.Participant, error) {
	data, err := s.client.Get(ctx, participantKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}

	var p model.Participant
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Storage) GetParticipantByUsername(ctx context.Context, username string) (*model.Participant, error) {
	idStr, err := s.client.Get(ctx, usernameIndexKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, model.ErrParticipantNotFound
		}
		return nil, err
	}

	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		return nil, err
	}
	return s.GetParticipant(ctx, model.ParticipantID(id))
}

func (s *Storage) ListParticipants(ctx context.Context) ([]*model.Participant, error) {
	ids, err := s.client.SMembers(ctx, participantIndexKey()).Result()
	if err != nil {
		return nil, err
	}

	if len(ids) == 0 {
		return []*model.Participant{}, nil
	}

	keys := make([]string, len(ids))
	for i, idStr := range ids {
		id, err := strconv.ParseInt(idStr, 10, 64)
		if err != nil {
			continue
		}
		keys[i] = participantKey(model.ParticipantID(id))
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	participants := make([]*model.Participant, 0, len(values))
	for _, val := range values {
		if val == nil {
			continue
		}
		var p model.Participant
		if err := json.Unmarshal([]byte(val.(string)), &p); err != nil {
			continue // Skip invalid data
		}
		participants = append(participants, &p)
	}

	sort.Slice(participants, func(i, j int) bool { return participants[i].ID < participants[j].ID })
	return participants, nil
}

// Contact ledger operations

func (s *Storage) ContactExists(ctx context.Context, pair model.ContactPair) (bool, error) {
	return s.client.SIsMember(ctx, contactsKey(), pair.Key()).Result()
}

func (s *Storage) CreateContact(ctx context.Context, pair model.ContactPair) error {
	// SADD is a no-op when the member already exists, which makes contact
	// creation idempotent for free
	return s.client.SAdd(ctx, contactsKey(), pair.Key()).Err()
}

// Rate counter operations

func (s *Storage) DailyCount(ctx context.Context, key model.RateKey) (int, error) {
	count, err := s.client.Get(ctx, rateKey(key)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, nil
		}
		return 0, err
	}
	return count, nil
}

func (s *Storage) IncrementDailyCount(ctx context.Context, key model.RateKey) (int, error) {
	k := rateKey(key)

	pipe := s.client.Pipeline()
	incr := pipe.Incr(ctx, k)
	pipe.Expire(ctx, k, s.cfg.RateCounterTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

// Message store operations

func (s *Storage) AppendMessage(ctx context.Context, msg *model.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	pair := model.NewContactPair(msg.SenderID, msg.ReceiverID)
	return s.client.RPush(ctx, conversationKey(pair), data).Err()
}

func (s *Storage) ConversationMessages(ctx context.Context, a, b model.ParticipantID) ([]*model.Message, error) {
	pair := model.NewContactPair(a, b)

	values, err := s.client.LRange(ctx, conversationKey(pair), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	messages := make([]*model.Message, 0, len(values))
	for _, val := range values {
		var msg model.Message
		if err := json.Unmarshal([]byte(val), &msg); err != nil {
			continue // Skip invalid data
		}
		messages = append(messages, &msg)
	}
	return messages, nil
}
