// Package cartstore keeps the customer's pending selections in redis: a
// per-customer hash of item id to quantity, plus the recently-viewed list.
// The hash is the single source of truth for "what is in the cart right
// now"; it is deliberately not transactionally consistent with the
// relational store, so quantities read here are hints the stock ledger
// validates again at checkout.
package cartstore

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"

	"github.com/redis/go-redis/v9"
)

const historyLimit = 5

type Store struct {
	client *redis.Client
	logger *log.Logger
}

func New(client *redis.Client, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Store{client: client, logger: logger}
}

func cartKey(customerID int64) string {
	return fmt.Sprintf("cart_%d", customerID)
}

func historyKey(customerID int64) string {
	return fmt.Sprintf("history_%d", customerID)
}

// Snapshot reads the quantities for the given items. Items missing from the
// cart are omitted from the result; a customer with no cart yields an empty
// map, not an error.
func (s *Store) Snapshot(ctx context.Context, customerID int64, itemIDs []int64) (map[int64]int, error) {
	if len(itemIDs) == 0 {
		return map[int64]int{}, nil
	}

	fields := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		fields[i] = strconv.FormatInt(id, 10)
	}

	values, err := s.client.HMGet(ctx, cartKey(customerID), fields...).Result()
	if err != nil {
		return nil, fmt.Errorf("cart snapshot: %w", err)
	}

	result := make(map[int64]int, len(itemIDs))
	for i, v := range values {
		if v == nil {
			continue
		}
		raw, ok := v.(string)
		if !ok {
			continue
		}
		qty, err := strconv.Atoi(raw)
		if err != nil {
			s.logger.Printf("cart store: bad quantity customer=%d item=%d value=%q", customerID, itemIDs[i], raw)
			continue
		}
		result[itemIDs[i]] = qty
	}
	return result, nil
}

// Evict removes exactly the given entries. Callers must only invoke it after
// the owning order has durably committed.
func (s *Store) Evict(ctx context.Context, customerID int64, itemIDs []int64) error {
	if len(itemIDs) == 0 {
		return nil
	}
	fields := make([]string, len(itemIDs))
	for i, id := range itemIDs {
		fields[i] = strconv.FormatInt(id, 10)
	}
	if err := s.client.HDel(ctx, cartKey(customerID), fields...).Err(); err != nil {
		return fmt.Errorf("cart evict: %w", err)
	}
	return nil
}

// Set stores the quantity for one item, creating or overwriting the field.
func (s *Store) Set(ctx context.Context, customerID, itemID int64, quantity int) error {
	return s.client.HSet(ctx, cartKey(customerID), strconv.FormatInt(itemID, 10), quantity).Err()
}

// Remove deletes one item from the cart.
func (s *Store) Remove(ctx context.Context, customerID, itemID int64) error {
	return s.client.HDel(ctx, cartKey(customerID), strconv.FormatInt(itemID, 10)).Err()
}

// Quantities returns the whole cart.
func (s *Store) Quantities(ctx context.Context, customerID int64) (map[int64]int, error) {
	raw, err := s.client.HGetAll(ctx, cartKey(customerID)).Result()
	if err != nil {
		return nil, fmt.Errorf("cart read: %w", err)
	}
	result := make(map[int64]int, len(raw))
	for field, value := range raw {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(value)
		if err != nil {
			continue
		}
		result[id] = qty
	}
	return result, nil
}

// EntryCount returns the number of distinct items in the cart.
func (s *Store) EntryCount(ctx context.Context, customerID int64) (int64, error) {
	return s.client.HLen(ctx, cartKey(customerID)).Result()
}

// TouchHistory moves an item to the front of the customer's recently-viewed
// list, keeping the newest historyLimit entries.
func (s *Store) TouchHistory(ctx context.Context, customerID, itemID int64) error {
	key := historyKey(customerID)
	member := strconv.FormatInt(itemID, 10)
	pipe := s.client.TxPipeline()
	pipe.LRem(ctx, key, 0, member)
	pipe.LPush(ctx, key, member)
	pipe.LTrim(ctx, key, 0, historyLimit-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("history touch: %w", err)
	}
	return nil
}

// RecentHistory lists the most recently viewed item ids, newest first.
func (s *Store) RecentHistory(ctx context.Context, customerID int64) ([]int64, error) {
	values, err := s.client.LRange(ctx, historyKey(customerID), 0, historyLimit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("history read: %w", err)
	}
	ids := make([]int64, 0, len(values))
	for _, v := range values {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids, nil
}
