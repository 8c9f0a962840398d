package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"dsa-interview-service/internal/domain"
)

// BankLoader fetches question bank content from a backing store.
type BankLoader interface {
	LoadBank(ctx context.Context, bankID string) (domain.QuestionBank, error)
}

// BankRepository caches full question banks as JSON in Redis
// (SET bank:{bankID}:questions) and falls back to a loader on cache miss.
type BankRepository struct {
	client *redis.Client
	loader BankLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewBankRepository(client *redis.Client, loader BankLoader, ttl time.Duration) *BankRepository {
	return &BankRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *BankRepository) GetBank(ctx context.Context, bankID string) (domain.QuestionBank, error) {
	key := r.bankKey(bankID)

	if raw, err := r.client.Get(ctx, key).Result(); err == nil && raw != "" {
		var bank domain.QuestionBank
		if jerr := json.Unmarshal([]byte(raw), &bank); jerr == nil {
			return bank, nil
		}
		// corrupt cache entry; fall through to reload
	}

	result, err, _ := r.sf.Do(bankID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if raw, err := r.client.Get(ctx, key).Result(); err == nil && raw != "" {
			var bank domain.QuestionBank
			if jerr := json.Unmarshal([]byte(raw), &bank); jerr == nil {
				return bank, nil
			}
		}

		bank, err := r.loader.LoadBank(ctx, bankID)
		if err != nil {
			return domain.QuestionBank{}, err
		}

		data, err := json.Marshal(bank)
		if err != nil {
			return domain.QuestionBank{}, fmt.Errorf("marshal bank: %w", err)
		}
		_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()

		return bank, nil
	})
	if err != nil {
		return domain.QuestionBank{}, err
	}
	return result.(domain.QuestionBank), nil
}

func (r *BankRepository) bankKey(bankID string) string {
	return "bank:" + bankID + ":questions"
}

func (r *BankRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
