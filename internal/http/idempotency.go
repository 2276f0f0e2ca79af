package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/davidsheshee-hash/shop-ledger/internal/cache"
	"github.com/davidsheshee-hash/shop-ledger/internal/core"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
)

const (
	IdempotencyKeyHeader = "Idempotency-Key"
	ReplayedHeader       = "Idempotent-Replayed"

	maxIdempotencyKeyLen  = 128
	idempotencyCacheSize  = 1024
	idempotencyTTL        = 24 * time.Hour
	idempotencyCleanEvery = 10 * time.Minute
)

var errInvalidIdempotencyKey = errors.New("idempotency key must be 1-128 printable ASCII characters")

// idempotency remembers transactions created under a client-supplied key
// so a retried POST returns the original record instead of a duplicate.
// Failed attempts are not remembered.
type idempotency struct {
	results *cache.LRUCache[core.Transaction]
	group   singleflight.Group
	manager *cache.Manager
}

type idempotentResult struct {
	tx       core.Transaction
	replayed bool
}

func newIdempotency(logger *log.Logger) *idempotency {
	i := &idempotency{
		results: cache.NewLRUCache[core.Transaction](idempotencyCacheSize, idempotencyTTL),
		manager: cache.NewManager(logger),
	}
	i.manager.Register(i.results)
	i.manager.StartCleanup(idempotencyCleanEvery)
	return i
}

// idempotencyKey returns the trimmed header value, or "" when absent.
func idempotencyKey(r *http.Request) (string, error) {
	key := strings.TrimSpace(r.Header.Get(IdempotencyKeyHeader))
	if key == "" {
		return "", nil
	}
	if len(key) > maxIdempotencyKeyLen {
		return "", errInvalidIdempotencyKey
	}
	for i := 0; i < len(key); i++ {
		if key[i] < 0x21 || key[i] > 0x7e {
			return "", errInvalidIdempotencyKey
		}
	}
	return key, nil
}

// do runs create at most once per scope and key. Concurrent duplicates
// wait for the first call and share its result.
func (i *idempotency) do(scope, key string, create func() (core.Transaction, error)) (core.Transaction, bool, error) {
	k := scope + "|" + key
	if tx, ok := i.results.Get(k); ok {
		return tx, true, nil
	}
	v, err, _ := i.group.Do(k, func() (any, error) {
		if tx, ok := i.results.Get(k); ok {
			return idempotentResult{tx: tx, replayed: true}, nil
		}
		tx, err := create()
		if err != nil {
			return nil, err
		}
		i.results.Set(k, tx)
		return idempotentResult{tx: tx}, nil
	})
	if err != nil {
		return core.Transaction{}, false, err
	}
	res := v.(idempotentResult)
	return res.tx, res.replayed, nil
}

func (i *idempotency) stop() {
	i.manager.Stop()
}
