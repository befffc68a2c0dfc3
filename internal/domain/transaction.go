package domain

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// TransactionIDPrefix marks generated transaction ids.
const TransactionIDPrefix = "TXN"

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// NewTransactionID returns "TXN" followed by a ULID: a millisecond timestamp
// prefix and a random suffix. Uniqueness is enforced by the store, not here.
func NewTransactionID(now time.Time) string {
	entropyMu.Lock()
	id, err := ulid.New(ulid.Timestamp(now), entropy)
	entropyMu.Unlock()
	if err != nil {
		// monotonic entropy exhausted within one millisecond
		id = ulid.MustNew(ulid.Timestamp(now), rand.Reader)
	}
	return TransactionIDPrefix + id.String()
}
