package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrIdempotencyConflict means a key was reused with a different request
// body. Replays must carry the exact payload the key was first seen with.
var ErrIdempotencyConflict = errors.New("idempotency key conflicts with existing request")

// RequestHash fingerprints a request body so key reuse with a changed
// payload can be detected.
func RequestHash(payload []byte) string {
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// IdempotencyStore records the response of a completed request under an
// operator-scoped key so retries replay it instead of re-executing.
type IdempotencyStore interface {
	Check(ctx context.Context, operator, endpoint, key, requestHash string) (json.RawMessage, bool, error)
	Save(ctx context.Context, operator, endpoint, key, requestHash string, response json.RawMessage) error
}

type idempotencyEntry struct {
	requestHash string
	response    json.RawMessage
}

// MemoryIdempotency is the in-process store used when no database is
// configured.
type MemoryIdempotency struct {
	mu      sync.Mutex
	entries map[string]idempotencyEntry
}

func NewMemoryIdempotency() *MemoryIdempotency {
	return &MemoryIdempotency{entries: make(map[string]idempotencyEntry)}
}

func idempotencyKeyOf(operator, endpoint, key string) string {
	return operator + "|" + endpoint + "|" + key
}

func (m *MemoryIdempotency) Check(_ context.Context, operator, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[idempotencyKeyOf(operator, endpoint, key)]
	if !ok {
		return nil, false, nil
	}
	if entry.requestHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return entry.response, true, nil
}

func (m *MemoryIdempotency) Save(_ context.Context, operator, endpoint, key, requestHash string, response json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	mapKey := idempotencyKeyOf(operator, endpoint, key)
	if entry, ok := m.entries[mapKey]; ok && entry.requestHash != requestHash {
		return ErrIdempotencyConflict
	}
	m.entries[mapKey] = idempotencyEntry{requestHash: requestHash, response: response}
	return nil
}

// PgIdempotency persists keys in Postgres so retries survive restarts.
type PgIdempotency struct {
	DB *pgxpool.Pool
}

func NewPgIdempotency(db *pgxpool.Pool) *PgIdempotency {
	return &PgIdempotency{DB: db}
}

func (s *PgIdempotency) Check(ctx context.Context, operator, endpoint, key, requestHash string) (json.RawMessage, bool, error) {
	var storedHash string
	var stored json.RawMessage
	err := s.DB.QueryRow(ctx, `
    SELECT request_hash, response_json
    FROM idempotency_keys
    WHERE operator = $1 AND endpoint = $2 AND key = $3
  `, operator, endpoint, key).Scan(&storedHash, &stored)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if storedHash != requestHash {
		return nil, false, ErrIdempotencyConflict
	}
	return stored, true, nil
}

func (s *PgIdempotency) Save(ctx context.Context, operator, endpoint, key, requestHash string, response json.RawMessage) error {
	tag, err := s.DB.Exec(ctx, `
    INSERT INTO idempotency_keys (operator, endpoint, key, request_hash, response_json)
    VALUES ($1, $2, $3, $4, $5)
    ON CONFLICT (operator, endpoint, key)
    DO UPDATE SET response_json = EXCLUDED.response_json
    WHERE idempotency_keys.request_hash = EXCLUDED.request_hash
  `, operator, endpoint, key, requestHash, response)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrIdempotencyConflict
	}
	return nil
}
