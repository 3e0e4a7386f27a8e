package generator

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"msg-generator/internal/domain/models"
)

const (
	hexDigits = "0123456789abcdefABCDEF"

	// ISO-8601 local time with microseconds and no zone designator.
	createdLayout = "2006-01-02T15:04:05.000000"
)

// SampleSize draws a payload length from a normal distribution centred on
// target with a standard deviation of target/20. The result is truncated
// toward zero and may be zero or negative.
func SampleSize(rng *rand.Rand, target float64) int {
	return int(rng.NormFloat64()*(target/20) + target)
}

// NewMessageRecord builds a record with a fresh id and a random hex body of
// size characters. A size <= 0 gives an empty body.
func NewMessageRecord(rng *rand.Rand, now time.Time, aid, aname string, size int) (models.MessageRecord, error) {
	id, err := uuid.NewRandomFromReader(rng)
	if err != nil {
		return models.MessageRecord{}, fmt.Errorf("generate message id: %w", err)
	}

	return models.MessageRecord{
		ID:      hex.EncodeToString(id[:]),
		AppID:   aid,
		AppName: aname,
		Body:    randomHex(rng, size),
		Created: now.Format(createdLayout),
		Flag:    0,
		Counter: 0,
	}, nil
}

// BuildPayload creates a record and serializes it. cid and topic are accepted
// so callers can identify the pipeline; they are not part of the payload.
func BuildPayload(rng *rand.Rand, now time.Time, cid, aid, aname, topic string, size int) (string, error) {
	record, err := NewMessageRecord(rng, now, aid, aname, size)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return "", fmt.Errorf("marshal message %s: %w", record.ID, err)
	}
	return string(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

func randomHex(rng *rand.Rand, n int) string {
	if n <= 0 {
		return ""
	}

	b := make([]byte, n)
	for i := range b {
		b[i] = hexDigits[rng.Intn(len(hexDigits))]
	}
	return string(b)
}
