package idhash

import (
	"crypto/sha256"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/leovitorcoelho1995-ship-it/oribosreevo/internal/domain"
)

// ComputeTrendID computes a deterministic trend id using SHA256.
// Formula: SHA256(platform|external_id)
// Returns the base58-encoded hash, so ids stay URL-safe and short.
func ComputeTrendID(platform domain.Platform, externalID string) string {
	data := fmt.Sprintf("%s|%s", string(platform), externalID)

	hash := sha256.Sum256([]byte(data))
	return base58.Encode(hash[:])
}
