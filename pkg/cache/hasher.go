package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"transit/pkg/domain"
)

// DatasetHash returns a short, deterministic fingerprint of a dataset's
// stops/routes/flights, reusing domain.ContentHash's canonical
// serialization, truncated to 32 hex characters. The sync worker (C11)
// does not use it; it compares the full domain.ContentHash.
func DatasetHash(stops []domain.Stop, routes []domain.Route, flights []domain.Flight) string {
	full := domain.ContentHash(stops, routes, flights)
	if len(full) > 32 {
		return full[:32]
	}
	return full
}

// BuildDatasetKey builds the cache key a Dataset is stored under, keyed
// by its content hash so a stale value is never served under a key that
// matches the current data.
func BuildDatasetKey(prefix, datasetHash string) string {
	return fmt.Sprintf("%s:dataset:%s", prefix, datasetHash)
}

// BuildGraphKey builds the cache key a built graph snapshot is stored
// under, optionally scoped by a quality mode so REAL and RECOVERY
// builds of the same content hash never collide.
func BuildGraphKey(prefix, datasetHash, mode string) string {
	if mode == "" {
		return fmt.Sprintf("%s:graph:%s", prefix, datasetHash)
	}
	return fmt.Sprintf("%s:graph:%s:%s", prefix, datasetHash, mode)
}

// BuildSearchKey builds the cache key a path-search result is stored
// under, scoped to the dataset content hash so answers never outlive
// the graph they were computed against.
func BuildSearchKey(datasetHash, fromStopID, toStopID string, kAlternatives int) string {
	return fmt.Sprintf("search:%s:%s:%s:%d", datasetHash, fromStopID, toStopID, kAlternatives)
}

// QuickHash is a generic sha256 hash of arbitrary data, full length.
func QuickHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// ShortHash is a generic sha256 hash truncated to 16 hex characters,
// for use in log lines and cache keys where a full digest is overkill.
func ShortHash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:8])
}
