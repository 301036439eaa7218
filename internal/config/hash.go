package config

import (
	"encoding/json"
	"hash/fnv"

	"github.com/gowebpki/jcs"
)

// Hash returns a stable fingerprint of cfg. The JSON form is canonicalized
// (RFC 8785) first so key order and number formatting do not matter.
// Zero means cfg could not be hashed.
func Hash(cfg *Config) uint64 {
	if cfg == nil {
		return 0
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return 0
	}
	return canonicalHashJSON(b)
}

func canonicalHashJSON(raw []byte) uint64 {
	if len(raw) == 0 {
		return 0
	}
	if c, err := jcs.Transform(raw); err == nil {
		raw = c
	}
	return hashBytes(raw)
}

func hashBytes(b []byte) uint64 {
	h := fnv.New64a()
	_, _ = h.Write(b)
	return h.Sum64()
}
