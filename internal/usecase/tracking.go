package usecase

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"time"
)

// TrackingGenerator produces human-readable order identifiers of the form
// <PREFIX><6-digit-time-suffix>-<6-digit-random>. Uniqueness is backed by the
// datastore constraint; creation retries generation on collision.
type TrackingGenerator struct {
	prefix string
	now    func() time.Time
	random func(max int64) int64
}

// NewTrackingGenerator constructs a generator with the given prefix.
func NewTrackingGenerator(prefix string) *TrackingGenerator {
	return &TrackingGenerator{prefix: prefix, now: time.Now, random: cryptoRandInt}
}

// Generate returns a fresh tracking number.
func (g *TrackingGenerator) Generate() string {
	suffix := g.now().Unix() % 1_000_000
	return fmt.Sprintf("%s%06d-%06d", g.prefix, suffix, g.random(1_000_000))
}

func cryptoRandInt(max int64) int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to clock bits.
		return time.Now().UnixNano() % max
	}
	n := int64(binary.BigEndian.Uint64(buf[:]) >> 1)
	return n % max
}
