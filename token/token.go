// Package token generates namespace tokens.
//
// A token scopes one map instance inside a shared store: every physical key
// is the logical key followed by the token. Two instances holding the same
// token see the same entries.
package token

import (
	"math/rand/v2"
	"strings"
	"sync"

	"github.com/google/uuid"
)

const (
	// Length of tokens produced by Random.
	Length = 10
	// Alphabet is 61 symbols: upper and lower case letters without 'g', and digits.
	Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ" + "abcdefhijklmnopqrstuvwxyz" + "0123456789"
)

// Source produces tokens. Implementations must be safe for concurrent use.
type Source interface {
	Token() string
}

// Default draws from the process-wide random generator.
var Default Source = global{}

// New returns a fresh token from Default.
func New() string { return Default.Token() }

type global struct{}

func (global) Token() string { return draw(rand.IntN) }

// Random is a seeded source; the same seeds give the same token sequence.
type Random struct {
	mu sync.Mutex
	r  *rand.Rand
}

var _ Source = (*Random)(nil)

func NewRandom(seed1, seed2 uint64) *Random {
	return &Random{r: rand.New(rand.NewPCG(seed1, seed2))}
}

func (s *Random) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return draw(s.r.IntN)
}

func draw(intn func(int) int) string {
	var b strings.Builder
	b.Grow(Length)
	for i := 0; i < Length; i++ {
		b.WriteByte(Alphabet[intn(len(Alphabet))])
	}
	return b.String()
}

// UUID produces 32 hex characters from a random (v4) UUID. Longer than the
// default tokens, for stores shared by very many instances.
type UUID struct{}

func (UUID) Token() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// Static hands out the given tokens in order and then starts over.
// It panics when built without tokens.
type Static struct {
	mu     sync.Mutex
	tokens []string
	next   int
}

func NewStatic(tokens ...string) *Static {
	if len(tokens) == 0 {
		panic("token: NewStatic needs at least one token")
	}
	return &Static{tokens: append([]string(nil), tokens...)}
}

func (s *Static) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tokens[s.next]
	s.next = (s.next + 1) % len(s.tokens)
	return t
}
