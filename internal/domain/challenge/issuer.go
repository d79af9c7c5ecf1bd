package challenge

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"sync"
)

// Challenge is one arithmetic puzzle. Answer never leaves the server.
type Challenge struct {
	Expression string
	Answer     int
	Image      []byte
}

// Renderer turns an expression into image bytes. It draws its noise from rng
// so the output is reproducible for a given seed.
type Renderer interface {
	Render(expression string, rng *rand.Rand) ([]byte, error)
}

type Issuer struct {
	mu       sync.Mutex
	rng      *rand.Rand
	renderer Renderer
}

// NewIssuer returns an issuer seeded from crypto/rand.
func NewIssuer(renderer Renderer) *Issuer {
	var seed [16]byte
	if _, err := crand.Read(seed[:]); err != nil {
		panic(fmt.Sprintf("challenge: seed: %v", err))
	}
	return NewSeededIssuer(binary.LittleEndian.Uint64(seed[:8]), binary.LittleEndian.Uint64(seed[8:]), renderer)
}

func NewSeededIssuer(seed1, seed2 uint64, renderer Renderer) *Issuer {
	return &Issuer{
		rng:      rand.New(rand.NewPCG(seed1, seed2)),
		renderer: renderer,
	}
}

func (i *Issuer) between(lo, hi int) int {
	return lo + i.rng.IntN(hi-lo+1)
}

// Issue generates a fresh puzzle:
//
//	+  both operands in [1,20]
//	-  minuend in [10,30], subtrahend in [1,9]
//	*  both operands in [1,10]
func (i *Issuer) Issue() (Challenge, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var a, b, answer int
	var op string
	switch i.rng.IntN(3) {
	case 0:
		a, b = i.between(1, 20), i.between(1, 20)
		op, answer = "+", a+b
	case 1:
		a, b = i.between(10, 30), i.between(1, 9)
		op, answer = "-", a-b
	default:
		a, b = i.between(1, 10), i.between(1, 10)
		op, answer = "*", a*b
	}

	c := Challenge{
		Expression: fmt.Sprintf("%d %s %d = ?", a, op, b),
		Answer:     answer,
	}

	if i.renderer != nil {
		img, err := i.renderer.Render(c.Expression, i.rng)
		if err != nil {
			return Challenge{}, fmt.Errorf("failed to render challenge: %w", err)
		}
		c.Image = img
	}
	return c, nil
}

// CheckAnswer compares a submitted answer with the expected value after
// trimming whitespace. Anything that is not a base-10 integer is wrong.
func CheckAnswer(submitted string, want int) bool {
	got, err := strconv.Atoi(strings.TrimSpace(submitted))
	if err != nil {
		return false
	}
	return got == want
}
