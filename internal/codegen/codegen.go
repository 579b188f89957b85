package codegen

import (
	"math/rand/v2"
	"strings"
)

// Alphabet excludes look-alike characters (0/O, 1/I/l).
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz23456789"

// DefaultLength is the length of generated short codes
const DefaultLength = 7

// Generator produces candidate short codes
type Generator interface {
	Generate() string
}

// GeneratorFunc adapts a plain function to a Generator
type GeneratorFunc func() string

func (f GeneratorFunc) Generate() string {
	return f()
}

type randomGenerator struct {
	length int
}

// NewGenerator returns a Generator producing random codes of the given length.
// A non-positive length falls back to DefaultLength.
func NewGenerator(length int) Generator {
	if length <= 0 {
		length = DefaultLength
	}
	return &randomGenerator{length: length}
}

func (g *randomGenerator) Generate() string {
	return Generate(g.length)
}

// Generate returns length characters drawn uniformly from Alphabet, or ""
// when length is not positive
func Generate(length int) string {
	if length <= 0 {
		return ""
	}

	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		b.WriteByte(Alphabet[rand.IntN(len(Alphabet))])
	}
	return b.String()
}
