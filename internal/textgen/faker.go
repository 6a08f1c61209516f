package textgen

import (
	"context"
	"strings"

	"github.com/pgEdge/pgedge-wmsgen/internal/datagen"
)

// FakerGenerator produces names offline with gofakeit. The prompt only
// selects the kind of value: countries, person names or company names.
type FakerGenerator struct {
	faker *datagen.Faker
}

// NewFakerGenerator creates a new offline generator.
func NewFakerGenerator(seed uint64) *FakerGenerator {
	if seed == 0 {
		return &FakerGenerator{faker: datagen.NewFaker()}
	}
	return &FakerGenerator{faker: datagen.NewFakerWithSeed(seed)}
}

// Generate returns count values matching the kind asked for in prompt.
func (g *FakerGenerator) Generate(_ context.Context, prompt string, count int) ([]string, error) {
	next := g.faker.Company
	p := strings.ToLower(prompt)
	switch {
	case strings.Contains(p, "countr"):
		next = g.faker.Country
	case strings.Contains(p, "person"), strings.Contains(p, "male"), strings.Contains(p, "employee"):
		next = g.faker.Name
	}

	items := make([]string, count)
	for i := range items {
		items[i] = next()
	}
	return items, nil
}

// Model returns the generator's model name.
func (g *FakerGenerator) Model() string {
	return "faker"
}
