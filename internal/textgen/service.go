package textgen

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/pgEdge/pgedge-wmsgen/internal/logging"
)

type cacheKey struct {
	prompt string
	model  string
	count  int
}

// Service memoizes a Generator in a bounded LRU cache and pads short or
// failed replies with Fallback_<index> placeholders.
type Service struct {
	gen   Generator
	cache *lru.Cache[cacheKey, []string]
}

// NewService wraps gen with a cache holding at most cacheSize replies.
func NewService(gen Generator, cacheSize int) (*Service, error) {
	cache, err := lru.New[cacheKey, []string](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create name cache: %w", err)
	}
	return &Service{gen: gen, cache: cache}, nil
}

// GenerateNames returns exactly count names for prompt. Failures are logged
// and replaced by placeholders; they are not cached.
func (s *Service) GenerateNames(ctx context.Context, prompt string, count int) []string {
	if count <= 0 {
		return []string{}
	}

	key := cacheKey{prompt: prompt, model: s.gen.Model(), count: count}
	if items, ok := s.cache.Get(key); ok {
		logging.Debug().Str("prompt", prompt).Int("count", count).Msg("Name cache hit")
		return slices.Clone(items)
	}

	start := time.Now()
	items, err := s.gen.Generate(ctx, prompt, count)
	if err != nil {
		gerr := &GenerationServiceError{Prompt: prompt, Err: err}
		logging.Error().
			Err(gerr).
			Str("model", s.gen.Model()).
			Int("count", count).
			Msg("Name generation failed, using placeholders")
		return Fallback(nil, count)
	}

	usable := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			usable = append(usable, item)
		}
	}
	if len(usable) < count {
		logging.Warn().
			Str("prompt", prompt).
			Int("requested", count).
			Int("received", len(usable)).
			Msg("Name generation returned too few items, padding with placeholders")
	}
	logging.Info().
		Str("prompt", prompt).
		Int("count", count).
		Dur("elapsed", time.Since(start)).
		Msg("Names generated")

	usable = Fallback(usable, count)
	s.cache.Add(key, usable)
	return slices.Clone(usable)
}

// Fallback returns items trimmed or padded to count. Missing positions are
// filled with Fallback_<index>, index being the 0-based position.
func Fallback(items []string, count int) []string {
	out := make([]string, count)
	n := copy(out, items)
	for i := n; i < count; i++ {
		out[i] = fmt.Sprintf("Fallback_%d", i)
	}
	return out
}
