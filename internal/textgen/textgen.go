//-------------------------------------------------------------------------
//
// pgEdge Warehouse Data Generator
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

// Package textgen provides human-like strings (company, customer and person
// names, countries) for the dataset generators.
package textgen

import (
	"context"
	"fmt"
	"time"
)

// Generator is the external text generation collaborator. It returns up to
// count items for a prompt, in order.
type Generator interface {
	// Generate requests count items for prompt.
	Generate(ctx context.Context, prompt string, count int) ([]string, error)

	// Model names the model behind the generator; part of the cache key.
	Model() string
}

// NameService is what the dataset generators depend on. It always returns
// exactly count strings and never fails.
type NameService interface {
	GenerateNames(ctx context.Context, prompt string, count int) []string
}

// Config holds configuration for name generation.
type Config struct {
	// Mode is the generation mode: faker or openai.
	Mode string

	// BaseURL is the OpenAI-compatible API base URL.
	BaseURL string

	// APIKey is the API key for the OpenAI-compatible API.
	APIKey string

	// Model is the chat model name.
	Model string

	// Timeout bounds a single request.
	Timeout time.Duration

	// Seed seeds the offline generator. Zero picks a random seed.
	Seed uint64
}

// NewGenerator creates a Generator based on the configuration.
func NewGenerator(cfg Config) Generator {
	switch cfg.Mode {
	case "openai":
		return NewOpenAIGenerator(cfg)
	default:
		return NewFakerGenerator(cfg.Seed)
	}
}

// GenerationServiceError wraps a failed generation request. It is logged
// by the Service and never returned to callers.
type GenerationServiceError struct {
	Prompt string
	Err    error
}

func (e *GenerationServiceError) Error() string {
	return fmt.Sprintf("text generation for %q failed: %v", e.Prompt, e.Err)
}

func (e *GenerationServiceError) Unwrap() error {
	return e.Err
}
