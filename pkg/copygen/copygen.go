// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package copygen produces ad creative copy for advertisers. It talks to the
// Anthropic API when a key is configured and otherwise falls back to a
// deterministic template, so the marketplace keeps working without network
// or credentials.
package copygen

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"github.com/adxyz/adinci/pkg/log"
)

const copyModel = "claude-haiku-4-5"

// AdCopy is a generated title/description pair
type AdCopy struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Generator produces ad copy for a product and its reward points
type Generator interface {
	GenerateAdCopy(ctx context.Context, productName string, points int64) (AdCopy, error)
}

// New returns an SDK-backed generator when an API key is present and the
// template generator otherwise.
func New(apiKey string, logger log.Logger) Generator {
	if apiKey == "" {
		logger.Warn("no API key configured, using templated ad copy")
		return Template{}
	}
	return &sdkGenerator{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		log:    logger,
	}
}

// Template generates deterministic ad copy with no external calls
type Template struct{}

// GenerateAdCopy never fails
func (Template) GenerateAdCopy(_ context.Context, productName string, points int64) (AdCopy, error) {
	return AdCopy{
		Title:       fmt.Sprintf("Special Offer: %s", productName),
		Description: fmt.Sprintf("Check out our amazing %s and earn %d points!", productName, points),
	}, nil
}

// sdkGenerator asks the model for a short title and description as JSON
type sdkGenerator struct {
	client sdk.Client
	log    log.Logger
}

func (g *sdkGenerator) GenerateAdCopy(ctx context.Context, productName string, points int64) (AdCopy, error) {
	prompt := fmt.Sprintf(
		`Write a catchy, short ad title (max 5 words) and a description (max 20 words) for a product called %q. The user gets %d reward points. Respond with JSON only: {"title": "...", "description": "..."}`,
		productName, points)

	msg, err := g.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(copyModel),
		MaxTokens: 256,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		g.log.Warn("ad copy generation failed, using fallback", zap.Error(err))
		return fallbackCopy(productName), nil
	}

	var text strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}

	copy, err := parseAdCopy(text.String())
	if err != nil {
		g.log.Warn("ad copy response unparseable, using fallback", zap.Error(err))
		return fallbackCopy(productName), nil
	}
	return copy, nil
}

// parseAdCopy extracts the JSON object from the model output, tolerating
// surrounding prose or code fences.
func parseAdCopy(text string) (AdCopy, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return AdCopy{}, fmt.Errorf("no JSON object in response")
	}

	var out AdCopy
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return AdCopy{}, err
	}
	if out.Title == "" || out.Description == "" {
		return AdCopy{}, fmt.Errorf("incomplete ad copy")
	}
	return out, nil
}

func fallbackCopy(productName string) AdCopy {
	return AdCopy{
		Title:       fmt.Sprintf("%s Promo", productName),
		Description: fmt.Sprintf("Experience the best %s in Dubai! Visit us now to claim your rewards.", productName),
	}
}
