// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package copygen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adxyz/adinci/pkg/log"
)

func TestNewWithoutKeyFallsBackToTemplate(t *testing.T) {
	require := require.New(t)

	g := New("", log.NoOp())
	_, ok := g.(Template)
	require.True(ok)
}

func TestNewWithKeyUsesSDK(t *testing.T) {
	require := require.New(t)

	g := New("sk-test", log.NoOp())
	_, ok := g.(Template)
	require.False(ok)
}

func TestTemplateGenerateAdCopy(t *testing.T) {
	require := require.New(t)

	copy, err := Template{}.GenerateAdCopy(context.Background(), "Coffee", 50)
	require.NoError(err)
	require.Equal("Special Offer: Coffee", copy.Title)
	require.Equal("Check out our amazing Coffee and earn 50 points!", copy.Description)

	// Deterministic for the same inputs
	again, err := Template{}.GenerateAdCopy(context.Background(), "Coffee", 50)
	require.NoError(err)
	require.Equal(copy, again)
}

func TestParseAdCopy(t *testing.T) {
	require := require.New(t)

	copy, err := parseAdCopy(`{"title": "Coffee Time", "description": "Best brew in town."}`)
	require.NoError(err)
	require.Equal("Coffee Time", copy.Title)

	// Surrounding prose and code fences are tolerated
	copy, err = parseAdCopy("Here you go:\n```json\n{\"title\": \"Coffee Time\", \"description\": \"Best brew.\"}\n```")
	require.NoError(err)
	require.Equal("Coffee Time", copy.Title)
	require.Equal("Best brew.", copy.Description)
}

func TestParseAdCopyRejectsBadOutput(t *testing.T) {
	require := require.New(t)

	_, err := parseAdCopy("sorry, I cannot help with that")
	require.Error(err)

	_, err = parseAdCopy(`{"title": "only a title"}`)
	require.Error(err)

	_, err = parseAdCopy(`{"title":}`)
	require.Error(err)
}

func TestFallbackCopy(t *testing.T) {
	require := require.New(t)

	copy := fallbackCopy("Coffee")
	require.Equal("Coffee Promo", copy.Title)
	require.NotEmpty(copy.Description)
}
