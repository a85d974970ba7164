package notifications

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestMakeEmbed_AppliesBranding(t *testing.T) {
	embed := MakeEmbed("Title", "Description", "https://bank.test/x", "Bank of Democraciv", "https://bank.test/icon.png")

	assert.Equal(t, "Title", embed.Title)
	assert.Equal(t, 1776672, embed.Color)
	assert.Equal(t, "Bank of Democraciv", embed.Author.Name)
	assert.Equal(t, "https://bank.test/icon.png", embed.Author.IconURL)
	assert.Empty(t, embed.Fields)
}

func TestAddField_SanitizesEmptyValues(t *testing.T) {
	var embed Embed
	embed.AddField("", "", false)

	assert.Equal(t, "*empty*", embed.Fields[0].Name)
	assert.Equal(t, "*empty*", embed.Fields[0].Value)
}

func TestAddField_TruncatesLongValues(t *testing.T) {
	var embed Embed
	embed.AddField("Purpose", strings.Repeat("a", 2000), true)

	assert.Len(t, embed.Fields[0].Value, 1020)
	assert.True(t, embed.Fields[0].Inline)
}

func TestAddField_TruncatesOnRuneBoundary(t *testing.T) {
	var embed Embed
	// One ASCII byte shifts every following two-byte rune onto an odd
	// offset, so a byte-indexed cut at 1020 would land mid-rune.
	embed.AddField("Purpose", "a"+strings.Repeat("é", 600), false)

	value := embed.Fields[0].Value
	assert.True(t, utf8.ValidString(value))
	assert.Len(t, value, 1019)
}
