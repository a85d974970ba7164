package notifications

import "unicode/utf8"

const embedColour = 1776672

const maxFieldValueLen = 1020

// Embed mirrors the Discord embed object accepted by the bot's DM endpoint.
type Embed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	URL         string       `json:"url"`
	Color       int          `json:"color"`
	Author      EmbedAuthor  `json:"author"`
	Fields      []EmbedField `json:"fields,omitempty"`
}

type EmbedAuthor struct {
	Name    string `json:"name"`
	IconURL string `json:"icon_url"`
}

type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// MakeEmbed builds an embed with the bank branding applied.
func MakeEmbed(title, description, url, bankName, iconURL string) Embed {
	return Embed{
		Title:       title,
		Description: description,
		URL:         url,
		Color:       embedColour,
		Author: EmbedAuthor{
			Name:    bankName,
			IconURL: iconURL,
		},
	}
}

// AddField appends a field. Discord rejects empty names and values, and caps
// value length, so both are sanitized here.
func (e *Embed) AddField(name, value string, inline bool) {
	if name == "" {
		name = "*empty*"
	}
	if value == "" {
		value = "*empty*"
	}
	if len(value) > maxFieldValueLen {
		cut := maxFieldValueLen
		for cut > 0 && !utf8.RuneStart(value[cut]) {
			cut--
		}
		value = value[:cut]
	}
	e.Fields = append(e.Fields, EmbedField{Name: name, Value: value, Inline: inline})
}
