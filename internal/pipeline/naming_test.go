package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractSummaryName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "title line", input: "title: Foo Bar\nbody", want: "foo_bar"},
		{name: "front matter", input: "---\ntitle:   Reset Password  \ndate: 2025-01-01\n---\n", want: "reset_password"},
		{name: "title must start the line", input: "subtitle: Foo\n", want: "ticket"},
		{name: "no title", input: "# Heading\nSome text", want: "ticket"},
		{name: "empty", input: "", want: "ticket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractSummaryName(tt.input))
		})
	}
}

func TestStoryShortName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "user story",
			input: "As a user, I want to reset my password, so that I can log in again",
			want:  "reset_my_password",
		},
		{
			name:  "case insensitive and sanitised",
			input: "as a admin, i want to Export CSV-Reports!, so that finance is happy",
			want:  "export_csvreports",
		},
		{
			name:  "article must be followed by a space",
			input: "as an admin, i want to Export CSV-Reports!, so that finance is happy",
			want:  "ticket",
		},
		{
			name:  "truncated to thirty characters",
			input: "As a user, I want to see a very long list of every single thing ever made, so that I know",
			want:  "see_a_very_long_list_of_every_",
		},
		{name: "no story", input: "Fix the login bug", want: "ticket"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StoryShortName(tt.input))
		})
	}
}
