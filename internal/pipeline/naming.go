package pipeline

import (
	"regexp"
	"strings"
)

// FallbackName is used when no name can be derived from a ticket
const FallbackName = "ticket"

const maxShortNameLen = 30

var (
	titleLineRegex = regexp.MustCompile(`(?m)^title:\s*(.+)`)
	userStoryRegex = regexp.MustCompile(`(?i)As a .*?, I want to (.*?), so that`)
	unsafeNameRune = regexp.MustCompile(`[^a-z0-9_]`)
)

// ExtractSummaryName derives a file stub from a "title:" line, e.g. "title: Foo Bar" -> "foo_bar"
func ExtractSummaryName(markdown string) string {
	m := titleLineRegex.FindStringSubmatch(markdown)
	if m == nil {
		return FallbackName
	}
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(m[1]), " ", "_"))
}

// StoryShortName derives a file stub from "As a ..., I want to ..., so that" phrasing
func StoryShortName(description string) string {
	m := userStoryRegex.FindStringSubmatch(description)
	if m == nil {
		return FallbackName
	}
	name := strings.ToLower(strings.ReplaceAll(m[1], " ", "_"))
	name = unsafeNameRune.ReplaceAllString(name, "")
	if len(name) > maxShortNameLen {
		name = name[:maxShortNameLen]
	}
	return name
}
