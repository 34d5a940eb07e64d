// Package store reads ticket files and writes pipeline results to disk.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tuannvm/ticketsmith/internal/agents"
	"github.com/tuannvm/ticketsmith/internal/common"
	log "github.com/tuannvm/ticketsmith/internal/logging"
	"github.com/tuannvm/ticketsmith/internal/models"
	"github.com/tuannvm/ticketsmith/internal/pipeline"
)

// ErrNotFound is returned when an input ticket file does not exist
var ErrNotFound = errors.New("file not found")

const dateStamp = "20060102"

// FrontMatter is the YAML header written above an enhanced ticket
type FrontMatter struct {
	Title   string   `yaml:"title"`
	Date    Date     `yaml:"date"`
	Summary string   `yaml:"summary"`
	Tags    []string `yaml:"tags,flow"`
	Author  string   `yaml:"author"`
}

// Date is a YYYY-MM-DD day written as a plain YAML timestamp, not a quoted string
type Date string

// MarshalYAML implements yaml.Marshaler
func (d Date) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!timestamp", Value: string(d)}, nil
}

// ReadTicketFile reads a markdown ticket
func ReadTicketFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%s: %w", path, ErrNotFound)
		}
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(data), nil
}

// NewFrontMatter builds the header for a ticket whose file stub is shortName
func NewFrontMatter(shortName string, now time.Time) FrontMatter {
	words := strings.ReplaceAll(shortName, "_", " ")
	return FrontMatter{
		Title:   common.Capitalize(words),
		Date:    Date(now.Format("2006-01-02")),
		Summary: fmt.Sprintf("JIRA ticket for '%s'", words),
		Tags:    []string{"jira", "ai", "automation"},
		Author:  "AI Agent",
	}
}

// RenderEnhancedTicket prefixes the ticket with its YAML front matter
func RenderEnhancedTicket(fm FrontMatter, ticket string) (string, error) {
	var buf bytes.Buffer
	buf.WriteString("---\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(fm); err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("failed to encode front matter: %w", err)
	}
	buf.WriteString("---\n\n")
	buf.WriteString(ticket)
	return buf.String(), nil
}

// WriteEnhancedTicket saves an enhanced ticket as {date}_{short name}.md in dir
func WriteEnhancedTicket(dir, description, ticket string, now time.Time) (string, error) {
	shortName := pipeline.StoryShortName(description)
	content, err := RenderEnhancedTicket(NewFrontMatter(shortName, now), ticket)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.md", now.Format(dateStamp), shortName))
	if err := writeFile(path, content); err != nil {
		return "", err
	}
	log.Infof("Ticket saved to %s", path)
	return path, nil
}

// WriteTaskBreakdown saves the updated ticket next to its source file
func WriteTaskBreakdown(sourcePath, original, updated string, now time.Time) (string, error) {
	stub := pipeline.ExtractSummaryName(original)
	path := filepath.Join(filepath.Dir(sourcePath), fmt.Sprintf("%s_%s_with_tasks.md", now.Format(dateStamp), stub))
	if err := writeFile(path, updated); err != nil {
		return "", err
	}
	log.Infof("Task breakdown saved to %s", path)
	return path, nil
}

// WriteTestSuite saves one TypeScript file per test category in dir
func WriteTestSuite(dir, stub string, suite models.TestSuite, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", dir, err)
	}
	paths := make([]string, 0, len(agents.TestCategories))
	for _, category := range agents.TestCategories {
		path := filepath.Join(dir, fmt.Sprintf("%s_%s_%s.ts", now.Format(dateStamp), stub, category))
		if err := writeFile(path, suite.Outputs.Get(category)); err != nil {
			return paths, err
		}
		log.Infof("Saved %s test to %s", category, path)
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
