package models

// PerspectiveComment is one reviewer's comment on a structured ticket
type PerspectiveComment struct {
	Role    string `json:"role"`
	Comment string `json:"comment"`
}

// TaskResult is a ticket with its task breakdown appended
type TaskResult struct {
	Output string   `json:"output"`
	Tasks  []string `json:"tasks"`
}

// TestOutputs holds the generated test code per category
type TestOutputs struct {
	Unit        string `json:"unit"`
	Integration string `json:"integration"`
	E2E         string `json:"e2e"`
}

// Get returns the code for a category key (unit, integration, e2e)
func (o TestOutputs) Get(category string) string {
	switch category {
	case "unit":
		return o.Unit
	case "integration":
		return o.Integration
	case "e2e":
		return o.E2E
	}
	return ""
}

// Set stores the code for a category key and reports whether the key is known
func (o *TestOutputs) Set(category, code string) bool {
	switch category {
	case "unit":
		o.Unit = code
	case "integration":
		o.Integration = code
	case "e2e":
		o.E2E = code
	default:
		return false
	}
	return true
}

// TestSuite is the result of the test generation workflow
type TestSuite struct {
	Outputs TestOutputs `json:"outputs"`
	Tasks   []string    `json:"tasks"`
	// Ticket is the text the generators saw, including the task breakdown
	Ticket    string `json:"-"`
	Clear     bool   `json:"clear"`
	Reasoning string `json:"reasoning,omitempty"`
}

// SkillRequest is the payload accepted by the A2A surface
type SkillRequest struct {
	Skill   string `json:"skill"`
	Content string `json:"content"`
}

// JiraTicket represents a Jira issue fetched from Jira API
type JiraTicket struct {
	ID          string   `json:"id"`
	Key         string   `json:"key"`
	Summary     string   `json:"summary"`
	Description string   `json:"description"`
	Status      string   `json:"status,omitempty"`
	Priority    string   `json:"priority,omitempty"`
	IssueType   string   `json:"issueType,omitempty"`
	Labels      []string `json:"labels,omitempty"`
}

// JiraComment represents a comment posted to Jira
type JiraComment struct {
	ID   string `json:"id"`
	Body string `json:"body"`
	URL  string `json:"url,omitempty"`
}
