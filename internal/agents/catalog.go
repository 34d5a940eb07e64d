package agents

// CommentOutput is the reply shape of a perspective reviewer
type CommentOutput struct {
	Comments string `json:"comments"`
}

// TicketCheck is the reply shape of the input guardrail
type TicketCheck struct {
	IsValidTicket bool   `json:"is_valid_ticket"`
	Reasoning     string `json:"reasoning"`
}

// ReadinessCheck is the reply shape of the final output guardrail
type ReadinessCheck struct {
	IsClearForTeam bool   `json:"is_clear_for_team"`
	Reasoning      string `json:"reasoning"`
}

// ClarityCheck is the reply shape of the test clarity guardrail
type ClarityCheck struct {
	IsClear   bool   `json:"is_clear"`
	Reasoning string `json:"reasoning"`
}

// TaskBreakdown is the reply shape of the task decomposer
type TaskBreakdown struct {
	Steps []string `json:"steps"`
}

// TestOutput is the reply shape of a test generator
type TestOutput struct {
	TestCode string `json:"test_code"`
}

const (
	commentSchema = `{
  "type": "object",
  "required": ["comments"],
  "properties": {"comments": {"type": "string"}}
}`

	ticketCheckSchema = `{
  "type": "object",
  "required": ["is_valid_ticket", "reasoning"],
  "properties": {
    "is_valid_ticket": {"type": "boolean"},
    "reasoning": {"type": "string"}
  }
}`

	readinessSchema = `{
  "type": "object",
  "required": ["is_clear_for_team", "reasoning"],
  "properties": {
    "is_clear_for_team": {"type": "boolean"},
    "reasoning": {"type": "string"}
  }
}`

	claritySchema = `{
  "type": "object",
  "required": ["is_clear", "reasoning"],
  "properties": {
    "is_clear": {"type": "boolean"},
    "reasoning": {"type": "string"}
  }
}`

	taskBreakdownSchema = `{
  "type": "object",
  "required": ["steps"],
  "properties": {
    "steps": {"type": "array", "items": {"type": "string"}}
  }
}`

	testOutputSchema = `{
  "type": "object",
  "required": ["test_code"],
  "properties": {"test_code": {"type": "string"}}
}`
)

// Test categories produced by the test generators
const (
	TestUnit        = "unit"
	TestIntegration = "integration"
	TestE2E         = "e2e"
)

// TestCategories lists the generator keys in output order
var TestCategories = []string{TestUnit, TestIntegration, TestE2E}

// Catalog holds every agent the pipelines use
type Catalog struct {
	TicketGuardrail  Agent
	ReadinessCheck   Agent
	TicketMaster     Agent
	Reviewers        []Agent
	TaskDecomposer   Agent
	ClarityGuardrail Agent
	TestGenerators   map[string]Agent
}

// DefaultCatalog returns the standard agent configuration
func DefaultCatalog() *Catalog {
	return &Catalog{
		TicketGuardrail: Agent{
			Name:         "Ticket Input Guardrail Agent",
			Instructions: "Check if the input is a valid JIRA ticket description.",
			OutputSchema: ticketCheckSchema,
		},
		ReadinessCheck: Agent{
			Name:         "Final Output Guardrail Agent",
			Instructions: "Check if the final compiled JIRA ticket is clear, actionable, and ready for the team.",
			OutputSchema: readinessSchema,
		},
		TicketMaster: Agent{
			Name: "JIRA Ticket Master AI",
			Instructions: "Transform the JIRA ticket description into a structured format including introduction, " +
				"user story, acceptance criteria, definition of done, dependencies, and solution steps.",
		},
		Reviewers: []Agent{
			reviewer("PM Agent", "Project management perspective", "PM"),
			reviewer("Developer Agent", "Developer perspective", "developer"),
			reviewer("QA Agent", "QA perspective", "QA"),
			reviewer("Security Agent", "Security perspective", "security"),
			reviewer("Design Agent", "Design perspective", "design"),
		},
		TaskDecomposer: Agent{
			Name: "Task Decomposer",
			Instructions: "Break down the provided JIRA ticket into small, clear technical tasks that make " +
				"implementation and test case generation easier.",
			OutputSchema: taskBreakdownSchema,
		},
		ClarityGuardrail: Agent{
			Name: "Test Clarity Checker",
			Instructions: "Check if the ticket is clear and complete enough to generate meaningful test cases. " +
				"If anything is ambiguous, incomplete, or under-specified, flag it.",
			OutputSchema: claritySchema,
		},
		TestGenerators: map[string]Agent{
			TestUnit: {
				Name:         "Unit Test Generator",
				Instructions: "Generate unit test cases in TypeScript based on the requirements described in the Markdown input.",
				OutputSchema: testOutputSchema,
			},
			TestIntegration: {
				Name:         "Integration Test Generator",
				Instructions: "Generate integration test cases for Ember based on the requirements in the Markdown input.",
				OutputSchema: testOutputSchema,
			},
			TestE2E: {
				Name:         "E2E Test Generator",
				Instructions: "Generate end-to-end test cases using Playwright with TypeScript based on the requirements in the Markdown input.",
				OutputSchema: testOutputSchema,
			},
		},
	}
}

func reviewer(name, description, role string) Agent {
	return Agent{
		Name:         name,
		Description:  description,
		Instructions: "Review the JIRA ticket and provide " + role + "-specific comments.",
		OutputSchema: commentSchema,
	}
}

// ReviewerNames returns the reviewer names in their fixed order
func (c *Catalog) ReviewerNames() []string {
	names := make([]string, len(c.Reviewers))
	for i, a := range c.Reviewers {
		names[i] = a.Name
	}
	return names
}
