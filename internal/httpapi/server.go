// Package httpapi exposes the ticket pipelines over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/tuannvm/ticketsmith/internal/common"
	"github.com/tuannvm/ticketsmith/internal/guardrail"
	"github.com/tuannvm/ticketsmith/internal/jira"
	"github.com/tuannvm/ticketsmith/internal/models"
)

// Pipeline is the set of workflows served over HTTP
type Pipeline interface {
	EnhanceTicket(ctx context.Context, description string) (string, error)
	DecomposeTasks(ctx context.Context, text string) (models.TaskResult, error)
	GenerateTests(ctx context.Context, text string) (models.TestSuite, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Host      string
	Port      int
	AuthType  string
	APIKey    string
	JWTSecret string
	// WebhookTimeout bounds background work started by Jira webhooks
	WebhookTimeout time.Duration
}

// Server provides HTTP endpoints for the pipelines.
type Server struct {
	echo     *echo.Echo
	pipeline Pipeline
	jira     jira.ClientInterface
	logger   *zap.Logger
	config   *Config

	background sync.WaitGroup
}

// NewServer creates a new HTTP server. jiraClient may be nil, which disables the webhook.
func NewServer(p Pipeline, jiraClient jira.ClientInterface, logger *zap.Logger, cfg *Config) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("pipeline cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{Host: "localhost", Port: 8000}
	}
	if cfg.WebhookTimeout == 0 {
		cfg.WebhookTimeout = 10 * time.Minute
	}

	authProvider, err := common.NewAuthProvider(cfg.AuthType, cfg.APIKey, cfg.JWTSecret)
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			fields := []zap.Field{
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", time.Since(start)),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			}
			// Auth runs per route and replaces the request, so the user is only visible after next
			if user, ok := common.AuthUser(c.Request().Context()); ok {
				fields = append(fields, zap.String("user", user.ID))
			}
			logger.Info("http request", fields...)

			return err
		}
	})

	s := &Server{
		echo:     e,
		pipeline: p,
		jira:     jiraClient,
		logger:   logger,
		config:   cfg,
	}

	s.registerRoutes(echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return common.AuthMiddleware(authProvider, next)
	}))

	return s, nil
}

// registerRoutes sets up the HTTP endpoints.
func (s *Server) registerRoutes(auth echo.MiddlewareFunc) {
	s.echo.GET("/", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.echo.POST("/main", s.handleMain, auth)
	s.echo.POST("/task-manager", s.handleTaskManager, auth)
	s.echo.POST("/test-generator", s.handleTestGenerator, auth)
	s.echo.POST("/webhook/jira", s.handleJiraWebhook, auth)
}

// TicketInput is the request body for POST /main.
type TicketInput struct {
	TicketDescription string `json:"ticket_description"`
}

// MarkdownInput is the request body for POST /task-manager and POST /test-generator.
type MarkdownInput struct {
	MarkdownContent string `json:"markdown_content"`
}

// MainResponse is the response body for POST /main.
type MainResponse struct {
	Output string `json:"output"`
}

// TestGeneratorResponse is the response body for POST /test-generator.
type TestGeneratorResponse struct {
	Outputs models.TestOutputs `json:"outputs"`
	Tasks   []string           `json:"tasks"`
}

// HealthResponse is the response body for GET /.
type HealthResponse struct {
	Status string `json:"status"`
}

// ErrorResponse carries the failure detail for non-2xx responses.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "API running"})
}

func (s *Server) handleMain(c echo.Context) error {
	// Pointer fields separate an absent key from a blank one; blank text is left to the input guardrail
	var req struct {
		TicketDescription *string `json:"ticket_description"`
	}
	if err := c.Bind(&req); err != nil {
		return unprocessable("invalid request body")
	}
	if req.TicketDescription == nil {
		return unprocessable("ticket_description is required")
	}

	out, err := s.pipeline.EnhanceTicket(c.Request().Context(), *req.TicketDescription)
	if err != nil {
		return s.fail(c, "Ticket processing failed or input was invalid", err)
	}
	return c.JSON(http.StatusOK, MainResponse{Output: out})
}

func (s *Server) handleTaskManager(c echo.Context) error {
	content, err := bindMarkdown(c)
	if err != nil {
		return err
	}

	result, err := s.pipeline.DecomposeTasks(c.Request().Context(), content)
	if err != nil {
		return s.fail(c, "Task decomposition failed", err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) handleTestGenerator(c echo.Context) error {
	content, err := bindMarkdown(c)
	if err != nil {
		return err
	}

	suite, err := s.pipeline.GenerateTests(c.Request().Context(), content)
	if err != nil {
		return s.fail(c, "Ticket was marked unclear", err)
	}
	return c.JSON(http.StatusOK, TestGeneratorResponse{Outputs: suite.Outputs, Tasks: suite.Tasks})
}

func bindMarkdown(c echo.Context) (string, error) {
	var req struct {
		MarkdownContent *string `json:"markdown_content"`
	}
	if err := c.Bind(&req); err != nil {
		return "", unprocessable("invalid request body")
	}
	if req.MarkdownContent == nil {
		return "", unprocessable("markdown_content is required")
	}
	return *req.MarkdownContent, nil
}

// unprocessable is rendered by echo's error handler as {"detail": ...}
func unprocessable(detail string) error {
	return echo.NewHTTPError(http.StatusUnprocessableEntity, ErrorResponse{Detail: detail})
}

// fail maps pipeline errors to responses: tripped guardrails are the caller's
// problem (400), anything else is a server error carrying the error text.
func (s *Server) fail(c echo.Context, tripDetail string, err error) error {
	if errors.Is(err, guardrail.ErrTripwire) {
		s.logger.Info("guardrail stopped request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: fmt.Sprintf("%s: %v", tripDetail, err)})
	}
	s.logger.Error("pipeline failed", zap.Error(err))
	return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: err.Error()})
}

// WebhookResponse is the response body for POST /webhook/jira.
type WebhookResponse struct {
	Status   string `json:"status"`
	TicketID string `json:"ticketId"`
}

// handleJiraWebhook enhances newly created issues and posts the result back as a comment.
// The pipeline runs after the response is sent; Jira does not wait for webhooks.
func (s *Server) handleJiraWebhook(c echo.Context) error {
	if s.jira == nil {
		return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Detail: jira.ErrNotConfigured.Error()})
	}

	body, err := io.ReadAll(c.Request().Body)
	if err != nil || len(body) == 0 {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "request body cannot be empty"})
	}
	event, err := jira.TransformJiraWebhook(body)
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
	}
	if event.Event != "created" {
		s.logger.Debug("ignoring jira event", webhookFields(event)...)
		return c.JSON(http.StatusOK, WebhookResponse{Status: "ignored", TicketID: event.TicketID})
	}

	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(context.Background(), s.config.WebhookTimeout)
		defer cancel()
		s.enhanceIssue(ctx, event)
	}()

	return c.JSON(http.StatusAccepted, WebhookResponse{Status: "accepted", TicketID: event.TicketID})
}

func webhookFields(event *jira.WebhookEvent) []zap.Field {
	fields := []zap.Field{
		zap.String("ticket", event.TicketID),
		zap.String("event", event.Event),
		zap.String("project", event.ProjectKey),
		zap.String("user", event.UserName),
		zap.String("user_email", event.UserEmail),
		zap.String("event_time", event.Timestamp),
	}
	if len(event.Changes) > 0 {
		fields = append(fields, zap.Any("changes", event.Changes))
	}
	return fields
}

func (s *Server) enhanceIssue(ctx context.Context, event *jira.WebhookEvent) {
	logger := s.logger.With(webhookFields(event)...)

	description := jira.TicketDescription(&models.JiraTicket{Summary: event.Summary, Description: event.Description})
	if event.Description == "" {
		ticket, err := s.jira.GetTicket(ctx, event.TicketID)
		if err != nil {
			logger.Error("failed to fetch ticket", zap.Error(err))
			return
		}
		description = jira.TicketDescription(ticket)
	}

	out, err := s.pipeline.EnhanceTicket(ctx, description)
	if err != nil {
		logger.Warn("ticket not enhanced", zap.Error(err))
		return
	}
	if _, err := s.jira.PostComment(ctx, event.TicketID, out); err != nil {
		logger.Error("failed to post enhanced ticket", zap.Error(err))
		return
	}
	logger.Info("posted enhanced ticket")
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server and waits for webhook work to finish.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	err := s.echo.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.background.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		s.logger.Warn("webhook work still running at shutdown")
	}
	return err
}
