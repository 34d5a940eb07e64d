package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	liblog "trpc.group/trpc-go/trpc-a2a-go/log"

	"github.com/tuannvm/ticketsmith/internal/a2a"
	"github.com/tuannvm/ticketsmith/internal/common"
	"github.com/tuannvm/ticketsmith/internal/config"
	"github.com/tuannvm/ticketsmith/internal/guardrail"
	"github.com/tuannvm/ticketsmith/internal/httpapi"
	"github.com/tuannvm/ticketsmith/internal/jira"
	"github.com/tuannvm/ticketsmith/internal/llm"
	log "github.com/tuannvm/ticketsmith/internal/logging"
	"github.com/tuannvm/ticketsmith/internal/pipeline"
)

func main() {
	cfg := config.NewConfig()

	logger := log.Init(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	// Route tRPC-A2A-Go internal logs through our logger
	liblog.Default = logger.WithOptions(zap.AddCallerSkip(1)).Sugar()

	client, err := llm.NewClient(cfg)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}
	orchestrator := pipeline.New(client, nil, guardrail.ParsePolicy(cfg.GuardrailPolicy))

	var jiraClient jira.ClientInterface
	if cfg.JiraConfigured() {
		c, err := jira.NewClient(cfg)
		if err != nil {
			log.Fatalf("Failed to create Jira client: %v", err)
		}
		jiraClient = c
	} else {
		log.Warnf("Jira is not configured, webhook endpoint disabled")
	}

	srv, err := httpapi.NewServer(orchestrator, jiraClient, logger, &httpapi.Config{
		Host:      cfg.ServerHost,
		Port:      cfg.ServerPort,
		AuthType:  cfg.AuthType,
		APIKey:    cfg.APIKey,
		JWTSecret: cfg.JWTSecret,
	})
	if err != nil {
		log.Fatalf("Failed to create HTTP server: %v", err)
	}

	// Create a context that will be canceled on SIGINT or SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a2aDone := make(chan struct{})
	if cfg.A2AEnabled {
		a2aServer, err := a2a.NewServer(cfg, orchestrator)
		if err != nil {
			log.Fatalf("Failed to setup A2A server: %v", err)
		}
		go func() {
			defer close(a2aDone)
			if err := common.StartServer(ctx, a2aServer, cfg.ServerHost, cfg.A2APort); err != nil {
				log.Errorf("A2A server error: %v", err)
				stop()
			}
		}()
	} else {
		close(a2aDone)
	}

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("HTTP server shutdown failed: %v", err)
	}
	<-a2aDone

	log.Infof("Server shutdown complete")
}
