package main

import (
	"context"
	"log"

	"rule-orchestrator/api/server"
	"rule-orchestrator/config"
	"rule-orchestrator/logger"
	"rule-orchestrator/rules/batch"
	"rule-orchestrator/rules/dispatch"
	ruleHandlers "rule-orchestrator/rules/handlers"
	handlerRegistry "rule-orchestrator/rules/registry"
	"rule-orchestrator/rules/settings"
	"rule-orchestrator/runs/coordinator"
	"rule-orchestrator/runs/queue"
	"rule-orchestrator/runs/runners"
	"rule-orchestrator/runs/store"
	"rule-orchestrator/runs/workers"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Create logger
	lg := logger.New(cfg.LogLevel, nil)

	lg.Info("Starting rule orchestrator", map[string]any{
		"version":   cfg.Version,
		"port":      cfg.ServerPort,
		"log_level": cfg.LogLevel,
		"async":     cfg.Async,
	})

	// Rule configuration source and enforcement gate
	gate, closeSettings, err := createSettingsGate(cfg)
	if err != nil {
		log.Fatalf("failed to set up rule settings: %v", err)
	}
	defer closeSettings()

	// Register every handler and seal the registry before any dispatch
	// is reachable. A duplicate or late registration aborts startup.
	registry, err := createHandlerRegistry(gate, lg)
	if err != nil {
		log.Fatalf("handler registration failed: %v", err)
	}

	dispatcher := dispatch.NewDispatcher(registry, lg, cfg.HandlerTimeout)
	executor := batch.NewExecutor(dispatcher, lg)
	runStore := store.NewMemoryRunStore()
	execution := runners.NewExecution(executor, runStore, lg)

	var runner runners.Runner
	var pool *workers.WorkerPool

	if cfg.Async {
		runQueue, err := queue.NewRedisRunQueue(cfg.RedisURL, cfg.QueueName)
		if err != nil {
			log.Fatalf("failed to connect run queue: %v", err)
		}
		defer runQueue.Close()

		runner = runners.NewAsynchronousRunner(runQueue, registry)

		pool = workers.NewWorkerPool(cfg.WorkerCount, runQueue, execution, lg)
		pool.SetShutdownTimeout(cfg.ShutdownTimeout)
		pool.Start(context.Background())
		defer pool.Stop()
	} else {
		runner = runners.NewSynchronousRunner(execution)
	}

	coord := coordinator.NewCoordinator(runStore, runner, lg)

	// Create and start server
	srv := server.New(coord, registry, cfg, lg)
	if err := srv.Start(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

// createHandlerRegistry sets up all rule handlers and seals the registry.
func createHandlerRegistry(gate *settings.Gate, lg *logger.Logger) (*handlerRegistry.HandlerRegistry, error) {
	registry := handlerRegistry.NewRegistry()

	if err := registry.Register(ruleHandlers.NewWindowHandler(gate, lg)); err != nil {
		return nil, err
	}
	if err := registry.Register(ruleHandlers.NewQuotaHandler(gate, lg)); err != nil {
		return nil, err
	}

	registry.Seal()

	lg.Info("Registered rule handlers", map[string]any{
		"count": len(registry.Kinds()),
		"kinds": registry.Kinds(),
	})

	return registry, nil
}

// createSettingsGate wires the configured settings backend to the CEL
// condition evaluator.
func createSettingsGate(cfg *config.Config) (*settings.Gate, func(), error) {
	conditions, err := settings.NewConditionEvaluator()
	if err != nil {
		return nil, nil, err
	}

	if cfg.SettingsBackend == "redis" {
		source, err := settings.NewRedisSource(cfg.RedisURL)
		if err != nil {
			return nil, nil, err
		}
		return settings.NewGate(source, conditions), func() { source.Close() }, nil
	}

	source := settings.NewMemorySource(nil)
	return settings.NewGate(source, conditions), func() {}, nil
}
