// Package app provides application-level wiring and dependency injection
// for the rowguard server following hexagonal architecture.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"rowguard/internal/config"
	"rowguard/internal/db/crypto"
	"rowguard/internal/db/repository"
	"rowguard/internal/metrics"
	"rowguard/internal/policy"
	"rowguard/internal/service/apikey"
	"rowguard/internal/service/audit"
	"rowguard/internal/service/authz"
	"rowguard/internal/service/credential"
	"rowguard/internal/service/team"
)

// Deps holds the external dependencies that main() must provide.
// These are things the app package cannot (or should not) create itself:
// database handles, config, and the logger.
type Deps struct {
	Cfg      *config.Config
	WriteDB  *sql.DB
	ReadDB   *sql.DB
	Logger   *slog.Logger
	SeedDemo bool // populate demo subjects and teams when the store is empty
}

// Services groups all service pointers that the API handler and router need.
type Services struct {
	Credential *credential.Service
	Team       *team.Service
	AuditQuery *audit.Query
	APIKey     *apikey.Service
}

// App holds the fully-wired application: services, the audit delivery
// pipeline, and the repositories needed for router setup (APIKeyRepo for
// auth middleware). AuditLogger must be drained via Close on shutdown;
// Replayer is started and stopped by main.
type App struct {
	Services    Services
	AuditLogger *audit.Logger
	Replayer    *audit.Replayer
	APIKeyRepo  *repository.APIKeyRepo
	Metrics     *metrics.Metrics
}

// New wires all repositories, services, and the decision evaluator from the
// provided deps. It also drains audit entries a previous run left in the
// spool and runs conditional demo seeding.
func New(ctx context.Context, deps Deps) (*App, error) {
	cfg := deps.Cfg

	// === Crypto layer ===
	box, err := crypto.NewSecretBox(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("encryption key: %w", err)
	}

	// === Repositories ===
	credentialRepo := repository.NewCredentialRepo(deps.WriteDB, deps.ReadDB, box)
	membershipRepo := repository.NewMembershipRepo(deps.WriteDB, deps.ReadDB)
	apiKeyRepo := repository.NewAPIKeyRepo(deps.WriteDB, deps.ReadDB)
	auditRepo := repository.NewAuditRepo(deps.WriteDB, deps.ReadDB)

	// === Policy registry ===
	sets := policy.Defaults()
	if cfg.PolicyFile != "" {
		sets, err = policy.LoadFile(cfg.PolicyFile)
		if err != nil {
			return nil, fmt.Errorf("load policy file %s: %w", cfg.PolicyFile, err)
		}
		deps.Logger.Info("policy file loaded", "path", cfg.PolicyFile, "resources", len(sets))
	}
	registry, err := policy.BuildRegistry(sets)
	if err != nil {
		return nil, fmt.Errorf("build policy registry: %w", err)
	}

	// === Metrics ===
	m := metrics.New()

	// === Audit delivery pipeline ===
	spool, err := audit.NewSpool(cfg.Audit.SpoolPath)
	if err != nil {
		return nil, fmt.Errorf("audit spool: %w", err)
	}
	auditLogger := audit.NewLogger(auditRepo, spool, deps.Logger, m, audit.Config{
		QueueSize: cfg.Audit.QueueSize,
		Attempts:  cfg.Audit.Attempts,
		Backoff:   cfg.Audit.Backoff,
	})
	replayer := audit.NewReplayer(spool, auditRepo, deps.Logger, m, cfg.Audit.ReplaySchedule)

	// Drain entries stranded by a previous crash (best-effort)
	if err := replayer.ReplayOnce(ctx); err != nil {
		deps.Logger.Warn("replay spooled audit entries failed", "error", err)
	}

	// === Authorization ===
	evaluator := authz.NewEvaluator(registry, authz.NewMemberships(membershipRepo), auditLogger, deps.Logger, m)

	// === Services ===
	credentialSvc := credential.NewService(credentialRepo, evaluator)
	teamSvc := team.NewService(membershipRepo, evaluator)
	auditQuery := audit.NewQuery(auditRepo)
	apiKeySvc := apikey.NewService(apiKeyRepo)

	svcs := Services{
		Credential: credentialSvc,
		Team:       teamSvc,
		AuditQuery: auditQuery,
		APIKey:     apiKeySvc,
	}

	// === Seed demo data ===
	if deps.SeedDemo {
		if err := seedDemo(ctx, deps.Logger, svcs, membershipRepo); err != nil {
			deps.Logger.Warn("seed demo data failed", "error", err)
		}
	}

	return &App{
		Services:    svcs,
		AuditLogger: auditLogger,
		Replayer:    replayer,
		APIKeyRepo:  apiKeyRepo,
		Metrics:     m,
	}, nil
}
