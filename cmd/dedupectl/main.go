// Command dedupectl is the operational entrypoint of the candidate
// identity-resolution core. It drives duplicate checks, fingerprint
// refreshes, the historical backfill, and the statistics report against the
// configured store.
//
// Usage:
//
//	dedupectl -tenant <id> check -name "Jon Smith" [-email ...] [-phone ...]
//	dedupectl -tenant <id> refresh -candidate <id> [-force]
//	dedupectl -tenant <id> backfill [-force]
//	dedupectl -tenant <id> stats
//
// Configuration comes from the environment (see internal/config); a .env
// file is honored when present.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/ansariamann/hr-system-sub002/internal/backfill"
	"github.com/ansariamann/hr-system-sub002/internal/config"
	"github.com/ansariamann/hr-system-sub002/internal/match"
	"github.com/ansariamann/hr-system-sub002/internal/observability"
	"github.com/ansariamann/hr-system-sub002/internal/repo"
	"github.com/ansariamann/hr-system-sub002/internal/services"
	"github.com/ansariamann/hr-system-sub002/internal/sysutil"
)

var version = "dev"

// cliArgs is the parsed command line. Each subcommand owns its flag set so
// flags may follow the command word, as the usage shows.
type cliArgs struct {
	tenant string
	cmd    string

	name, email, phone string // check
	candidateID        string // refresh
	force              bool   // refresh, backfill
}

// parseArgs parses `-tenant <id> <command> [command flags]`. args excludes
// the program name.
func parseArgs(args []string, stderr io.Writer) (*cliArgs, error) {
	root := flag.NewFlagSet("dedupectl", flag.ContinueOnError)
	root.SetOutput(stderr)
	tenant := root.String("tenant", "", "tenant ID (required)")
	if err := root.Parse(args); err != nil {
		return nil, err
	}

	rest := root.Args()
	if len(rest) == 0 {
		return nil, errors.New("missing command: check | refresh | backfill | stats")
	}
	out := &cliArgs{tenant: *tenant, cmd: rest[0]}

	sub := flag.NewFlagSet(out.cmd, flag.ContinueOnError)
	sub.SetOutput(stderr)
	switch out.cmd {
	case "check":
		sub.StringVar(&out.name, "name", "", "candidate name (required)")
		sub.StringVar(&out.email, "email", "", "candidate email")
		sub.StringVar(&out.phone, "phone", "", "candidate phone")
	case "refresh":
		sub.StringVar(&out.candidateID, "candidate", "", "candidate ID (required)")
		sub.BoolVar(&out.force, "force", false, "rewrite the fingerprint even when current")
	case "backfill":
		sub.BoolVar(&out.force, "force", false, "rewrite fingerprints even when current")
	case "stats":
	default:
		return nil, fmt.Errorf("unknown command %q: want check | refresh | backfill | stats", out.cmd)
	}
	if err := sub.Parse(rest[1:]); err != nil {
		return nil, err
	}
	if extra := sub.Args(); len(extra) > 0 {
		return nil, fmt.Errorf("unexpected arguments after %s: %v", out.cmd, extra)
	}

	if out.tenant == "" {
		return nil, errors.New("-tenant is required")
	}
	switch out.cmd {
	case "check":
		if out.name == "" {
			return nil, errors.New("-name is required for check")
		}
	case "refresh":
		if out.candidateID == "" {
			return nil, errors.New("-candidate is required for refresh")
		}
	}
	return out, nil
}

func main() {
	if err := run(); err != nil {
		log.Error().Err(err).Msg("dedupectl failed")
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()
	cfg := config.MustLoad()
	sysutil.SetupLogger(cfg.LogLevel, cfg.LogPretty)

	args, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdown, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Warn().Err(err).Msg("otel shutdown failed")
		}
	}()

	db, err := repo.OpenSQLite(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	engine := match.NewEngine(match.WithThreshold(cfg.MatchThreshold))
	dup := services.NewDuplicateService(db, engine)
	dup.ScanPageSize = cfg.ScanPageSize
	dup.MaxMatches = cfg.MaxMatches

	switch args.cmd {
	case "check":
		res, err := dup.DetectDuplicates(ctx, args.tenant, services.CandidateData{
			Name:  args.name,
			Email: args.email,
			Phone: args.phone,
		})
		if err != nil {
			return err
		}
		return printJSON(res)

	case "refresh":
		updated, err := dup.UpdateCandidateHash(ctx, args.tenant, args.candidateID, args.force)
		if err != nil {
			return err
		}
		return printJSON(map[string]bool{"updated": updated})

	case "backfill":
		co := backfill.NewCoordinator(db, cfg.Backfill)
		stats, err := co.Run(ctx, args.tenant, args.force)
		if err != nil {
			return err
		}
		return printJSON(stats)

	default: // stats
		stats, err := dup.GetDuplicateStatistics(ctx, args.tenant)
		if err != nil {
			return err
		}
		return printJSON(stats)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
