// Package arena parses arena command flags and runs battle subcommands.
package arena

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/monchain/arena/internal/audit"
	"github.com/monchain/arena/internal/battle"
	"github.com/monchain/arena/internal/battle/service"
	"github.com/monchain/arena/internal/platform/config"
	"github.com/monchain/arena/internal/platform/otel"
	"github.com/monchain/arena/internal/storage/integrity"
	"github.com/monchain/arena/internal/storage/sqlite"
)

// Config holds arena command configuration.
type Config struct {
	DBPath    string `env:"ARENA_DB_PATH" envDefault:"arena.db"`
	HMACKeys  string `env:"ARENA_ACTION_HMAC_KEYS"`
	HMACKeyID string `env:"ARENA_ACTION_HMAC_KEY_ID"`
	TurnCap   int    `env:"ARENA_TURN_CAP" envDefault:"100"`

	Battles  int
	Parallel int
	Seed     string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, []string, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, nil, err
	}
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "Path to the sqlite database file")
	fs.IntVar(&cfg.TurnCap, "turn-cap", cfg.TurnCap, "Maximum turns before an automated battle times out")
	fs.IntVar(&cfg.Battles, "battles", 10, "Number of battles to simulate")
	fs.IntVar(&cfg.Parallel, "parallel", 4, "Number of battles resolved concurrently")
	fs.StringVar(&cfg.Seed, "seed", "", "Seed prefix for simulated battles (random when empty)")
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, err
	}
	return cfg, fs.Args(), nil
}

// Run executes the subcommand named by the first remaining argument.
func Run(ctx context.Context, cfg Config, args []string, stdout io.Writer) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: arena [flags] simulate|verify|show")
	}

	shutdown, err := otel.Setup(ctx, "arena")
	if err != nil {
		return fmt.Errorf("setup telemetry: %w", err)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			log.Printf("shutdown telemetry: %v", err)
		}
	}()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	keyring, err := integrity.KeyringFromSpec(cfg.HMACKeys, cfg.HMACKeyID)
	if err != nil {
		return fmt.Errorf("load keyring: %w", err)
	}

	opts := []service.Option{
		service.WithAudit(audit.NewEmitter(store)),
		service.WithTurnCap(cfg.TurnCap),
	}
	if keyring != nil {
		opts = append(opts, service.WithKeyring(keyring))
	}
	svc := service.New(store, battle.BuiltinCatalog(), opts...)

	switch args[0] {
	case "simulate":
		return runSimulate(ctx, svc, cfg, stdout)
	case "verify":
		if len(args) < 2 {
			return fmt.Errorf("usage: arena verify <session-id>")
		}
		return runVerify(ctx, svc, args[1], stdout)
	case "show":
		if len(args) < 2 {
			return fmt.Errorf("usage: arena show <session-id>")
		}
		return runShow(ctx, svc, args[1], stdout)
	default:
		return fmt.Errorf("unknown subcommand %q", args[0])
	}
}

func runSimulate(ctx context.Context, svc *service.Service, cfg Config, stdout io.Writer) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(cfg.Parallel)

	results := make([]string, cfg.Battles)
	for i := 0; i < cfg.Battles; i++ {
		group.Go(func() error {
			spec := service.NewSession{Type: battle.SessionTypeGym, Players: simulationRoster()}
			if cfg.Seed != "" {
				spec.Seed = fmt.Sprintf("%s-%d", cfg.Seed, i)
			}
			session, err := svc.CreateSession(ctx, spec)
			if err != nil {
				return fmt.Errorf("create session: %w", err)
			}
			outcome, err := svc.AutoResolve(ctx, session.ID)
			if err != nil {
				return fmt.Errorf("resolve %s: %w", session.ID, err)
			}
			results[i] = formatOutcome(session.ID, outcome)
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return err
	}
	for _, line := range results {
		fmt.Fprintln(stdout, line)
	}
	return nil
}

func formatOutcome(sessionID string, outcome service.AutoOutcome) string {
	switch {
	case outcome.TimedOut:
		return fmt.Sprintf("%s timed out after %d turns", sessionID, outcome.Turns)
	case outcome.Draw:
		return fmt.Sprintf("%s ended in a draw after %d turns", sessionID, outcome.Turns)
	default:
		return fmt.Sprintf("%s won by %s in %d turns", sessionID, outcome.Winner, outcome.Turns)
	}
}

func runVerify(ctx context.Context, svc *service.Service, sessionID string, stdout io.Writer) error {
	started := time.Now()
	outcome, err := svc.Replay(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("replay %s: %w", sessionID, err)
	}
	fmt.Fprintf(stdout, "verified %d turns in %s\n", len(outcome.PerTurn), time.Since(started).Round(time.Millisecond))
	if outcome.SignaturesChecked {
		fmt.Fprintf(stdout, "signature failures: %d\n", len(outcome.SignatureFailures))
	}
	if !outcome.AllMatch {
		for _, entry := range outcome.PerTurn {
			if entry.Match {
				continue
			}
			fmt.Fprintf(stdout, "turn %d: logged damage=%d hit=%t, recomputed damage=%d hit=%t\n",
				entry.Turn, entry.LoggedDamage, entry.LoggedHit, entry.RecomputedDamage, entry.RecomputedHit)
		}
		return fmt.Errorf("session %s failed verification", sessionID)
	}
	fmt.Fprintf(stdout, "session %s verified clean\n", sessionID)
	return nil
}

func runShow(ctx context.Context, svc *service.Service, sessionID string, stdout io.Writer) error {
	session, err := svc.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session %s: %w", sessionID, err)
	}
	encoder := json.NewEncoder(stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(session)
}

func simulationRoster() [2]battle.Participant {
	challenger := []battle.Combatant{
		simCombatant("c1", "emberling", 12, 48, 17, 11, 13, []string{"ember", "tackle", "quick-attack"}),
		simCombatant("c2", "sproutling", 11, 44, 14, 13, 10, []string{"razor-leaf", "tackle"}),
		simCombatant("c3", "tidepup", 12, 50, 15, 12, 11, []string{"water-gun", "bubble-beam", "tackle"}),
	}
	gym := []battle.Combatant{
		simCombatant("g1", "boulderback", 14, 56, 16, 16, 8, []string{"pound", "tackle"}),
		simCombatant("g2", "galehawk", 13, 46, 17, 10, 16, []string{"scratch", "quick-attack"}),
		simCombatant("g3", "voltkit", 13, 44, 18, 11, 15, []string{"thunder-shock", "quick-attack", "tackle"}),
	}
	return [2]battle.Participant{
		{Identity: "challenger", Team: challenger},
		{Identity: "gym-leader", Team: gym},
	}
}

func simCombatant(uid, species string, level, hp, attack, defense, speed int, moves []string) battle.Combatant {
	return battle.Combatant{
		UID:       uid,
		SpeciesID: species,
		Level:     level,
		CurrentHP: hp,
		MaxHP:     hp,
		Attack:    attack,
		Defense:   defense,
		Speed:     speed,
		Moves:     moves,
		Status:    battle.CombatantActive,
	}
}
