package commands

import (
	"context"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/lhoussin/limier/engine"
	"github.com/lhoussin/limier/engine/agent"
	"github.com/lhoussin/limier/internal/cache"
	"github.com/lhoussin/limier/internal/config"
	"github.com/lhoussin/limier/internal/database"
	"github.com/lhoussin/limier/internal/game"
	"github.com/lhoussin/limier/internal/setup"
	"github.com/lhoussin/limier/internal/term"
)

var (
	playHumans    []string
	playBots      int
	playSeed      uint64
	playStore     string
	playHistory   bool
	playSkipPause bool
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Set up and run a game",
	Long: `Set up a fresh game and run the turn loop until interrupted.

Human players are named with repeated --human flags and embody characters in
seating order; bots fill the remaining seats. With no humans at all the game
is a pure bot simulation.

Examples:
  # Two humans against one bot
  limier play --human Alice --human Robert --bots 1

  # Watch three bots play each other, reproducibly
  limier play --bots 3 --seed 7 --skip-pause`,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringArrayVar(&playHumans, "human", nil, "Name of a human player (repeatable, 4 to 16 characters)")
	playCmd.Flags().IntVar(&playBots, "bots", 2, "Number of bot players")
	playCmd.Flags().Uint64Var(&playSeed, "seed", 0, "RNG seed for setup and bots (0 = random)")
	playCmd.Flags().StringVar(&playStore, "store", "memory", "Storage backend (memory or postgres)")
	playCmd.Flags().BoolVar(&playHistory, "history", false, "Record the action history to Redis (REDIS_ADDR)")
	playCmd.Flags().BoolVar(&playSkipPause, "skip-pause", false, "Do not wait for Enter between turns")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	config.Load()
	logrus.SetLevel(config.LogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	seed := playSeed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	logrus.WithField("seed", seed).Debug("rng initialized")

	sessionID := uuid.New()
	st, cleanup, err := openStore(ctx, sessionID)
	if err != nil {
		return err
	}
	defer cleanup()

	var pub *cache.Publisher
	if playHistory {
		addr := config.RedisAddr()
		if addr == "" {
			return fmt.Errorf("--history requires REDIS_ADDR to be set")
		}
		rdb, err := cache.Connect(ctx, addr, config.RedisPassword())
		if err != nil {
			return err
		}
		defer rdb.Close()
		pub = cache.NewPublisher(rdb)
	}

	prompter := term.New(os.Stdin, os.Stdout)
	g, err := setup.NewGame(ctx, st, setup.Options{
		HumanNames: playHumans,
		Bots:       playBots,
		RNG:        rng,
		Chooser:    prompter,
	})
	if err != nil {
		return err
	}

	policies := make(map[string]engine.Policy, len(g.Players))
	for _, p := range g.Players {
		if p.Mode == engine.ModeBot {
			policies[p.Name] = agent.New(st, rng)
		} else {
			policies[p.Name] = engine.NewHumanPolicy(st, prompter)
		}
	}

	for _, p := range g.Players {
		prompter.Notify(fmt.Sprintf("%s embodies %s.", p.Name, p.Character.Name))
	}
	prompter.Notify("Everyone gathers in the Cafétéria. The investigation begins.")

	skipPause := playSkipPause || len(playHumans) == 0
	r := game.New(game.Config{
		Store:     st,
		Prompter:  prompter,
		Policies:  policies,
		SessionID: sessionID,
		Publisher: pub,
		SkipPause: skipPause,
	})
	return r.Run(ctx)
}

// openStore builds the selected backend. The returned cleanup is always safe
// to call.
func openStore(ctx context.Context, sessionID uuid.UUID) (setup.SeederStore, func(), error) {
	switch playStore {
	case "memory":
		return engine.NewMemoryStore(), func() {}, nil
	case "postgres":
		url := config.DatabaseURL()
		if url == "" {
			return nil, nil, fmt.Errorf("--store postgres requires DATABASE_URL to be set")
		}
		pool, err := database.Connect(ctx, url)
		if err != nil {
			return nil, nil, err
		}
		if err := database.Bootstrap(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return database.NewGraphStore(pool, sessionID), pool.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q (memory or postgres)", playStore)
	}
}
