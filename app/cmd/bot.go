package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/bobylevd/soccer-teams-bot/app/balance"
	"github.com/bobylevd/soccer-teams-bot/app/event"
	"github.com/bobylevd/soccer-teams-bot/app/store"
)

// Bot is a command to run discord bot.
type Bot struct {
	Token          string        `long:"token"    env:"TOKEN"           description:"Discord bot token"`
	AdminIDs       []string      `long:"admin-id" env:"ADMIN_IDS"       description:"Admin discords IDs" env-delim:","`
	StoreLocation  string        `long:"loc"      env:"LOCATION"        description:"Store location" default:"soccer.db"`
	HandlerTimeout time.Duration `long:"timeout"  env:"HANDLER_TIMEOUT" description:"Command handler timeout" default:"5s"`

	CommonOpts
}

// Execute runs the command.
func (b Bot) Execute([]string) error {
	s, err := store.New(b.StoreLocation)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer s.Close()

	disc := &event.Discord{
		Token:          b.Token,
		AdminIDs:       b.AdminIDs,
		HandlerTimeout: b.HandlerTimeout,
		Service:        &store.Service{Store: s, Balancer: balance.New()},
	}

	ctx, cancel := context.WithCancelCause(context.Background())
	go func() { // catch signal and invoke graceful termination
		stop := make(chan os.Signal, 1)
		signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
		sig := <-stop
		log.Printf("[WARN] caught signal: %s", sig)
		cancel(fmt.Errorf("caught signal: %s", sig))
	}()

	ewg, ctx := errgroup.WithContext(ctx)
	ewg.Go(func() error {
		log.Printf("[INFO] starting bot %s", b.Version)
		return disc.Run(ctx)
	})
	ewg.Go(func() error {
		<-ctx.Done()
		log.Printf("[INFO] stopping bot")
		return nil
	})

	if err := ewg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
