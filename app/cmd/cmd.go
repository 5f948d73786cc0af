package cmd

import (
	"fmt"

	"github.com/bobylevd/soccer-teams-bot/app/store"
)

// CommonOpts contains information that is common for all commands.
type CommonOpts struct {
	Version string
}

// Set sets the common options.
func (c *CommonOpts) Set(cc CommonOpts) {
	c.Version = cc.Version
}

// MatchOpts select the stored match an offline command works on.
type MatchOpts struct {
	StoreLocation string `long:"loc"   env:"LOCATION" description:"Store location" default:"soccer.db"`
	MatchID       int64  `long:"match" description:"Match ID" required:"true"`
}

func (o MatchOpts) service() (*store.Service, func(), error) {
	s, err := store.New(o.StoreLocation)
	if err != nil {
		return nil, nil, fmt.Errorf("init store: %w", err)
	}
	return &store.Service{Store: s}, func() { _ = s.Close() }, nil
}
