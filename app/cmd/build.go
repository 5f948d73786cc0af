package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/bobylevd/soccer-teams-bot/app/event"
)

// Build is a command to build balanced teams for a match without the bot.
type Build struct {
	MatchOpts
	CommonOpts

	out io.Writer
}

// Execute runs the command.
func (b Build) Execute([]string) error {
	svc, closeFn, err := b.service()
	if err != nil {
		return err
	}
	defer closeFn()

	sh, err := svc.BuildTeams(context.Background(), b.MatchID)
	if err != nil {
		return fmt.Errorf("build teams for match %d: %w", b.MatchID, err)
	}

	_, err = fmt.Fprintln(writerOrStdout(b.out), event.RenderSheet(sh))
	return err
}

// Teams is a command to print the saved team sheet of a match.
type Teams struct {
	MatchOpts
	CommonOpts

	out io.Writer
}

// Execute runs the command.
func (t Teams) Execute([]string) error {
	svc, closeFn, err := t.service()
	if err != nil {
		return err
	}
	defer closeFn()

	sh, err := svc.Sheet(context.Background(), t.MatchID)
	if err != nil {
		return fmt.Errorf("get team sheet of match %d: %w", t.MatchID, err)
	}

	_, err = fmt.Fprintln(writerOrStdout(t.out), event.RenderSheet(sh))
	return err
}

func writerOrStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}
