package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"dvrflow/internal/repository"
	"dvrflow/internal/telemetry"
	"dvrflow/internal/undelete"
)

func main() {
	app := cli.NewApp()
	app.Name = "undelete"
	app.Usage = "browse and restore soft-deleted recordings"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:   "backend",
			Value:  "localhost:6543",
			EnvVar: "DVRFLOW_BACKEND",
			Usage:  "backend control port address",
		},
		cli.StringFlag{
			Name:  "title, t",
			Usage: "limit recordings to titles matching this pattern",
		},
		cli.BoolFlag{
			Name:  "force, f",
			Usage: "non-interactive mode, answer 'yes' to all questions",
		},
		cli.StringFlag{
			Name:  "verbose",
			Usage: "log level (debug, info, warn, error)",
		},
	}
	app.Action = run

	if err := app.Run(os.Args); err != nil {
		telemetry.Logger.Error("undelete failed", zap.Error(err))
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	if level := c.String("verbose"); level != "" {
		if err := telemetry.SetLevel(level); err != nil {
			return fmt.Errorf("bad --verbose level %q", level)
		}
	}

	store, err := repository.NewDefaultStore()
	if err != nil {
		return err
	}
	defer store.Close()

	recs, err := store.DeletedRecordings(context.Background())
	if err != nil {
		return err
	}
	recs, err = undelete.FilterByTitle(recs, c.String("title"))
	if err != nil {
		return err
	}
	if len(recs) == 0 {
		fmt.Println("no matching recordings found")
		return nil
	}

	client, err := undelete.Dial(c.String("backend"))
	if err != nil {
		return err
	}
	defer client.Close()

	session := undelete.NewSession(client, recs, os.Stdin, os.Stdout)
	if c.Bool("force") {
		return session.UndeleteAll()
	}
	return session.Run()
}
