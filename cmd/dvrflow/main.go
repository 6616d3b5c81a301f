package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/urfave/cli"
	"go.uber.org/zap"

	"dvrflow/internal/api"
	"dvrflow/internal/model"
	"dvrflow/internal/repository"
	redisrepo "dvrflow/internal/repository/redis"
	"dvrflow/internal/service"
	"dvrflow/internal/telemetry"
	"dvrflow/internal/tools"
	"dvrflow/internal/worker"
	"dvrflow/internal/workflow"
)

func main() {
	app := cli.NewApp()
	app.Name = "dvrflow"
	app.Usage = "transcode DVR recordings to H.264/MP4 and keep the backend metadata in step"
	app.ArgsUsage = "[jobid]"
	app.Flags = []cli.Flag{
		cli.IntFlag{
			Name:  "chanid",
			Usage: "channel id for manual operation",
		},
		cli.StringFlag{
			Name:  "starttime",
			Usage: "recording start time, encoded as " + model.BackendTimeLayout + " (UTC)",
		},
		cli.StringFlag{
			Name:  "verbose",
			Usage: "log level (debug, info, warn, error)",
		},
		cli.BoolFlag{
			Name:  "debug, d",
			Usage: "enable debug output",
		},
		cli.IntFlag{
			Name:  "quality",
			Value: 23,
			Usage: "encoder RF quality, lower is better (18-30 is normal)",
		},
		cli.StringFlag{
			Name:  "preset",
			Value: "veryfast",
			Usage: "encoder speed preset",
		},
		cli.BoolFlag{
			Name:   "flush-commskip",
			EnvVar: "DVRFLOW_FLUSH_COMMSKIP",
			Usage:  "remove commercial skip markers once the breaks are cut out",
		},
		cli.BoolFlag{
			Name:   "build-seektable",
			EnvVar: "DVRFLOW_BUILD_SEEKTABLE",
			Usage:  "rebuild the seek table for the new file",
		},
	}
	app.Before = applyVerbosity
	app.Action = runOnce
	app.Commands = []cli.Command{
		{
			Name:   "serve",
			Usage:  "run the job submission API with metrics",
			Action: runServer,
		},
		{
			Name:  "work",
			Usage: "run the queue worker pool",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "concurrency",
					Value: 1,
					Usage: "number of concurrent workflow runs",
				},
			},
			Action: runWorkers,
		},
	}

	if err := app.Run(os.Args); err != nil {
		telemetry.Logger.Error("dvrflow failed", zap.Error(err))
		os.Exit(1)
	}
}

func applyVerbosity(c *cli.Context) error {
	if level := c.String("verbose"); level != "" {
		if err := telemetry.SetLevel(level); err != nil {
			return fmt.Errorf("bad --verbose level %q", level)
		}
	}
	if c.Bool("debug") {
		telemetry.EnableDebug()
	}
	return nil
}

func optionsFromFlags(c *cli.Context) workflow.Options {
	opts := workflow.DefaultOptions()
	opts.Profile.Quality = c.GlobalInt("quality")
	opts.Profile.Preset = c.GlobalString("preset")
	opts.FlushCommSkip = c.GlobalBool("flush-commskip")
	opts.BuildSeekTable = c.GlobalBool("build-seektable")
	return opts
}

// refFromArgs validates the addressing mode: a single positional job id, or
// the --chanid/--starttime pair, never both.
func refFromArgs(c *cli.Context) (workflow.Ref, error) {
	var jobID int
	if arg := c.Args().First(); arg != "" {
		id, err := strconv.Atoi(arg)
		if err != nil {
			return workflow.Ref{}, fmt.Errorf("jobid must be an integer, got %q", arg)
		}
		jobID = id
	}

	chanID := c.Int("chanid")
	startTime := c.String("starttime")

	if jobID != 0 && (chanID != 0 || startTime != "") {
		cli.ShowAppHelp(c)
		return workflow.Ref{}, fmt.Errorf("jobid cannot be combined with --chanid or --starttime")
	}
	if jobID != 0 {
		return workflow.Ref{JobID: jobID}, nil
	}
	if chanID == 0 || startTime == "" {
		cli.ShowAppHelp(c)
		return workflow.Ref{}, fmt.Errorf("missing jobid argument, or --chanid and --starttime")
	}

	start, err := time.ParseInLocation(model.BackendTimeLayout, startTime, time.UTC)
	if err != nil {
		return workflow.Ref{}, fmt.Errorf("bad --starttime %q: %w", startTime, err)
	}
	return workflow.Ref{Key: &model.RecordingKey{ChanID: chanID, StartTime: start}}, nil
}

// runOnce is the default mode: drive one recording through the workflow.
func runOnce(c *cli.Context) error {
	ref, err := refFromArgs(c)
	if err != nil {
		return err
	}

	store, err := repository.NewDefaultStore()
	if err != nil {
		return err
	}
	defer store.Close()

	wf := workflow.New(store, tools.ExecRunner{}, nil, optionsFromFlags(c))
	outcome, err := wf.Run(context.Background(), ref)
	switch outcome {
	case workflow.Succeeded:
		return nil
	case workflow.Aborted:
		return cli.NewExitError("", 1)
	default:
		return cli.NewExitError(err.Error(), 1)
	}
}

func runServer(c *cli.Context) error {
	metrics, err := telemetry.NewDefaultMetricsClient()
	if err != nil {
		return err
	}
	queue, err := redisrepo.NewDefaultQueue()
	if err != nil {
		return err
	}
	defer queue.Close()

	svc := service.NewServices(metrics, nil, queue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry.Logger.Info("Starting application", zap.String("mode", "server"))
	return api.NewServer(svc).Start(ctx)
}

func runWorkers(c *cli.Context) error {
	metrics, err := telemetry.NewDefaultMetricsClient()
	if err != nil {
		return err
	}
	queue, err := redisrepo.NewDefaultQueue()
	if err != nil {
		return err
	}
	defer queue.Close()

	store, err := repository.NewDefaultStore()
	if err != nil {
		return err
	}
	defer store.Close()

	svc := service.NewServices(metrics, store, queue)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	telemetry.Logger.Info("Starting application",
		zap.String("mode", "worker"),
		zap.Int("concurrency", c.Int("concurrency")))
	workerSvc := worker.NewWorkerService(svc, c.Int("concurrency"), optionsFromFlags(c), nil)
	return workerSvc.Start(ctx)
}
