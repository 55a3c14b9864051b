// Copyright 2020-2026 The streamIO Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/akzj/refobj/pkg/leak"
	"github.com/akzj/refobj/pkg/listenutils"
	"github.com/akzj/refobj/pkg/ref"
	"github.com/akzj/refobj/pkg/refmetrics"
	"github.com/akzj/refobj/pkg/stress"
	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rodaine/table"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func init() {
	log.SetOutput(os.Stderr)
}

type runFunc func(opts stress.Options) (stress.Report, error)

func optionsFromFlags(c *cli.Context, observer ref.Observer) stress.Options {
	opts := stress.DefaultOptions().
		WithCtx(c.Context).
		WithWorkers(c.Int("workers")).
		WithIterations(c.Int("iterations")).
		WithInert(c.Bool("inert")).
		WithObserver(observer)
	if chunk := c.Int("chunk"); chunk > 0 {
		opts = opts.WithChunkSize(chunk)
	}
	return opts
}

func runWithObservers(c *cli.Context, run runFunc) error {
	tracker := leak.NewTracker()
	collector := refmetrics.NewCollector("refobj")

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()
	served := make(chan error, 1)
	if addr := c.String("metrics-addr"); addr != "" {
		registry := prometheus.NewRegistry()
		registry.MustRegister(collector)
		listener, err := listenutils.Listen(addr, nil)
		if err != nil {
			return err
		}
		log.WithField("addr", listener.Addr().String()).Info("serving metrics")
		go func() {
			served <- listenutils.Serve(ctx, listener,
				promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		}()
	} else {
		served <- nil
	}

	report, err := run(optionsFromFlags(c, ref.MultiObserver(collector, tracker)))
	printReport(report, tracker)
	if err != nil {
		return err
	}
	if c.Bool("hold") {
		log.Info("holding, interrupt to exit")
		<-c.Context.Done()
	}
	cancel()
	return <-served
}

func printReport(report stress.Report, tracker *leak.Tracker) {
	headerFmt := color.New(color.FgGreen, color.Underline).SprintfFunc()
	columnFmt := color.New(color.FgYellow).SprintfFunc()

	tbl := table.New("run", "kind", "workers", "iterations",
		"retains", "releases", "destroyed", "final", "bytes", "elapsed")
	tbl.WithHeaderFormatter(headerFmt).WithFirstColumnFormatter(columnFmt)
	tbl.AddRow(report.RunID, report.Kind, report.Workers, report.Iterations,
		report.Retains, report.Releases, report.Destroyed, report.FinalCount,
		report.Bytes, report.Elapsed.Round(time.Microsecond))
	tbl.Print()

	live := tracker.Live()
	if len(live) == 0 && tracker.Faults() == 0 {
		return
	}
	fmt.Println()
	leaks := table.New("id", "kind", "age")
	leaks.WithHeaderFormatter(color.New(color.FgRed, color.Underline).SprintfFunc())
	for _, record := range live {
		leaks.AddRow(record.ID, record.Kind, time.Since(record.Created).Round(time.Millisecond))
	}
	leaks.Print()
	fmt.Printf("faults: %d\n", tracker.Faults())
}

func main() {
	workerFlags := []cli.Flag{
		&cli.IntFlag{
			Name:    "workers",
			Aliases: []string{"w"},
			Usage:   "concurrent goroutines",
			Value:   stress.DefaultOptions().Workers,
		},
		&cli.IntFlag{
			Name:    "iterations",
			Aliases: []string{"n"},
			Usage:   "references taken per worker",
			Value:   stress.DefaultOptions().Iterations,
		},
	}
	app := cli.App{
		Name:                 "refstress",
		Usage:                "stress reference counted objects",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "logrus level",
				Value: log.InfoLevel.String(),
			},
			&cli.StringFlag{
				Name:  "metrics-addr",
				Usage: "serve prometheus metrics on host:port",
			},
			&cli.BoolFlag{
				Name:  "hold",
				Usage: "keep serving metrics after the run until interrupted",
			},
		},
		Before: func(c *cli.Context) error {
			level, err := log.ParseLevel(c.String("log-level"))
			if err != nil {
				return err
			}
			log.SetLevel(level)
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:    "object",
				Aliases: []string{"o"},
				Usage:   "retain and release one shared object",
				Flags: append([]cli.Flag{
					&cli.BoolFlag{
						Name:  "inert",
						Usage: "use an inert object that is never destroyed",
					},
				}, workerFlags...),
				Action: func(c *cli.Context) error {
					return runWithObservers(c, stress.Run)
				},
			},
			{
				Name:    "blob",
				Aliases: []string{"b"},
				Usage:   "cut sub-blobs out of a mapped file",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "file",
						Aliases:  []string{"f"},
						Usage:    "file to map",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "chunk",
						Usage: "sub-blob size in bytes",
						Value: stress.DefaultOptions().ChunkSize,
					},
				}, workerFlags...),
				Action: func(c *cli.Context) error {
					path := c.String("file")
					return runWithObservers(c, func(opts stress.Options) (stress.Report, error) {
						return stress.RunBlob(path, opts)
					})
				},
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Println(strings.Repeat("-", 100))
		fmt.Println(err.Error())
		fmt.Println(strings.Repeat("-", 100))
		stop()
		os.Exit(1)
	}
}
