/*
Package flipper is a scheduled fetch-and-commit pipeline for domain-flipping research: on a fixed cadence it runs an analysis agent inside a git workspace and publishes whatever the agent changed as one commit.

It implements a strictly ordered three-stage pipeline, provision, agent, publish, guarded by a single run lock so overlapping triggers are skipped rather than queued.

# Concept

Flipper treats automation as a pipeline of stages over a long-lived git checkout (the workspace). The engine owns sequencing, locking, run records and archiving, while adapters own the outside world: the agent producing artifacts, the git publisher, the run store, and the driving surfaces (CLI, HTTP, MCP). This Hexagonal Architecture allows flipper to swap any stage: the built-in scout agent can yield to an arbitrary external command, the in-memory run history to redis, without touching the engine.

# Key Features

  - Diff-gated publishing: a pass that changes nothing commits nothing, and that is not an error.
  - Skip, never queue: one run lock per deployment; ticks and manual triggers that find it taken are dropped.
  - Explicit agent results: an agent that finishes without reporting what it produced fails the run.
  - Durable history: run records in a store, full reports in a browsable archive.

# Usage

Initialize the engine over an existing git checkout. By default it wires the built-in scout agent and a git publisher; every collaborator can be replaced with an option.

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/flipper"
	)

	func main() {
		// Initialize the engine over an existing git checkout
		eng, err := flipper.New("./workspace")
		if err != nil {
			log.Fatal(err)
		}

		// One manual pass: provision, agent, publish
		run, err := eng.Run(context.Background())
		if err != nil {
			log.Fatal(err)
		}
		log.Printf("run %s finished: %s", run.ID, run.Status)
	}

For the scheduled loop, use a Runner:

	runner := flipper.NewRunner()
	runner.Output = os.Stdout
	runner.Every = 6 * time.Hour
	if err := runner.Run(ctx, eng); err != nil {
		log.Fatal(err)
	}
*/
package flipper
