package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var (
	dataDir string

	configFile  string
	preset      string
	side        int
	density     float64
	dt          float64
	cutoff      float64
	velocityMul float64
	steps       int
	mode        string
	seed        int64
	workers     int
	detailedLog bool
	logEvery    int
	logLevel    string

	restart string

	outFile  string
	bins     int
	numRuns  int
	parallel int

	addr        string
	streamEvery int
	positions   bool
	waitClients int

	stepsPerFrame int
	benchSteps    int

	svgSize   int
	svgGrid   bool
	svgColor  string
	cutoffs   []float64
	tolerance float64
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "mdsim",
		Short:        "2D Lennard-Jones molecular dynamics",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".mdsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its energy history",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addSimFlags(runCmd)
	runCmd.Flags().StringVar(&restart, "restart", "", "continue from the final snapshot of a stored run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the energy history of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run metadata and energies as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "energy conservation, spectrum and structure of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&bins, "bins", 40, "histogram bins")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run with live terminal visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addSimFlags(liveCmd)
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 5, "steps advanced per frame")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "run and stream energetics to websocket clients on /ws",
		Args:  cobra.NoArgs,
		RunE:  serveStream,
	}
	addSimFlags(serveCmd)
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	serveCmd.Flags().IntVar(&streamEvery, "every", 1, "publish every n-th step")
	serveCmd.Flags().BoolVar(&positions, "positions", false, "include particle positions")
	serveCmd.Flags().IntVar(&waitClients, "wait-clients", 0, "wait for this many clients before starting")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "compare flat and cell-list stepping across system sizes",
		Args:  cobra.NoArgs,
		RunE:  benchModes,
	}
	addSimFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchSteps, "bench-steps", 20, "steps per measurement")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list preset configurations",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run several seeds concurrently",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addSimFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of seeds")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "runs in flight (0 = all)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [run_id]",
		Short: "render the final particle snapshot of a run as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotRun,
	}
	snapshotCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default <run_id>.svg)")
	snapshotCmd.Flags().IntVar(&svgSize, "size", 800, "image side in pixels")
	snapshotCmd.Flags().BoolVar(&svgGrid, "grid", false, "draw the cell grid")
	snapshotCmd.Flags().StringVar(&svgColor, "color", "potential", "color by potential, kinetic or none")

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "find the fastest cell-list cutoff that tracks the all-pairs energy",
		Args:  cobra.NoArgs,
		RunE:  tuneCutoff,
	}
	addSimFlags(tuneCmd)
	tuneCmd.Flags().Float64SliceVar(&cutoffs, "cutoffs", []float64{1.5, 2, 2.5, 3, 4, 5}, "candidate cutoffs")
	tuneCmd.Flags().Float64Var(&tolerance, "tolerance", 1e-3, "largest accepted relative energy deviation")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, analyzeCmd,
		liveCmd, serveCmd, benchCmd, presetsCmd, ensembleCmd, snapshotCmd, tuneCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func addSimFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (yaml, or ini/gcfg)")
	f.StringVar(&preset, "preset", "", "start from a preset configuration")
	f.IntVar(&side, "side", 20, "particles per lattice side")
	f.Float64Var(&density, "density", 0.7, "number density")
	f.Float64Var(&dt, "dt", 0.001, "time step")
	f.Float64Var(&cutoff, "cutoff", 5, "cell-list cutoff radius")
	f.Float64Var(&velocityMul, "velocity", 0.8, "initial velocity scale")
	f.IntVar(&steps, "steps", 1000, "number of steps")
	f.StringVar(&mode, "mode", "cells", "force evaluation: cells or flat")
	f.Int64Var(&seed, "seed", 0, "random seed (0 = time based)")
	f.IntVar(&workers, "workers", 1, "parallel force workers")
	f.BoolVar(&detailedLog, "detailed", false, "write the per-particle frame log")
	f.IntVar(&logEvery, "log-every", 100, "log and frame cadence in steps")
	f.StringVar(&logLevel, "log-level", "info", "debug, info, warn or error")
}
