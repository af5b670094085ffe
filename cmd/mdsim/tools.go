package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/export"
	"github.com/san-kum/mdsim/internal/optim"
	"github.com/san-kum/mdsim/internal/storage"
)

func snapshotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	store := storage.New(dataDir)

	meta, err := store.Load(runID)
	if err != nil {
		return err
	}
	ps, err := store.LoadParticles(runID)
	if err != nil {
		return err
	}

	path := outFile
	if path == "" {
		path = runID + ".svg"
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	opts := export.SVGOptions{Size: svgSize}
	if svgColor != "none" {
		opts.ColorBy = svgColor
	}
	if svgGrid {
		opts.CellSide = meta.CellSide
	}
	if err := export.SnapshotSVG(f, ps, meta.BoxWidth, opts); err != nil {
		return err
	}

	fmt.Printf("wrote %d particles to %s\n", len(ps), path)
	return nil
}

func tuneCutoff(cmd *cobra.Command, args []string) error {
	base := config.DefaultConfig()
	base.Steps = 200
	cfg, err := resolveConfig(cmd, base)
	if err != nil {
		return err
	}

	search := optim.NewCutoffSearch(cutoffs, tolerance)
	search.SetLogger(newLogger(cfg))

	fmt.Printf("tuning %d particles over %d steps against the all-pairs run\n\n",
		cfg.NumParticles(), cfg.Steps)
	trials, best, err := search.Search(cmd.Context(), cfg)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CUTOFF\tCELLS\tDEVIATION\tMS/STEP")
	for _, t := range trials {
		fmt.Fprintf(w, "%g\t%dx%d\t%.3e\t%.3f\n", t.CutOff, t.CellSide, t.CellSide, t.Deviation, t.StepMillis)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}

	if errors.Is(err, optim.ErrNoCandidate) {
		fmt.Printf("\nno cutoff within %.1e\n", tolerance)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Printf("\nbest cutoff: %g (%dx%d cells, %.3f ms/step)\n", best.CutOff, best.CellSide, best.CellSide, best.StepMillis)
	return nil
}
