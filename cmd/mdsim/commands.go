package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mdsim/internal/analysis"
	"github.com/san-kum/mdsim/internal/config"
	"github.com/san-kum/mdsim/internal/logging"
	"github.com/san-kum/mdsim/internal/md"
	"github.com/san-kum/mdsim/internal/metrics"
	"github.com/san-kum/mdsim/internal/sim"
	"github.com/san-kum/mdsim/internal/storage"
	"github.com/san-kum/mdsim/internal/stream"
	"github.com/san-kum/mdsim/internal/viz"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	base := config.DefaultConfig()
	var opts []sim.Option
	var saveOpts storage.SaveOptions

	if restart != "" {
		meta, err := st.Load(restart)
		if err != nil {
			return err
		}
		ps, err := st.LoadParticles(restart)
		if err != nil {
			return err
		}
		if meta.Config != nil {
			base = meta.Config
		}
		opts = append(opts, sim.WithParticles(ps, meta.EndStep()))
		saveOpts = storage.SaveOptions{ParentID: restart, StartStep: meta.EndStep()}
	}

	cfg, err := resolveConfig(cmd, base)
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	opts = append(opts, sim.WithLogger(log))

	s, err := sim.New(cfg, opts...)
	if err != nil {
		return err
	}
	for _, m := range sim.DefaultMetrics() {
		s.AddMetric(m)
	}

	runID, err := st.Create(cfg.Mode)
	if err != nil {
		return err
	}

	if cfg.DetailedLog {
		header := storage.FrameHeader{
			Side:     cfg.ParticlesSide,
			Density:  cfg.Density,
			Dt:       cfg.Dt,
			BoxWidth: s.BoxWidth(),
		}
		frames, err := st.OpenFrameLog(runID, header, cfg.LogEvery)
		if err != nil {
			return err
		}
		defer frames.Close()
		s.AddObserver(frames)
	}

	fmt.Printf("running %d particles, box width %.4f, %s mode...\n",
		len(s.Particles()), s.BoxWidth(), s.Mode())

	result, runErr := s.Run(cmd.Context())
	if result == nil {
		return runErr
	}
	if err := st.Save(runID, cfg, result, saveOpts); err != nil {
		return err
	}

	fmt.Printf("completed %d steps in %v\n", result.Steps, result.Elapsed.Round(time.Millisecond))
	fmt.Printf("run id: %s\n", runID)
	printSummary(result.Summary)
	fmt.Println("\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Printf("  %s: %.6g\n", name, val)
	}

	return runErr
}

func printSummary(s metrics.Summary) {
	fmt.Printf("final: kinetic %.6f potential %.6f total %.6f temperature %.3f\n",
		s.Final.Kinetic, s.Final.Potential, s.Final.Total, s.Final.Temperature)
	fmt.Printf("mean energy: %.6f (relative deviation %.3e, max drift %.3e)\n",
		s.MeanEnergy, s.RelativeDeviation, s.MaxDrift)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tMODE\tN\tSTEPS\tMEAN E\tREL DEV\tPARENT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d-%d\t%.5f\t%.2e\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Mode,
			run.Particles,
			run.StartStep, run.EndStep(),
			run.Summary.MeanEnergy,
			run.Summary.RelativeDeviation,
			run.ParentID,
		)
	}

	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadEnergies(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d, mode: %s\n", meta.Particles, meta.Mode)
	fmt.Printf("samples: %d\n\n", len(samples))

	columns := []struct {
		caption string
		value   func(sim.Sample) float64
	}{
		{"kinetic energy", func(s sim.Sample) float64 { return s.Kinetic }},
		{"potential energy", func(s sim.Sample) float64 { return s.Potential }},
		{"total energy", func(s sim.Sample) float64 { return s.Total }},
		{"temperature", func(s sim.Sample) float64 { return s.Temperature }},
	}

	for _, col := range columns {
		data := make([]float64, len(samples))
		for i, s := range samples {
			data[i] = col.value(s)
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)

	if outFile == "" {
		return st.ExportJSON(os.Stdout, args[0])
	}

	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := st.ExportJSON(f, args[0]); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], outFile)
	return f.Close()
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	meta, samples, err := loadRun(runID)
	if err != nil {
		return err
	}

	total := make([]float64, len(samples))
	kinetic := make([]float64, len(samples))
	for i, s := range samples {
		total[i] = s.Total
		kinetic[i] = s.Kinetic
	}

	fmt.Printf("analysis: %s\n\n", meta.ID)
	fmt.Printf("mean total energy:  %.6f\n", metrics.Mean(total))
	fmt.Printf("relative deviation: %.3e\n", metrics.RelativeDeviation(total))
	fmt.Printf("max drift:          %.3e\n\n", meta.Summary.MaxDrift)

	dtSample := 0.0
	if meta.Config != nil {
		dtSample = meta.Config.Dt
	}
	if freq, err := analysis.DominantFrequency(kinetic, dtSample); err == nil {
		ps := analysis.PowerSpectrum(kinetic)
		graph := asciigraph.Plot(ps[:max(len(ps)/4, 2)],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum (kinetic energy)"),
		)
		fmt.Println(graph)
		fmt.Printf("\ndominant frequency: %.3f\n", freq)
		if freq > 0 {
			fmt.Printf("period: %.4f\n\n", 1.0/freq)
		}
	} else {
		fmt.Printf("spectrum skipped: %v\n\n", err)
	}

	ps, err := storage.New(dataDir).LoadParticles(runID)
	if err != nil {
		return err
	}

	hist := analysis.SpeedHistogram(ps, bins)
	counts := make([]float64, len(hist.Counts))
	for i, c := range hist.Counts {
		counts[i] = float64(c)
	}
	if len(counts) > 1 {
		fmt.Println(asciigraph.Plot(counts,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("speed distribution (0 to %.3f)", hist.Max)),
		))
		fmt.Println()
	}

	box := md.Box{Width: meta.BoxWidth}
	g := analysis.RadialDistribution(ps, box, meta.BoxWidth/2, bins)
	if len(g) > 1 {
		fmt.Println(asciigraph.Plot(g,
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.Caption(fmt.Sprintf("g(r), r up to %.3f", meta.BoxWidth/2)),
		))
		peak := 0
		for i := range g {
			if g[i] > g[peak] {
				peak = i
			}
		}
		dr := meta.BoxWidth / 2 / float64(len(g))
		fmt.Printf("\nfirst shell peak near r = %.3f\n", (float64(peak)+0.5)*dr)
	}

	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, config.DefaultConfig())
	if err != nil {
		return err
	}

	// log lines would tear the alternate screen
	s, err := sim.New(cfg, sim.WithLogger(logging.NewNoOp()))
	if err != nil {
		return err
	}
	return viz.Run(s, stepsPerFrame)
}

func serveStream(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, config.DefaultConfig())
	if err != nil {
		return err
	}
	log := newLogger(cfg)
	ctx := cmd.Context()

	s, err := sim.New(cfg, sim.WithLogger(log))
	if err != nil {
		return err
	}

	b := stream.NewBroadcaster(log)
	defer b.Close()

	mux := http.NewServeMux()
	mux.Handle("/ws", b)
	srv := &http.Server{Addr: addr, Handler: mux}

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Infof("streaming on ws://%s/ws", addr)
	if err := waitForClients(ctx, b, waitClients, serveErr); err != nil {
		return err
	}

	s.AddObserver(b.Observer(ctx, streamEvery, positions))
	result, err := s.Run(ctx)
	if result != nil {
		printSummary(result.Summary)
	}
	return err
}

func waitForClients(ctx context.Context, b *stream.Broadcaster, n int, serveErr <-chan error) error {
	if n <= 0 {
		return nil
	}
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for b.Clients() < n {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err, ok := <-serveErr:
			if ok {
				return err
			}
			return errors.New("server stopped")
		case <-ticker.C:
		}
	}
	return nil
}

func benchModes(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, config.DefaultConfig())
	if err != nil {
		return err
	}

	sides := []int{10, 20, 40, 80}
	if cmd.Flags().Changed("side") || preset != "" || configFile != "" {
		sides = []int{cfg.ParticlesSide}
	}

	fmt.Printf("benchmarking %d steps per measurement, cutoff %g, %d workers\n\n",
		benchSteps, cfg.RadiusCutOff, max(cfg.Workers, 1))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "N\tMODE\tCELLS\tTIME\tMS/STEP\tSTEPS/SEC")

	for _, n := range sides {
		for _, m := range []string{config.ModeFlat, config.ModeCells} {
			c := cfg.Clone()
			c.ParticlesSide = n
			c.Mode = m
			c.Steps = benchSteps
			if c.Seed == 0 {
				c.Seed = 42
			}

			s, err := sim.New(c)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := s.Run(cmd.Context())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			cells := "-"
			if result.CellSide > 0 {
				cells = fmt.Sprintf("%dx%d", result.CellSide, result.CellSide)
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%v\t%.3f\t%.0f\n",
				n*n, m, cells, elapsed.Round(time.Millisecond),
				float64(elapsed.Microseconds())/1000/float64(result.Steps),
				float64(result.Steps)/elapsed.Seconds())
		}
	}

	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tN\tDENSITY\tDT\tCUTOFF\tVELOCITY\tSTEPS\tMODE\tWORKERS")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%g\t%g\t%d\t%s\t%d\n",
			name, p.NumParticles(), p.Density, p.Dt, p.RadiusCutOff,
			p.VelocityMul, p.Steps, p.Mode, p.Workers)
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd, config.DefaultConfig())
	if err != nil {
		return err
	}
	if numRuns < 1 {
		return fmt.Errorf("runs must be positive, got %d", numRuns)
	}

	e := sim.NewEnsemble(cfg, numRuns, cfg.Seed)
	e.SetLimit(parallel)
	e.SetLogger(newLogger(cfg))

	fmt.Printf("running %d seeds of %d particles...\n", numRuns, cfg.NumParticles())
	start := time.Now()
	results, err := e.Run(cmd.Context())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tMEAN E\tREL DEV\tMAX DRIFT\tMEAN T")
	means := make([]float64, len(results))
	for i, r := range results {
		means[i] = r.Summary.MeanEnergy
		fmt.Fprintf(w, "%d\t%.6f\t%.3e\t%.3e\t%.3f\n",
			r.Seed, r.Summary.MeanEnergy, r.Summary.RelativeDeviation,
			r.Summary.MaxDrift, r.Summary.MeanTemperature)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean := metrics.Mean(means)
	variance := 0.0
	for _, m := range means {
		variance += (m - mean) * (m - mean)
	}
	fmt.Printf("\nensemble mean energy %.6f ± %.6f over %d runs (%v)\n",
		mean, math.Sqrt(variance/float64(len(means))), len(means),
		time.Since(start).Round(time.Millisecond))
	return nil
}
