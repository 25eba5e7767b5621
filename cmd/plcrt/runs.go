package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/plcrt/internal/analysis"
	"github.com/san-kum/plcrt/internal/storage"
)

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
	fmt.Fprintln(w, "ID\tPROGRAM\tTIME\tPERIOD\tCYCLES\tOVERRUNS\tAVG")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%dms\t%d\t%.0f\t%.3fms\n",
			run.ID,
			run.Program,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.PeriodMs,
			run.Cycles,
			run.Stats["timeout_count"],
			run.Stats["avg_cycle_ms"],
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	cycles, err := st.LoadCycles(args[0])
	if err != nil {
		return err
	}
	if len(cycles) == 0 {
		return fmt.Errorf("run %s has no cycles", args[0])
	}

	fmt.Printf("\n  %s  %d cycles @ %d ms\n\n", meta.Program, len(cycles), meta.PeriodMs)

	columns := []string{"elapsed_ms", "interval_ms"}
	columns = append(columns, sampleNames(cycles)...)
	if channel != "" {
		columns = []string{channel}
	}

	for _, col := range columns {
		data := storage.Series(cycles, col)
		if col == "interval_ms" && len(data) > 1 {
			data = data[1:]
		}
		graph := asciigraph.Plot(downsample(data, 400),
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(col),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	cycles, err := st.LoadCycles(args[0])
	if err != nil {
		return err
	}
	if len(cycles) < 2 {
		return fmt.Errorf("run %s needs at least 2 cycles", args[0])
	}

	// the first cycle has no predecessor
	intervals := storage.Series(cycles, "interval_ms")[1:]
	target := float64(meta.PeriodMs)

	r, err := analysis.CycleStability(intervals, target)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("cycle stability")
	fmt.Printf("  target:      %.2f ms  (±%.2f ms)\n", r.TargetMs, r.ToleranceMs)
	fmt.Printf("  intervals:   %d\n", r.Count)
	fmt.Printf("  mean:        %.3f ms\n", r.Mean)
	fmt.Printf("  median:      %.3f ms\n", r.Median)
	fmt.Printf("  stddev:      %.3f ms\n", r.StdDev)
	fmt.Printf("  min/max:     %.3f / %.3f ms\n", r.Min, r.Max)
	fmt.Printf("  in range:    %d (%.2f%%)\n", r.WithinTolerance, r.PercentWithin)
	fmt.Printf("  max dev:     %.3f ms (%.2f%%)\n", r.MaxDeviation, r.MaxDeviationPercent)

	sampleRate := 1000 / target
	freq, mag := analysis.DominantFrequency(intervals, sampleRate)
	fmt.Printf("  jitter peak: %.4f Hz (magnitude %.3f)\n", freq, mag)

	if r.Passed() {
		fmt.Printf("  PASS: at least %.0f%% of cycles within ±%.0f%%\n", analysis.PassPercent, analysis.TolerancePercent)
	} else {
		fmt.Printf("  FAIL: %.2f%% of cycles within ±%.0f%% (need %.0f%%)\n", r.PercentWithin, analysis.TolerancePercent, analysis.PassPercent)
	}

	samples := make([]map[string]float64, len(cycles))
	for i, c := range cycles {
		samples[i] = c.Samples
	}
	names := sampleNames(cycles)
	var metrics []analysis.Metric
	if contains(names, "error") {
		metrics = append(metrics, analysis.NewIAE("error"))
	}
	if contains(names, "output") {
		metrics = append(metrics, analysis.NewControlEffort("output"))
	}
	if len(metrics) > 0 {
		vals := analysis.Evaluate(samples, target/1000, metrics...)
		fmt.Println()
		fmt.Println("control quality")
		for _, m := range metrics {
			fmt.Printf("  %-15s %.4f\n", m.Name()+":", vals[m.Name()])
		}
	}
	fmt.Println()

	if !r.Passed() {
		os.Exit(2)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if err := st.ExportJSON(args[0], args[1]); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", args[0], args[1])
	return nil
}

func sampleNames(cycles []storage.Cycle) []string {
	seen := make(map[string]struct{})
	for _, c := range cycles {
		for k := range c.Samples {
			seen[k] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// downsample keeps every nth point so the plot stays readable.
func downsample(data []float64, limit int) []float64 {
	if len(data) <= limit {
		return data
	}
	step := (len(data) + limit - 1) / limit
	out := make([]float64, 0, limit)
	for i := 0; i < len(data); i += step {
		out = append(out, data[i])
	}
	return out
}
