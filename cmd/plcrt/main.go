package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/san-kum/plcrt/internal/config"
	"github.com/san-kum/plcrt/internal/program"
)

var (
	dataDir    string
	configFile string
	preset     string
	envFile    string
	periodMs   int
	maxCycles  uint64
	cpu        int
	save       bool

	channel string

	kpGrid      string
	kiGrid      string
	kdGrid      string
	tuneCycles  int
	writeConfig string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "plcrt",
		Short:         "cyclic soft real-time control runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".plcrt", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with PLCRT_* overrides")

	runCmd := &cobra.Command{
		Use:   "run [program]",
		Short: "run a program under the cyclic scheduler",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runProgram,
	}
	addRuntimeFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [program]",
		Short: "run a program with the live dashboard",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRuntimeFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot cycle timing and program samples of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&channel, "channel", "", "plot only this column")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "cycle stability and control quality report",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id] [file]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(2),
		RunE:  exportRun,
	}

	tuneCmd := &cobra.Command{
		Use:   "tune",
		Short: "grid search PID gains for pid_temperature offline",
		RunE:  tuneGains,
	}
	tuneCmd.Flags().StringVar(&kpGrid, "kp", "0.5,1,2,5", "kp candidates")
	tuneCmd.Flags().StringVar(&kiGrid, "ki", "0.1,0.5,1", "ki candidates")
	tuneCmd.Flags().StringVar(&kdGrid, "kd", "0,0.1,0.5", "kd candidates")
	tuneCmd.Flags().IntVar(&tuneCycles, "steps", 600, "cycles simulated per candidate")
	tuneCmd.Flags().StringVar(&writeConfig, "write", "", "save the config with the best gains to this file")

	programsCmd := &cobra.Command{
		Use:   "programs",
		Short: "list built-in programs",
		Run: func(cmd *cobra.Command, args []string) {
			reg := program.NewRegistry()
			for _, name := range reg.List() {
				fmt.Printf("  %-16s %s\n", name, reg.Describe(name))
			}
		},
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list configuration presets",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-8s %4d ms  threshold %d%%  cpu %d\n",
					name, p.Runtime.CyclePeriodMs, p.Runtime.TimeoutThresholdPercent, p.Performance.CPUAffinity)
			}
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		RunE:  showConfig,
	}
	configCmd.Flags().StringVar(&writeConfig, "write", "", "also save it to this file")

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, analyzeCmd, exportCmd, tuneCmd, programsCmd, presetsCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRuntimeFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&periodMs, "period", config.DefaultCyclePeriodMs, "cycle period in ms")
	cmd.Flags().Uint64Var(&maxCycles, "cycles", 0, "stop after this many cycles (0 runs until interrupted)")
	cmd.Flags().IntVar(&cpu, "cpu", config.DefaultCPUAffinity, "pin the loop to this core (-1 leaves it unpinned)")
	cmd.Flags().BoolVar(&save, "save", true, "store the run under the data directory")
}
