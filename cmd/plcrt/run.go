package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/san-kum/plcrt/internal/executor"
	"github.com/san-kum/plcrt/internal/tui"
)

func runProgram(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("running %s every %d ms (ctrl+c to stop)\n", cfg.Runtime.Program, cfg.Runtime.CyclePeriodMs)
	sum, err := s.run(ctx)
	if err != nil {
		return err
	}
	printSummary(sum)

	return storeRun(s, sum)
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	// the dashboard owns the terminal
	cfg.Logging.Console = false

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	feed := tui.NewFeed(s.prog, s.sched.Stats, 256)
	s.exec.AddObserver(feed)

	p := tea.NewProgram(tui.New(cfg.Runtime.Program, cfg.Runtime.CyclePeriodMs, s.exec, feed.Updates(), stop))

	type result struct {
		sum *executor.Summary
		err error
	}
	done := make(chan result, 1)
	go func() {
		sum, err := s.run(ctx)
		p.Send(tui.DoneMsg{Summary: sum, Err: err})
		done <- result{sum, err}
	}()

	if _, err := p.Run(); err != nil {
		stop()
		<-done
		return err
	}
	stop()
	res := <-done
	if res.err != nil {
		return res.err
	}
	printSummary(res.sum)
	if n := feed.Dropped(); n > 0 {
		fmt.Printf("dashboard skipped %d cycles\n", n)
	}

	return storeRun(s, res.sum)
}

func storeRun(s *session, sum *executor.Summary) error {
	id, err := s.store(sum)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	if id != "" {
		fmt.Printf("run saved: %s\n", id)
	}
	return nil
}

func printSummary(sum *executor.Summary) {
	st := sum.Stats
	minMs := st.MinCycleMs
	if st.CycleCount == 0 {
		minMs = 0
	}
	fmt.Println()
	fmt.Printf("cycles:       %d\n", st.CycleCount)
	fmt.Printf("cycle time:   avg %.3f ms  min %.3f ms  max %.3f ms\n", st.AvgCycleMs, minMs, st.MaxCycleMs)
	fmt.Printf("overruns:     %d (%.2f%%)\n", st.TimeoutCount, 100*st.OverrunRatio())
	fmt.Printf("step errors:  %d\n", sum.StepErrors)
	fmt.Printf("wait errors:  %d\n", sum.WaitErrors)
}
