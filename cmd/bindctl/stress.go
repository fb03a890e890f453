package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ygrebnov/bind"
	"github.com/ygrebnov/bind/host"
)

var stressFlags struct {
	workers int
	objects int
	policy  string
}

func init() {
	stressCmd.Flags().IntVar(&stressFlags.workers, "workers", 0, "number of concurrent runtimes")
	stressCmd.Flags().IntVar(&stressFlags.objects, "objects", 0, "transient objects per runtime")
	stressCmd.Flags().StringVar(&stressFlags.policy, "policy", "", "ownership policy (raw|shared)")
}

var stressCmd = &cobra.Command{
	Use:   "stress",
	Short: "Wrap and collect transient objects in concurrent runtimes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		sc := cfg.Stress
		if cmd.Flags().Changed("workers") {
			sc.Workers = stressFlags.workers
		}
		if cmd.Flags().Changed("objects") {
			sc.Objects = stressFlags.objects
		}
		if cmd.Flags().Changed("policy") {
			sc.Policy = stressFlags.policy
		}
		policy, err := readPolicy(sc.Policy)
		if err != nil {
			return err
		}
		if sc.Workers <= 0 || sc.Objects < 0 {
			return fmt.Errorf("invalid workers=%d objects=%d", sc.Workers, sc.Objects)
		}
		reports, err := runStress(cmd.Context(), sc.Workers, sc.Objects, policy)
		if err != nil {
			return err
		}
		return printStress(cmd.OutOrStdout(), reports, sc.Objects)
	},
}

func readPolicy(value string) (bind.Policy, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "raw":
		return bind.RawPointer, nil
	case "shared":
		return bind.SharedPointer, nil
	default:
		return 0, fmt.Errorf("invalid policy %q (expected raw|shared)", value)
	}
}

type stressReport struct {
	worker    int
	created   int64
	destroyed int64
	remaining int
	swept     int
	elapsed   time.Duration
}

// runStress drives one runtime per worker. Each runtime is confined to the
// goroutine that created it.
func runStress(ctx context.Context, workers, objects int, policy bind.Policy) ([]stressReport, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	reports := make([]stressReport, workers)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < workers; i++ {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			r, err := stressRuntime(i, objects, policy)
			if err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
			reports[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func stressRuntime(worker, objects int, policy bind.Policy) (stressReport, error) {
	start := time.Now()
	rt := host.New(host.WithName(fmt.Sprintf("stress-%d", worker)), host.WithLogger(logger.Named("host")))
	defer rt.Dispose()

	var count counter
	var wrapped func(*circle) error
	var live func() int
	switch policy {
	case bind.SharedPointer:
		c, err := bind.NewClass[circle, *bind.Shared[circle]](rt)
		if err != nil {
			return stressReport{}, err
		}
		wrapped = func(p *circle) error {
			s := bind.NewShared(p)
			defer s.Release()
			_, err := c.Wrap(s)
			return err
		}
		live = c.Count
	default:
		c, err := bind.NewClass[circle, *circle](rt)
		if err != nil {
			return stressReport{}, err
		}
		wrapped = func(p *circle) error {
			_, err := c.Wrap(p)
			return err
		}
		live = c.Count
	}

	for i := 0; i < objects; i++ {
		if err := wrapped(newCircle("", float64(i), &count)); err != nil {
			return stressReport{}, err
		}
	}
	st := rt.Collect()
	r := stressReport{
		worker:    worker,
		created:   count.created.Load(),
		destroyed: count.destroyed.Load(),
		remaining: live(),
		swept:     st.Swept,
		elapsed:   time.Since(start),
	}
	logger.Debug("stress worker finished",
		zap.Int("worker", worker),
		zap.Int64("destroyed", r.destroyed),
		zap.Duration("elapsed", r.elapsed))
	return r, nil
}

func printStress(w io.Writer, reports []stressReport, objects int) error {
	headerColor.Fprintln(w, "worker  created  destroyed  remaining  elapsed")
	failed := 0
	for _, r := range reports {
		fmt.Fprintf(w, "%6d %8d %10d %10d  %v\n", r.worker, r.created, r.destroyed, r.remaining, r.elapsed.Round(time.Microsecond))
		if r.destroyed != int64(objects) || r.remaining != 0 {
			failed++
		}
	}
	if failed > 0 {
		failColor.Fprintf(w, "%d of %d workers leaked objects\n", failed, len(reports))
		return fmt.Errorf("%d workers leaked objects", failed)
	}
	okColor.Fprintf(w, "%d workers destroyed %d objects each\n", len(reports), objects)
	return nil
}
