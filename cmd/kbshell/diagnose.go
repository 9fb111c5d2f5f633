package main

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// latency is the timing summary for one upstream.
type latency struct {
	Name     string
	Runs     int
	Failures int
	Total    time.Duration
	LastErr  error
}

func (l latency) average() time.Duration {
	ok := l.Runs - l.Failures
	if ok <= 0 {
		return 0
	}
	return l.Total / time.Duration(ok)
}

func measure(ctx context.Context, name string, runs int, fn func(context.Context) error) latency {
	res := latency{Name: name, Runs: runs}
	for i := 0; i < runs; i++ {
		start := time.Now()
		if err := fn(ctx); err != nil {
			res.Failures++
			res.LastErr = err
			continue
		}
		res.Total += time.Since(start)
	}
	return res
}

func newDiagnoseCmd(a *app) *cobra.Command {
	var runs int
	cmd := &cobra.Command{
		Use:   "diagnose",
		Short: "Measure latency to the knowledge-base backend and the ingestion functions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if runs < 1 {
				return errors.New("--runs must be at least 1")
			}
			docs, err := a.docsClient()
			if err != nil {
				return err
			}
			backendClient := a.backendClient()

			// Each worker records its own failures; neither returns an error.
			ctx := cmd.Context()
			var backendRes, ingestRes latency
			var wg sync.WaitGroup
			wg.Add(2)
			go func() {
				defer wg.Done()
				backendRes = measure(ctx, "backend "+backendClient.URL("health"), runs, func(ctx context.Context) error {
					st, err := backendClient.Health(ctx)
					if err != nil {
						return err
					}
					if !st.Healthy {
						if st.Error != "" {
							return errors.New(st.Error)
						}
						return errors.Errorf("status %d", st.Code)
					}
					return nil
				})
			}()
			go func() {
				defer wg.Done()
				ingestRes = measure(ctx, "ingestion "+a.cfg.AzureFunctionURL, runs, func(ctx context.Context) error {
					_, err := docs.ListIngestedData(ctx)
					return err
				})
			}()
			wg.Wait()

			printLatency(cmd.OutOrStdout(), backendRes)
			printLatency(cmd.OutOrStdout(), ingestRes)
			if backendRes.Failures == runs || ingestRes.Failures == runs {
				return errors.New("at least one upstream is unreachable")
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&runs, "runs", 5, "requests per upstream")
	return cmd
}

func printLatency(w io.Writer, l latency) {
	mark := processedColor.Sprint("ok")
	if l.Failures > 0 {
		mark = failedColor.Sprintf("%d/%d failed", l.Failures, l.Runs)
	}
	fmt.Fprintf(w, "%s: %s, average %s over %d runs\n", l.Name, mark, l.average().Round(time.Millisecond), l.Runs-l.Failures)
	if l.LastErr != nil {
		fmt.Fprintf(w, "  last error: %v\n", l.LastErr)
	}
}
