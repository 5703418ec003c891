package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"runtime/pprof"
	"sort"
	"time"

	"github.com/delaneyj/copysignals/metrics"
	"github.com/delaneyj/copysignals/reactive"
	"github.com/delaneyj/copysignals/scope"
	"github.com/jamiealquiza/tachymeter"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/cli/v3"
)

const (
	maxWidthKey  = "max-width"
	maxHeightKey = "max-height"
	itersKey     = "iters"
	profileKey   = "cpuprofile"
	metricsKey   = "metrics"
)

func main() {
	cmd := &cli.Command{
		Name:  "benchmark",
		Usage: "Measure write propagation through selector chains and scope fan-out",
		Flags: []cli.Flag{
			&cli.UintFlag{
				Name:  maxWidthKey,
				Usage: "Largest number of chains, sizes grow by 10x from 1",
				Value: 100,
			},
			&cli.UintFlag{
				Name:  maxHeightKey,
				Usage: "Largest chain length, sizes grow by 10x from 1",
				Value: 100,
			},
			&cli.UintFlag{
				Name:  itersKey,
				Usage: "Writes per configuration",
				Value: 100,
			},
			&cli.StringFlag{
				Name:  profileKey,
				Usage: "Write a CPU profile here, empty to disable",
				Value: "default.pgo",
			},
			&cli.BoolFlag{
				Name:  metricsKey,
				Usage: "Record runtime metrics and print them at the end",
			},
		},
		Action: run,
	}
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	if path := cmd.String(profileKey); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			return err
		}
		defer pprof.StopCPUProfile()
	}

	b := &bench{
		ww:    sizes(int(cmd.Uint(maxWidthKey))),
		hh:    sizes(int(cmd.Uint(maxHeightKey))),
		iters: int(cmd.Uint(itersKey)),
	}
	if cmd.Bool(metricsKey) {
		b.registry = prometheus.NewRegistry()
		b.recorder = metrics.NewPrometheus(metrics.WithRegistry(b.registry))
	}

	log.Printf("warming up")
	b.propagate(false)

	b.propagate(true)
	b.fanout(true)

	if b.registry != nil {
		return b.renderMetrics()
	}
	return nil
}

// sizes returns 1, 10, 100, ... up to limit.
func sizes(limit int) []int {
	var out []int
	for n := 1; n <= limit; n *= 10 {
		out = append(out, n)
	}
	return out
}

type bench struct {
	ww, hh   []int
	iters    int
	registry *prometheus.Registry
	recorder *metrics.Prometheus
}

func (b *bench) newTree() *scope.Tree {
	if b.recorder == nil {
		return scope.NewTree()
	}
	return scope.NewTree(reactive.WithMetrics(b.recorder))
}

func newTable(title string) table.Writer {
	tbl := table.NewWriter()
	tbl.SetTitle(title)
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"benchmark", "avg", "min", "p75", "p99", "max"})
	return tbl
}

func appendTimes(tbl table.Writer, name string, tach *tachymeter.Tachymeter) {
	calc := tach.Calc()
	tbl.AppendRows([]table.Row{
		{
			name,
			calc.Time.Avg,
			calc.Time.Min,
			calc.Time.P75,
			calc.Time.P99,
			calc.Time.Max,
		},
	})
}

// propagate builds w chains of h selectors over one source, each ending in an
// effect, and times writes to the source.
func (b *bench) propagate(shouldRender bool) {
	tbl := newTable("Selector chains")

	for _, w := range b.ww {
		for _, h := range b.hh {
			tach := tachymeter.New(&tachymeter.Config{Size: b.iters})

			tree := b.newTree()
			rt := tree.Runtime()
			src := reactive.Signal(rt, 1)
			root := tree.Mount("propagate", func(s *scope.Scope) {
				for i := 0; i < w; i++ {
					last := src.ReadOnly()
					for j := 0; j < h; j++ {
						prev := last
						last = reactive.MustSelector(rt, func() int {
							return prev.Value() + 1
						})
					}

					if _, err := reactive.Effect(rt, func() {
						last.Value()
					}); err != nil {
						log.Panic(err)
					}
				}
			})

			for i := 0; i < b.iters; i++ {
				start := time.Now()
				src.SetValue(src.Peek() + 1)
				tach.AddTime(time.Since(start))
			}
			root.Unmount()

			appendTimes(tbl, fmt.Sprintf("propagate: %d * %d", w, h), tach)
		}
	}

	if shouldRender {
		tbl.Render()
	}
}

// fanout mounts w scopes that each read the source while rendering and
// times a write plus the Flush that re-renders them.
func (b *bench) fanout(shouldRender bool) {
	tbl := newTable("Scope fan-out")

	for _, w := range b.ww {
		tach := tachymeter.New(&tachymeter.Config{Size: b.iters})

		tree := b.newTree()
		rt := tree.Runtime()
		src := reactive.Signal(rt, 1)
		root := tree.Mount("fanout", func(s *scope.Scope) {
			for i := 0; i < w; i++ {
				s.Child(fmt.Sprint(i), func(c *scope.Scope) {
					src.Value()
				})
			}
		})

		for i := 0; i < b.iters; i++ {
			start := time.Now()
			src.SetValue(src.Peek() + 1)
			if _, err := tree.Flush(); err != nil {
				log.Panic(err)
			}
			tach.AddTime(time.Since(start))
		}
		root.Unmount()

		appendTimes(tbl, fmt.Sprintf("fanout: %d", w), tach)
	}

	if shouldRender {
		tbl.Render()
	}
}

func (b *bench) renderMetrics() error {
	families, err := b.registry.Gather()
	if err != nil {
		return err
	}
	sort.Slice(families, func(i, j int) bool {
		return families[i].GetName() < families[j].GetName()
	})

	tbl := table.NewWriter()
	tbl.SetTitle("Runtime metrics")
	tbl.SetOutputMirror(os.Stdout)
	tbl.AppendHeader(table.Row{"metric", "labels", "value"})
	for _, f := range families {
		for _, m := range f.GetMetric() {
			labels := ""
			for _, l := range m.GetLabel() {
				labels += l.GetName() + "=" + l.GetValue()
			}
			var value any
			switch {
			case m.Counter != nil:
				value = m.GetCounter().GetValue()
			case m.Histogram != nil:
				value = fmt.Sprintf("%d samples", m.GetHistogram().GetSampleCount())
			}
			tbl.AppendRow(table.Row{f.GetName(), labels, value})
		}
	}
	tbl.Render()
	return nil
}
