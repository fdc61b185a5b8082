package main

import (
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/webriots/corun"
	"github.com/webriots/corun/internal/config"
	"github.com/webriots/corun/internal/tracefile"
)

type (
	demoCoro   = corun.Coro[rune, rune, string]
	demoRes    = corun.OptRes[rune, string]
	demoYield  = corun.Yield[rune, string]
	demoDriver = corun.Driver[rune, rune, string]
)

var ack = corun.Sok[rune, string]('.')

// routines are the demo bodies selectable by name in the config.
var routines = map[string]corun.Routine[rune, rune, string]{
	"immediate": func(*demoCoro) demoRes {
		return corun.Sok[rune, string]('x')
	},
	"single": func(c *demoCoro) demoRes {
		c.YieldOk('a')
		return corun.Sok[rune, string]('z')
	},
	"letters": func(c *demoCoro) demoRes {
		for _, r := range "abc" {
			c.Try(c.YieldOk(r))
		}
		return corun.Sok[rune, string]('!')
	},
	"custom": func(c *demoCoro) demoRes {
		for i := 0; i < 3; i++ {
			c.YieldErr("custom")
		}
		return corun.None[rune, string]()
	},
}

func policy(name string) demoDriver {
	seen := map[corun.TaskID]int{}
	switch name {
	case config.PolicyCount:
		return corun.DriverFunc[rune, rune, string](func(id corun.TaskID, _ demoYield) demoRes {
			seen[id]++
			return corun.Sok[rune, string](rune('0' + seen[id]%10))
		})
	case config.PolicyFailOnSecond:
		return corun.DriverFunc[rune, rune, string](func(id corun.TaskID, _ demoYield) demoRes {
			seen[id]++
			if seen[id] == 2 {
				return corun.Serr[rune]("boom")
			}
			return ack
		})
	default:
		return corun.Ack[rune](ack)
	}
}

// printer echoes every exchange to w before delegating.
type printer struct {
	w    io.Writer
	next demoDriver
}

func (p printer) OnYield(id corun.TaskID, y demoYield) demoRes {
	answer := p.next.OnYield(id, y)
	fmt.Fprintf(p.w, "task %d: yield %s -> resume %s\n", id, show(y), answer)
	return answer
}

func (p printer) OnFinish(id corun.TaskID, outcome demoRes) {
	fmt.Fprintf(p.w, "task %d: finish %s\n", id, outcome)
	p.next.OnFinish(id, outcome)
}

func show(y demoYield) string {
	if v, ok := y.Value(); ok {
		return fmt.Sprintf("ok(%q)", v)
	}
	e, _ := y.Err()
	return fmt.Sprintf("err(%q)", e)
}

// runDemo registers the configured routines, drives them, prints the
// outcomes and writes the trace if one was requested.
func runDemo(w io.Writer, demo config.DemoConfig, logger *zap.Logger) ([]demoRes, error) {
	m := corun.NewManager[rune, rune, string](
		corun.WithLogger(logger),
		corun.WithCapacity(len(demo.Routines)),
	)
	defer m.Close()

	for _, name := range demo.Routines {
		fn, ok := routines[name]
		if !ok {
			return nil, fmt.Errorf("unknown routine %q", name)
		}
		id := m.Push(fn)
		fmt.Fprintf(w, "task %d: %s\n", id, name)
	}

	rec := corun.NewRecorder[rune, rune, string](printer{w: w, next: policy(demo.Policy)})
	m.Run(rec)

	outcomes := m.Outcomes()
	for i, out := range outcomes {
		fmt.Fprintf(w, "task %d (%s): %s\n", i, demo.Routines[i], out)
	}

	if demo.Trace != "" {
		if err := tracefile.WriteFile(demo.Trace, tracefile.FromEvents(rec.Events())); err != nil {
			return outcomes, fmt.Errorf("write trace: %w", err)
		}
		logger.Info("trace written", zap.String("path", demo.Trace), zap.Int("events", len(rec.Events())))
	}
	return outcomes, nil
}

// printTrace decodes the trace at path and prints one record per line.
func printTrace(w io.Writer, path string) error {
	tr, err := tracefile.ReadFile(path)
	if err != nil {
		return err
	}
	for _, r := range tr.Records {
		fmt.Fprintln(w, r)
	}
	return nil
}
