package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/vk/behaviorgo/internal/bt"
	"github.com/vk/behaviorgo/internal/ctxlog"
	"github.com/vk/behaviorgo/internal/nodeid"
)

// ErrTreeFailed is returned by Run when the tree's last status is Failure.
var ErrTreeFailed = errors.New("tree failed")

// Target selects the tree to run: a file path or a catalog name.
type Target struct {
	Path     string
	TreeName string
}

func (a *App) buildTarget(ctx context.Context, target Target) (*bt.Tree, error) {
	switch {
	case target.Path != "" && target.TreeName != "":
		return nil, errors.New("a tree path and a tree name are mutually exclusive")
	case target.Path != "":
		return a.builder.BuildTreeWithFile(ctx, target.Path)
	case target.TreeName != "":
		return a.builder.BuildTreeByName(ctx, target.TreeName)
	default:
		return nil, errors.New("no tree to run")
	}
}

// Run builds the target tree and ticks it. With Config.Ticks set it ticks
// exactly that many times, otherwise until the tree returns something other
// than Running. Cancelling ctx stops the loop without an error.
func (a *App) Run(ctx context.Context, target Target) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	tree, err := a.buildTarget(ctx, target)
	if err != nil {
		return err
	}
	a.status.start(tree)

	if a.config.HealthcheckPort > 0 {
		a.healthCheckServer()
		defer a.closeHealthCheckServer()
	}

	a.logger.Info("Running tree.", "tree", tree.Name, "id", tree.ID.String(), "ticks", a.config.Ticks, "interval", a.config.Interval)

	var status bt.Status
	for tick := 1; ; tick++ {
		a.nodes.Clear(ctx)
		status, err = tree.Tick(ctx)
		if err != nil {
			a.logger.Info("Run interrupted.", "tree", tree.Name, "ticks", tick-1)
			return nil
		}
		a.status.record(status)
		fmt.Fprintf(a.outW, "tick %d: %s\n", tick, status)
		if a.config.Trace {
			a.printTrace(ctx)
		}

		if a.config.Ticks > 0 && tick >= a.config.Ticks {
			break
		}
		if a.config.Ticks == 0 && status != bt.Running {
			break
		}
		if !sleep(ctx, a.config.Interval) {
			a.logger.Info("Run interrupted.", "tree", tree.Name, "ticks", tick)
			return nil
		}
	}

	a.logger.Info("Run finished.", "tree", tree.Name, "status", status.String(), "ticks", tree.TickCount())
	if status == bt.Failure {
		return fmt.Errorf("%w: %s", ErrTreeFailed, tree.Name)
	}
	return nil
}

// printTrace writes the status of every node ticked in the last tick,
// ordered by address.
func (a *App) printTrace(ctx context.Context) {
	statuses := filterStatuses(a.nodes.Snapshot(ctx), a.watch)
	addrs := make([]string, 0, len(statuses))
	for addr := range statuses {
		addrs = append(addrs, addr)
	}
	sort.Strings(addrs)
	for _, addr := range addrs {
		fmt.Fprintf(a.outW, "  %s: %s\n", addr, statuses[addr])
	}
}

// filterStatuses keeps the statuses of nodes inside any of the watched
// subtrees. No watched addresses keeps everything.
func filterStatuses(statuses map[string]bt.Status, watch []*nodeid.Address) map[string]bt.Status {
	if len(watch) == 0 {
		return statuses
	}
	out := make(map[string]bt.Status)
	for raw, status := range statuses {
		addr, err := nodeid.Parse(raw)
		if err != nil {
			continue
		}
		for _, w := range watch {
			if w.Contains(addr) {
				out[raw] = status
				break
			}
		}
	}
	return out
}

// sleep waits for d and reports whether ctx is still live.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
