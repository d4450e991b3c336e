package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/golang/glog"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/output"
	"todosync/internal/reconcile"
	"todosync/internal/service"
	"todosync/internal/store"
)

// Now is the clock used to stamp syncs. Replaced in tests.
var Now = time.Now

func init() {
	Register(&PullCmd{})
	Register(&EditCmd{})
	Register(&StatusCmd{})
	Register(&CommitCmd{})
	Register(&DiscardCmd{})
	Register(&ErrorsCmd{})
}

// PullCmd implements the pull command.
type PullCmd struct{}

func (c *PullCmd) Name() string      { return "pull" }
func (c *PullCmd) Aliases() []string { return []string{"sync"} }
func (c *PullCmd) Synopsis() string  { return "Fetch all lists and tasks from the server" }
func (c *PullCmd) Usage() string     { return "todosync pull [common flags]" }
func (c *PullCmd) NeedsAuth() bool   { return true }

func (c *PullCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *PullCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return withSession(cfg, errOut, func(sess *store.Session) int {
		if sess.Editing {
			fmt.Fprintln(errOut, "error: in edit mode (run: todosync commit or todosync discard)")
			return exitcode.UserError
		}
		if err := reconcile.Pull(ctx, svc, sess, Now()); err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
		if !cfg.Quiet {
			tasks := 0
			for _, l := range sess.Lists {
				tasks += len(l.Tasks)
			}
			fmt.Fprintf(out, "pulled %d list(s), %d task(s)\n", len(sess.Lists), tasks)
		}
		return exitcode.Success
	})
}

// EditCmd implements the edit command.
type EditCmd struct{}

func (c *EditCmd) Name() string      { return "edit" }
func (c *EditCmd) Aliases() []string { return nil }
func (c *EditCmd) Synopsis() string  { return "Enter edit mode and stage changes locally" }
func (c *EditCmd) Usage() string     { return "todosync edit [common flags]" }
func (c *EditCmd) NeedsAuth() bool   { return false }

func (c *EditCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *EditCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return withSession(cfg, errOut, func(sess *store.Session) int {
		if err := sess.EnterEditMode(); err != nil {
			return reportError(errOut, err)
		}
		glog.V(1).Infof("[edit]snapshot of %d list(s)", len(sess.Snapshot))
		if !cfg.Quiet {
			fmt.Fprintln(out, "edit mode on (commit with: todosync commit)")
		}
		return exitcode.Success
	})
}

// StatusCmd implements the status command.
type StatusCmd struct{}

func (c *StatusCmd) Name() string      { return "status" }
func (c *StatusCmd) Aliases() []string { return []string{"st"} }
func (c *StatusCmd) Synopsis() string  { return "Show pending changes" }
func (c *StatusCmd) Usage() string     { return "todosync status [common flags]" }
func (c *StatusCmd) NeedsAuth() bool   { return false }

func (c *StatusCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *StatusCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	sess, loaded := readSession(cfg, errOut)
	if !loaded {
		return exitcode.UserError
	}
	if !sess.SyncedAt.IsZero() {
		fmt.Fprintf(out, "last sync: %s\n", sess.SyncedAt.Local().Format(time.RFC3339))
	}
	if sess.ErrorCount > 0 {
		output.Warn(out, "%d remote call(s) failed", sess.ErrorCount)
	}
	warnUnsynced(out, sess)
	if !sess.Editing {
		fmt.Fprintln(out, "not in edit mode")
		return exitcode.Success
	}

	changes := reconcile.Diff(sess.Baseline(), sess.Lists)
	output.FormatEditing(out, changes.Count())
	if !changes.Empty() {
		output.FormatChanges(out, changes)
	}
	if n := len(sess.TaskOrders); n > 0 {
		fmt.Fprintf(out, "reordered tasks in %d list(s)\n", n)
	}
	return exitcode.Success
}

// CommitCmd implements the commit command.
type CommitCmd struct {
	noReorder bool
}

// SetNoReorder sets the no-reorder flag (for testing).
func (c *CommitCmd) SetNoReorder(noReorder bool) {
	c.noReorder = noReorder
}

func (c *CommitCmd) Name() string      { return "commit" }
func (c *CommitCmd) Aliases() []string { return []string{"save"} }
func (c *CommitCmd) Synopsis() string  { return "Send staged changes to the server" }
func (c *CommitCmd) Usage() string     { return "todosync commit [common flags] [--no-reorder]" }
func (c *CommitCmd) NeedsAuth() bool   { return true }

func (c *CommitCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.noReorder, "no-reorder", false, "")
}

func (c *CommitCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	opts := []reconcile.Option{
		reconcile.WithConcurrency(cfg.MaxConcurrency()),
		reconcile.WithClock(Now),
	}
	if c.noReorder {
		opts = append(opts, reconcile.WithoutReorder())
	}
	if cfg.Debug {
		opts = append(opts, reconcile.WithPhaseHook(func(p reconcile.Phase) {
			fmt.Fprintf(errOut, "debug: phase %s\n", p)
		}))
	}
	committer := reconcile.NewCommitter(svc, opts...)

	return withSession(cfg, errOut, func(sess *store.Session) int {
		report, err := committer.Commit(ctx, sess)
		if err != nil {
			return reportError(errOut, err)
		}
		if !cfg.Quiet {
			output.FormatReport(out, report)
		}
		if report.Failed > 0 {
			output.Warn(errOut, "%d change(s) were rejected by the server and not applied", report.Failed)
			warnUnsynced(errOut, sess)
			return exitcode.PartialError
		}
		return exitcode.Success
	})
}

// DiscardCmd implements the discard command.
type DiscardCmd struct{}

func (c *DiscardCmd) Name() string      { return "discard" }
func (c *DiscardCmd) Aliases() []string { return []string{"cancel"} }
func (c *DiscardCmd) Synopsis() string  { return "Drop staged changes and leave edit mode" }
func (c *DiscardCmd) Usage() string     { return "todosync discard [common flags]" }
func (c *DiscardCmd) NeedsAuth() bool   { return false }

func (c *DiscardCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DiscardCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return withSession(cfg, errOut, func(sess *store.Session) int {
		if err := sess.Discard(); err != nil {
			return reportError(errOut, err)
		}
		return ok(cfg, out)
	})
}

// ErrorsCmd implements the errors command.
type ErrorsCmd struct {
	reset bool
}

// SetReset sets the reset flag (for testing).
func (c *ErrorsCmd) SetReset(reset bool) {
	c.reset = reset
}

func (c *ErrorsCmd) Name() string      { return "errors" }
func (c *ErrorsCmd) Aliases() []string { return nil }
func (c *ErrorsCmd) Synopsis() string  { return "Show or reset the remote failure counter" }
func (c *ErrorsCmd) Usage() string     { return "todosync errors [common flags] [--reset]" }
func (c *ErrorsCmd) NeedsAuth() bool   { return false }

func (c *ErrorsCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.reset, "reset", false, "")
}

func (c *ErrorsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	return withSession(cfg, errOut, func(sess *store.Session) int {
		if c.reset {
			sess.ResetErrors()
			return ok(cfg, out)
		}
		fmt.Fprintf(out, "%d\n", sess.ErrorCount)
		return exitcode.Success
	})
}
