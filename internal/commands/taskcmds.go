package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/reconcile"
	"todosync/internal/service"
	"todosync/internal/store"
)

func init() {
	Register(&AddCmd{})
	Register(&RmCmd{})
	Register(&DoneCmd{})
	Register(&RetitleCmd{})
	Register(&SwapCmd{})
}

// AddCmd implements the add command.
type AddCmd struct {
	listName string
}

// SetList sets the target list (for testing).
func (c *AddCmd) SetList(name string) {
	c.listName = name
}

func (c *AddCmd) Name() string      { return "add" }
func (c *AddCmd) Aliases() []string { return []string{"create"} }
func (c *AddCmd) Synopsis() string  { return "Add a new task" }
func (c *AddCmd) Usage() string {
	return "todosync add [common flags] [--list <letter|list-name>] <title...>"
}
func (c *AddCmd) NeedsAuth() bool { return true }
func (c *AddCmd) Stages() bool    { return true }

func (c *AddCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.listName, "list", "", "")
	fs.StringVar(&c.listName, "l", "", "")
}

func (c *AddCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	title := strings.TrimSpace(strings.Join(args, " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	return withSession(cfg, errOut, func(sess *store.Session) int {
		target := c.listName
		if target == "" {
			target = "a"
		}
		list, err := resolveList(sess, target)
		if err != nil {
			return reportError(errOut, err)
		}
		if _, err := reconcile.NewApplier(svc, sess).AddTask(ctx, list.ID, title); err != nil {
			return reportError(errOut, err)
		}
		return ok(cfg, out)
	})
}

// RmCmd implements the rm command.
type RmCmd struct{}

func (c *RmCmd) Name() string      { return "rm" }
func (c *RmCmd) Aliases() []string { return []string{"delete"} }
func (c *RmCmd) Synopsis() string  { return "Delete a task" }
func (c *RmCmd) Usage() string     { return "todosync rm [common flags] <ref>" }
func (c *RmCmd) NeedsAuth() bool   { return true }
func (c *RmCmd) Stages() bool      { return true }

func (c *RmCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RmCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, code := singleRef(args, errOut)
	if code != exitcode.Success {
		return code
	}
	return withSession(cfg, errOut, func(sess *store.Session) int {
		list, task, err := resolveTask(sess, ref)
		if err != nil {
			return reportError(errOut, err)
		}
		if err := reconcile.NewApplier(svc, sess).DeleteTask(ctx, list.ID, task.ID); err != nil {
			return reportError(errOut, err)
		}
		return ok(cfg, out)
	})
}

// DoneCmd implements the done command.
type DoneCmd struct {
	undo bool
}

// SetUndo sets the undo flag (for testing).
func (c *DoneCmd) SetUndo(undo bool) {
	c.undo = undo
}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "todosync done [common flags] [--undo] <ref>" }
func (c *DoneCmd) NeedsAuth() bool   { return true }
func (c *DoneCmd) Stages() bool      { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.undo, "undo", false, "")
}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	ref, code := singleRef(args, errOut)
	if code != exitcode.Success {
		return code
	}
	status := service.StatusCompleted
	if c.undo {
		status = service.StatusNew
	}

	return withSession(cfg, errOut, func(sess *store.Session) int {
		_, task, err := resolveTask(sess, ref)
		if err != nil {
			return reportError(errOut, err)
		}
		if task.Status == status {
			return ok(cfg, out)
		}
		task.Status = status
		if err := reconcile.NewApplier(svc, sess).UpdateTask(ctx, task); err != nil {
			return reportError(errOut, err)
		}
		return ok(cfg, out)
	})
}

// RetitleCmd implements the retitle command.
type RetitleCmd struct{}

func (c *RetitleCmd) Name() string      { return "retitle" }
func (c *RetitleCmd) Aliases() []string { return []string{"edittask"} }
func (c *RetitleCmd) Synopsis() string  { return "Change a task title" }
func (c *RetitleCmd) Usage() string     { return "todosync retitle [common flags] <ref> <title...>" }
func (c *RetitleCmd) NeedsAuth() bool   { return true }
func (c *RetitleCmd) Stages() bool      { return true }

func (c *RetitleCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RetitleCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: task ref and title required")
		return exitcode.UserError
	}
	ref, err := ParseTaskRef(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	title := strings.TrimSpace(strings.Join(args[1:], " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: title required")
		return exitcode.UserError
	}

	return withSession(cfg, errOut, func(sess *store.Session) int {
		_, task, err := resolveTask(sess, ref)
		if err != nil {
			return reportError(errOut, err)
		}
		task.Title = title
		if err := reconcile.NewApplier(svc, sess).UpdateTask(ctx, task); err != nil {
			return reportError(errOut, err)
		}
		return ok(cfg, out)
	})
}

// SwapCmd implements the swap command.
type SwapCmd struct{}

func (c *SwapCmd) Name() string      { return "swap" }
func (c *SwapCmd) Aliases() []string { return nil }
func (c *SwapCmd) Synopsis() string  { return "Swap two tasks of the same list" }
func (c *SwapCmd) Usage() string     { return "todosync swap [common flags] <ref> <ref>" }
func (c *SwapCmd) NeedsAuth() bool   { return true }
func (c *SwapCmd) Stages() bool      { return true }

func (c *SwapCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *SwapCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(errOut, "error: two task refs required")
		return exitcode.UserError
	}
	refs, err := ParseTaskRefs(args)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	if refs[0].List != refs[1].List {
		fmt.Fprintln(errOut, "error: tasks must be in the same list")
		return exitcode.UserError
	}

	return withSession(cfg, errOut, func(sess *store.Session) int {
		list, a, err := resolveTask(sess, refs[0])
		if err != nil {
			return reportError(errOut, err)
		}
		_, b, err := resolveTask(sess, refs[1])
		if err != nil {
			return reportError(errOut, err)
		}
		if err := reconcile.NewApplier(svc, sess).SwapTasks(ctx, list.ID, a.ID, b.ID); err != nil {
			return reportError(errOut, err)
		}
		return ok(cfg, out)
	})
}

// singleRef parses exactly one task ref argument.
func singleRef(args []string, errOut io.Writer) (TaskRef, int) {
	if len(args) == 0 {
		fmt.Fprintln(errOut, "error: task ref required")
		return TaskRef{}, exitcode.UserError
	}
	if len(args) > 1 {
		fmt.Fprintln(errOut, "error: too many arguments")
		return TaskRef{}, exitcode.UserError
	}
	ref, err := ParseTaskRef(args[0])
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return TaskRef{}, exitcode.UserError
	}
	return ref, exitcode.Success
}
