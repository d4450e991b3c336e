package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strconv"
	"strings"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/reconcile"
	"todosync/internal/service"
	"todosync/internal/store"
)

func init() {
	Register(&AddListCmd{})
	Register(&RenameCmd{})
	Register(&RmListCmd{})
	Register(&MoveListCmd{})
}

// AddListCmd implements the addlist command.
type AddListCmd struct{}

func (c *AddListCmd) Name() string      { return "addlist" }
func (c *AddListCmd) Aliases() []string { return []string{"createlist"} }
func (c *AddListCmd) Synopsis() string  { return "Create a new list" }
func (c *AddListCmd) Usage() string     { return "todosync addlist [common flags] <list-name>" }
func (c *AddListCmd) NeedsAuth() bool   { return true }
func (c *AddListCmd) Stages() bool      { return true }

func (c *AddListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *AddListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	return withSession(cfg, errOut, func(sess *store.Session) int {
		for _, l := range sess.Lists {
			if strings.EqualFold(l.Title, name) {
				fmt.Fprintf(errOut, "error: list already exists: %s\n", name)
				return exitcode.UserError
			}
		}
		if len(sess.Lists) >= maxLetters {
			fmt.Fprintf(errOut, "error: too many lists (max %d)\n", maxLetters)
			return exitcode.UserError
		}
		if _, err := reconcile.NewApplier(svc, sess).AddList(ctx, name); err != nil {
			return reportError(errOut, err)
		}
		return ok(cfg, out)
	})
}

// RenameCmd implements the rename command.
type RenameCmd struct{}

func (c *RenameCmd) Name() string      { return "rename" }
func (c *RenameCmd) Aliases() []string { return []string{"renamelist"} }
func (c *RenameCmd) Synopsis() string  { return "Rename a list" }
func (c *RenameCmd) Usage() string     { return "todosync rename [common flags] <letter> <new-name...>" }
func (c *RenameCmd) NeedsAuth() bool   { return true }
func (c *RenameCmd) Stages() bool      { return true }

func (c *RenameCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *RenameCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: list and new name required")
		return exitcode.UserError
	}
	title := strings.TrimSpace(strings.Join(args[1:], " "))
	if title == "" {
		fmt.Fprintln(errOut, "error: new name required")
		return exitcode.UserError
	}

	return withSession(cfg, errOut, func(sess *store.Session) int {
		list, err := resolveList(sess, args[0])
		if err != nil {
			return reportError(errOut, err)
		}
		if err := reconcile.NewApplier(svc, sess).RenameList(ctx, list.ID, title); err != nil {
			return reportError(errOut, err)
		}
		return ok(cfg, out)
	})
}

// RmListCmd implements the rmlist command.
type RmListCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *RmListCmd) SetForce(force bool) {
	c.force = force
}

func (c *RmListCmd) Name() string      { return "rmlist" }
func (c *RmListCmd) Aliases() []string { return nil }
func (c *RmListCmd) Synopsis() string  { return "Delete a list" }
func (c *RmListCmd) Usage() string     { return "todosync rmlist [common flags] [--force] <letter|list-name>" }
func (c *RmListCmd) NeedsAuth() bool   { return true }
func (c *RmListCmd) Stages() bool      { return true }

func (c *RmListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *RmListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	name := strings.TrimSpace(strings.Join(args, " "))
	if name == "" {
		fmt.Fprintln(errOut, "error: list name required")
		return exitcode.UserError
	}

	return withSession(cfg, errOut, func(sess *store.Session) int {
		list, err := resolveList(sess, name)
		if err != nil {
			return reportError(errOut, err)
		}

		// Check if list has open tasks (unless --force)
		if !c.force {
			for _, t := range list.Tasks {
				if !t.Done() {
					fmt.Fprintln(errOut, "error: list has open tasks (use --force)")
					return exitcode.UserError
				}
			}
		}

		if err := reconcile.NewApplier(svc, sess).DeleteList(ctx, list.ID); err != nil {
			return reportError(errOut, err)
		}
		return ok(cfg, out)
	})
}

// MoveListCmd implements the movelist command.
type MoveListCmd struct{}

func (c *MoveListCmd) Name() string      { return "movelist" }
func (c *MoveListCmd) Aliases() []string { return nil }
func (c *MoveListCmd) Synopsis() string  { return "Move a list to another position" }
func (c *MoveListCmd) Usage() string     { return "todosync movelist [common flags] <letter|list-name> <position>" }
func (c *MoveListCmd) NeedsAuth() bool   { return false }

func (c *MoveListCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *MoveListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) < 2 {
		fmt.Fprintln(errOut, "error: list and position required")
		return exitcode.UserError
	}
	pos, err := strconv.Atoi(args[len(args)-1])
	if err != nil || pos < 1 {
		fmt.Fprintf(errOut, "error: invalid position: %s\n", args[len(args)-1])
		return exitcode.UserError
	}
	name := strings.Join(args[:len(args)-1], " ")

	return withSession(cfg, errOut, func(sess *store.Session) int {
		list, err := resolveList(sess, name)
		if err != nil {
			return reportError(errOut, err)
		}
		if err := reconcile.NewApplier(svc, sess).MoveList(ctx, list.ID, pos-1); err != nil {
			return reportError(errOut, err)
		}
		return ok(cfg, out)
	})
}
