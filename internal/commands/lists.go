package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/output"
	"todosync/internal/reconcile"
	"todosync/internal/service"
	"todosync/internal/store"
)

func init() {
	Register(&ListsCmd{})
	Register(&ListCmd{})
}

// ListsCmd implements the lists command.
type ListsCmd struct{}

func (c *ListsCmd) Name() string      { return "lists" }
func (c *ListsCmd) Aliases() []string { return nil }
func (c *ListsCmd) Synopsis() string  { return "Show all lists" }
func (c *ListsCmd) Usage() string     { return "todosync lists [common flags]" }
func (c *ListsCmd) NeedsAuth() bool   { return false }

func (c *ListsCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *ListsCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	sess, loaded := readSession(cfg, errOut)
	if !loaded {
		return exitcode.UserError
	}
	printBanner(sess, out)
	if len(sess.Lists) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no lists")
		}
		return exitcode.Success
	}
	for i, l := range sess.Lists {
		output.FormatListName(out, letterOf(i), l)
	}
	return exitcode.Success
}

// ListCmd implements the list command.
type ListCmd struct {
	open bool
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "Show tasks of one or all lists" }
func (c *ListCmd) Usage() string {
	return "todosync list [common flags] [--open] [<letter|list-name>]"
}
func (c *ListCmd) NeedsAuth() bool { return false }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.open, "open", false, "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	sess, loaded := readSession(cfg, errOut)
	if !loaded {
		return exitcode.UserError
	}
	printBanner(sess, out)

	// Join args to form list name
	if name := strings.TrimSpace(strings.Join(args, " ")); name != "" {
		list, err := resolveList(sess, name)
		if err != nil {
			return reportError(errOut, err)
		}
		c.printList(out, letterOf(indexOfList(sess, list.ID)), list)
		return exitcode.Success
	}

	if len(sess.Lists) == 0 {
		if !cfg.Quiet {
			fmt.Fprintln(out, "no lists (run: todosync pull)")
		}
		return exitcode.Success
	}
	for i, l := range sess.Lists {
		if i > 0 {
			fmt.Fprintln(out)
		}
		c.printList(out, letterOf(i), l)
	}
	return exitcode.Success
}

// printList prints a list section. Task numbers always count every task so
// refs stay stable with --open.
func (c *ListCmd) printList(out io.Writer, letter rune, list service.TodoList) {
	output.FormatListHeader(out, letter, list)
	for i, t := range list.Tasks {
		if c.open && t.Done() {
			continue
		}
		output.FormatTask(out, i+1, t)
	}
}

func indexOfList(sess *store.Session, id string) int {
	return service.FindList(sess.Lists, id)
}

// printBanner prints the edit-mode banner with the pending change count.
func printBanner(sess *store.Session, out io.Writer) {
	if !sess.Editing {
		return
	}
	output.FormatEditing(out, reconcile.Diff(sess.Baseline(), sess.Lists).Count())
}
