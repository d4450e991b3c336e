package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/gosuri/uitable"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/service"
)

func init() {
	Register(&HelpCmd{registry: DefaultRegistry})
}

// HelpCmd implements the help command.
type HelpCmd struct {
	registry *Registry
}

// NewHelpCmd returns a help command listing the commands of r.
func NewHelpCmd(r *Registry) *HelpCmd {
	return &HelpCmd{registry: r}
}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "todosync help [<command>]" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		cmd, ok := c.registry.Find(args[0])
		if !ok {
			fmt.Fprintf(errOut, "error: unknown command: %s\n", args[0])
			return exitcode.UserError
		}
		fmt.Fprintf(out, "Usage:\n  %s\n\n%s\n", cmd.Usage(), cmd.Synopsis())
		if aliases := cmd.Aliases(); len(aliases) > 0 {
			fmt.Fprintf(out, "Aliases: %s\n", strings.Join(aliases, ", "))
		}
		return exitcode.Success
	}

	fmt.Fprint(out, helpHeader)

	tbl := uitable.New()
	tbl.Separator = "  "
	for _, cmd := range c.registry.All() {
		tbl.AddRow("  "+cmd.Name(), cmd.Synopsis())
	}
	fmt.Fprintf(out, "Commands:\n%s\n\n", tbl)

	fmt.Fprint(out, helpFooter)
	return exitcode.Success
}

const helpHeader = `Usage:
  todosync                       Show all lists and tasks
  todosync <command> [common flags] [flags] [args]

Outside edit mode every change is sent to the server right away.
After 'todosync edit' changes are staged locally until 'todosync commit'.

`

const helpFooter = `Refs:
  <letter>         A list, in the order shown by 'todosync lists'
  <letter><n>      Task n of a list, e.g. b3. A bare number refers to list a.

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr

Run 'todosync help <command>' for command usage.
`
