package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/service"
	"todosync/internal/store"
)

func init() {
	Register(&LogoutCmd{})
}

// LogoutCmd implements the logout command.
type LogoutCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *LogoutCmd) SetForce(force bool) {
	c.force = force
}

func (c *LogoutCmd) Name() string      { return "logout" }
func (c *LogoutCmd) Aliases() []string { return nil }
func (c *LogoutCmd) Synopsis() string  { return "Remove stored credentials and cached lists" }
func (c *LogoutCmd) Usage() string     { return "todosync logout [common flags] [--force]" }
func (c *LogoutCmd) NeedsAuth() bool   { return false }

func (c *LogoutCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *LogoutCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !cfg.HasToken() {
		if !cfg.Quiet {
			fmt.Fprintln(out, "not logged in")
		}
		return exitcode.Success
	}

	st := store.Open(cfg.SessionPath())
	sess, err := st.Load()
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to load session: %v\n", err)
		return exitcode.UserError
	}
	// Staged edits would be lost with the cached lists
	if sess.Editing && !c.force {
		fmt.Fprintln(errOut, "error: in edit mode (commit or discard first, or use --force)")
		return exitcode.UserError
	}

	if err := cfg.RemoveToken(); err != nil {
		fmt.Fprintf(errOut, "error: failed to remove token: %v\n", err)
		return exitcode.AuthError
	}
	if err := st.Reset(); err != nil {
		fmt.Fprintf(errOut, "error: failed to clear session: %v\n", err)
		return exitcode.UserError
	}
	return ok(cfg, out)
}
