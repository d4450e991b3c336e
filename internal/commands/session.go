package commands

import (
	"errors"
	"fmt"
	"io"

	"github.com/golang/glog"

	"todosync/internal/config"
	"todosync/internal/exitcode"
	"todosync/internal/output"
	"todosync/internal/reconcile"
	"todosync/internal/service"
	"todosync/internal/store"
)

// withSession loads the persisted session, runs fn and saves the session
// afterwards, also when fn failed: remote failures bump the error counter.
func withSession(cfg *config.Config, errOut io.Writer, fn func(sess *store.Session) int) int {
	if err := cfg.EnsureDir(); err != nil {
		fmt.Fprintf(errOut, "error: failed to create config directory: %v\n", err)
		return exitcode.UserError
	}
	st := store.Open(cfg.SessionPath())
	sess, err := st.Load()
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to load session: %v\n", err)
		return exitcode.UserError
	}

	code := fn(sess)

	if err := st.Save(sess); err != nil {
		fmt.Fprintf(errOut, "error: failed to save session: %v\n", err)
		if code == exitcode.Success {
			return exitcode.UserError
		}
	}
	return code
}

// readSession loads the session without writing it back.
func readSession(cfg *config.Config, errOut io.Writer) (*store.Session, bool) {
	sess, err := store.Open(cfg.SessionPath()).Load()
	if err != nil {
		fmt.Fprintf(errOut, "error: failed to load session: %v\n", err)
		return nil, false
	}
	return sess, true
}

// reportError prints err and maps it to an exit code.
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		fmt.Fprintf(errOut, "error: auth error: %v\n", err)
		return exitcode.AuthError
	case errors.Is(err, service.ErrRemoteRejected):
		glog.V(1).Infof("[cli]remote rejected: %v", err)
		output.Warn(errOut, "%v (change not applied)", err)
		return exitcode.PartialError
	case errors.Is(err, store.ErrListNotFound), errors.Is(err, store.ErrTaskNotFound),
		errors.Is(err, errNoLists), errors.Is(err, errAmbiguousList):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	case errors.Is(err, store.ErrNotEditing), errors.Is(err, store.ErrAlreadyEditing),
		errors.Is(err, reconcile.ErrUnsynced):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.BackendError
	}
}

// warnUnsynced reports lists and tasks whose create failed. They stay local
// until a later commit creates them or a pull drops them.
func warnUnsynced(w io.Writer, sess *store.Session) {
	lists, tasks := sess.Unsynced()
	if lists+tasks == 0 {
		return
	}
	output.Warn(w, "%d list(s) and %d task(s) are not on the server yet, run edit and commit to retry", lists, tasks)
}

// ok prints the confirmation line unless quiet.
func ok(cfg *config.Config, out io.Writer) int {
	if !cfg.Quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
