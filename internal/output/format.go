// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"

	"todosync/internal/reconcile"
	"todosync/internal/service"
)

const (
	// ListSeparator is the separator line for list sections.
	ListSeparator = "------------"
)

var (
	warnColor    = color.New(color.FgYellow)
	editingColor = color.New(color.FgCyan, color.Bold)
)

// FormatTask formats a task line inside a list section.
// Format: "    {N:>4}  [ ] {TITLE}\n", "[x]" for completed tasks.
func FormatTask(w io.Writer, num int, task service.Task) {
	box := "[ ]"
	if task.Done() {
		box = "[x]"
	}
	fmt.Fprintf(w, "    %4d  %s %s\n", num, box, normalizeTitle(task.Title))
}

// FormatListHeader formats a list section header with its letter.
func FormatListHeader(w io.Writer, letter rune, list service.TodoList) {
	fmt.Fprintln(w, ListSeparator)
	fmt.Fprintf(w, "%c  %s\n", letter, normalizeListTitle(list.Title))
	fmt.Fprintln(w, ListSeparator)
}

// FormatListName formats a list line for the lists command.
func FormatListName(w io.Writer, letter rune, list service.TodoList) {
	open := 0
	for _, t := range list.Tasks {
		if !t.Done() {
			open++
		}
	}
	fmt.Fprintf(w, "%c  %s (%d/%d)\n", letter, normalizeListTitle(list.Title), open, len(list.Tasks))
}

// FormatEditing prints the edit-mode banner.
func FormatEditing(w io.Writer, pending int) {
	editingColor.Fprintf(w, "edit mode: %d pending change(s)\n", pending)
}

// FormatChanges prints the pending changes as a table.
func FormatChanges(w io.Writer, c reconcile.Changes) {
	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow("CHANGE", "KIND", "TITLE")
	for _, l := range c.AddedLists {
		tbl.AddRow("+", "list", normalizeListTitle(l.Title))
	}
	for _, l := range c.EditedLists {
		tbl.AddRow("~", "list", normalizeListTitle(l.Title))
	}
	for _, l := range c.DeletedLists {
		tbl.AddRow("-", "list", normalizeListTitle(l.Title))
	}
	for _, t := range c.AddedTasks {
		tbl.AddRow("+", "task", normalizeTitle(t.Title))
	}
	for _, t := range c.EditedTasks {
		tbl.AddRow("~", "task", normalizeTitle(t.Title))
	}
	for _, t := range c.DeletedTasks {
		tbl.AddRow("-", "task", normalizeTitle(t.Title))
	}
	fmt.Fprintln(w, tbl)
}

// FormatReport prints a commit summary line.
func FormatReport(w io.Writer, r reconcile.Report) {
	fmt.Fprintf(w, "created %d list(s), %d task(s); deleted %d; updated %d; reordered %d\n",
		r.CreatedLists, r.CreatedTasks, r.Deleted, r.Updated, r.Reordered)
}

// Warn prints a highlighted warning line.
func Warn(w io.Writer, format string, args ...any) {
	warnColor.Fprintf(w, "warning: "+format+"\n", args...)
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}

// normalizeListTitle normalizes a list title for display.
// Empty or whitespace-only titles become "(untitled)".
func normalizeListTitle(title string) string {
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
