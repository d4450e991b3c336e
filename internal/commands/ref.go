package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"todosync/internal/service"
	"todosync/internal/store"
)

// maxLetters is the number of lists addressable by letter.
const maxLetters = 26

var (
	errNoLists       = errors.New("no lists (run: todosync pull or todosync addlist <name>)")
	errAmbiguousList = errors.New("ambiguous list name")
)

// TaskRef is a parsed task reference such as "b3": list letter b, task 3.
type TaskRef struct {
	List  rune
	Index int
}

func (r TaskRef) String() string {
	return fmt.Sprintf("%c%d", r.List, r.Index)
}

// ParseTaskRef parses "<letter><n>" or "<n>". A bare number refers to list a.
func ParseTaskRef(s string) (TaskRef, error) {
	orig := strings.TrimSpace(s)
	if orig == "" {
		return TaskRef{}, fmt.Errorf("invalid task ref: %q", s)
	}
	s = orig
	ref := TaskRef{List: 'a'}
	if c := s[0]; c >= 'a' && c <= 'z' {
		ref.List = rune(c)
		s = s[1:]
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || strings.HasPrefix(s, "+") {
		return TaskRef{}, fmt.Errorf("invalid task ref: %q", orig)
	}
	ref.Index = n
	return ref, nil
}

// ParseTaskRefs parses every argument as a task ref.
func ParseTaskRefs(args []string) ([]TaskRef, error) {
	refs := make([]TaskRef, 0, len(args))
	for _, a := range args {
		r, err := ParseTaskRef(a)
		if err != nil {
			return nil, err
		}
		refs = append(refs, r)
	}
	return refs, nil
}

// letterOf returns the letter addressing the list at index i.
func letterOf(i int) rune {
	if i < 0 || i >= maxLetters {
		return '?'
	}
	return rune('a' + i)
}

// resolveList finds a list by letter or by case-insensitive title.
func resolveList(sess *store.Session, target string) (service.TodoList, error) {
	if len(sess.Lists) == 0 {
		return service.TodoList{}, errNoLists
	}
	target = strings.TrimSpace(target)
	if len(target) == 1 && target[0] >= 'a' && target[0] <= 'z' {
		i := int(target[0] - 'a')
		if i < len(sess.Lists) {
			return sess.Lists[i], nil
		}
	}

	found := -1
	for i, l := range sess.Lists {
		if strings.EqualFold(l.Title, target) {
			if found >= 0 {
				return service.TodoList{}, fmt.Errorf("%w: %s", errAmbiguousList, target)
			}
			found = i
		}
	}
	if found < 0 {
		return service.TodoList{}, fmt.Errorf("%w: %s", store.ErrListNotFound, target)
	}
	return sess.Lists[found], nil
}

// resolveTask finds the list and task a ref points at.
func resolveTask(sess *store.Session, ref TaskRef) (service.TodoList, service.Task, error) {
	list, err := resolveList(sess, string(ref.List))
	if err != nil {
		return service.TodoList{}, service.Task{}, err
	}
	if ref.Index > len(list.Tasks) {
		return service.TodoList{}, service.Task{}, fmt.Errorf("%w: %s", store.ErrTaskNotFound, ref)
	}
	return list, list.Tasks[ref.Index-1], nil
}
