package store

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestStore_LoadMissing(t *testing.T) {
	st := Open(t.TempDir())
	sess, err := st.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sess.Editing || len(sess.Lists) != 0 {
		t.Errorf("expected empty session, got %#v", sess)
	}
}

func TestStore_RoundTripEditSession(t *testing.T) {
	dir := t.TempDir()
	st := Open(dir)

	sess := &Session{Lists: sampleLists(), ErrorCount: 2}
	_ = sess.EnterEditMode()
	_ = sess.SwapTasks("L1", "T1", "T2")
	if err := st.Save(sess); err != nil {
		t.Fatalf("save: %v", err)
	}

	// A fresh store must read from disk, not the cache of the first one.
	got, err := Open(dir).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Editing || got.ErrorCount != 2 {
		t.Errorf("unexpected session flags: %#v", got)
	}
	if !reflect.DeepEqual(got.Snapshot, sess.Snapshot) {
		t.Errorf("snapshot mismatch:\nwant %#v\ngot  %#v", sess.Snapshot, got.Snapshot)
	}
	if !reflect.DeepEqual(got.TaskOrders, sess.TaskOrders) {
		t.Errorf("task orders mismatch: %v vs %v", got.TaskOrders, sess.TaskOrders)
	}
}

func TestStore_EmptyEditSessionKeepsBaseline(t *testing.T) {
	dir := t.TempDir()
	sess := &Session{}
	_ = sess.EnterEditMode()
	if err := Open(dir).Save(sess); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Open(dir).Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !got.Editing || got.Snapshot == nil {
		t.Errorf("expected editing session with empty baseline, got %#v", got)
	}
}

func TestStore_CorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, sessionKey), []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(dir).Load(); err == nil {
		t.Error("expected error for corrupt session")
	}
}

func TestStore_Reset(t *testing.T) {
	dir := t.TempDir()
	st := Open(dir)
	if err := st.Reset(); err != nil {
		t.Fatalf("reset on empty store: %v", err)
	}
	if err := st.Save(&Session{Lists: sampleLists()}); err != nil {
		t.Fatal(err)
	}
	if err := st.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	sess, err := st.Load()
	if err != nil {
		t.Fatal(err)
	}
	if len(sess.Lists) != 0 {
		t.Errorf("expected empty session after reset, got %d lists", len(sess.Lists))
	}
}
