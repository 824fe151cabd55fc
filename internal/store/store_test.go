package store

import (
	"path/filepath"
	"testing"

	"github.com/Emeline-1/bgpsim/internal/dataplane"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cache.sqlite3")
	st, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func TestSaveAndLoadGraphRoundTrip(t *testing.T) {
	st := openTestStore(t)
	want := []byte(`{"ases":{}}`)
	if err := st.SaveGraph("key1", want); err != nil {
		t.Fatalf("SaveGraph: %v", err)
	}
	got, found, err := st.LoadGraph("key1")
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if !found {
		t.Fatal("expected cached graph to be found")
	}
	if string(got) != string(want) {
		t.Fatalf("LoadGraph() = %s, want %s", got, want)
	}
}

func TestLoadGraphMissingKey(t *testing.T) {
	st := openTestStore(t)
	_, found, err := st.LoadGraph("nope")
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if found {
		t.Fatal("expected no cached graph for an unknown key")
	}
}

func TestSaveGraphOverwritesExistingKey(t *testing.T) {
	st := openTestStore(t)
	if err := st.SaveGraph("key1", []byte("first")); err != nil {
		t.Fatalf("SaveGraph first: %v", err)
	}
	if err := st.SaveGraph("key1", []byte("second")); err != nil {
		t.Fatalf("SaveGraph second: %v", err)
	}
	got, _, err := st.LoadGraph("key1")
	if err != nil {
		t.Fatalf("LoadGraph: %v", err)
	}
	if string(got) != "second" {
		t.Fatalf("LoadGraph() = %s, want second", got)
	}
}

func TestSaveAndLoadOutcomes(t *testing.T) {
	st := openTestStore(t)
	outcomes := map[int32]dataplane.Outcome{
		1: dataplane.ATTACKER_SUCCESS,
		2: dataplane.LEGITIMATE_ORIGIN_SUCCESS,
	}
	if err := st.SaveOutcomes(7, outcomes); err != nil {
		t.Fatalf("SaveOutcomes: %v", err)
	}
	got, err := st.LoadOutcomes(7)
	if err != nil {
		t.Fatalf("LoadOutcomes: %v", err)
	}
	if len(got) != 2 || got[1] != dataplane.ATTACKER_SUCCESS || got[2] != dataplane.LEGITIMATE_ORIGIN_SUCCESS {
		t.Fatalf("LoadOutcomes() = %v, want %v", got, outcomes)
	}
}

func TestLoadOutcomesIsolatesTrials(t *testing.T) {
	st := openTestStore(t)
	if err := st.SaveOutcomes(1, map[int32]dataplane.Outcome{1: dataplane.DISCONNECTED}); err != nil {
		t.Fatalf("SaveOutcomes trial 1: %v", err)
	}
	if err := st.SaveOutcomes(2, map[int32]dataplane.Outcome{1: dataplane.ATTACKER_SUCCESS}); err != nil {
		t.Fatalf("SaveOutcomes trial 2: %v", err)
	}
	got, err := st.LoadOutcomes(2)
	if err != nil {
		t.Fatalf("LoadOutcomes: %v", err)
	}
	if got[1] != dataplane.ATTACKER_SUCCESS {
		t.Fatalf("trial 2 outcome = %s, want ATTACKER_SUCCESS", got[1])
	}
}
