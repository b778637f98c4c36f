package audit

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/chymrt/chym/core"
)

func TestRecordAndReadBack(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "audit.db")

	r := NewRecorder(filename)
	if err := r.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer func() {
		if err := r.Close(); err != nil {
			t.Fatal(err)
		}
	}()

	wae := &core.WarningsAndErrors{Warnings: []string{"Possible deadlock: molecule f may deadlock due to outputs of g"}}
	if err := r.RecordActivation("Join{a(?x); b(?y)}", wae, nil); err != nil {
		t.Fatalf("RecordActivation: %v", err)
	}
	if err := r.RecordFault("decr-reacts", errors.New("boom"), true); err != nil {
		t.Fatalf("RecordFault: %v", err)
	}

	acts, err := r.Activations()
	if err != nil {
		t.Fatalf("Activations: %v", err)
	}
	if len(acts) != 1 || len(acts[0].Warnings) != 1 {
		t.Fatalf("unexpected activations: %+v", acts)
	}

	faults, err := r.Faults()
	if err != nil {
		t.Fatalf("Faults: %v", err)
	}
	if len(faults) != 1 || faults[0].Reaction != "decr-reacts" || !faults[0].Retried {
		t.Fatalf("unexpected faults: %+v", faults)
	}
}

func TestOpenCreatesFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "nested", "audit.db")
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		t.Fatal(err)
	}

	r := NewRecorder(filename)
	if err := r.Open(); err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer r.Close()

	if _, err := os.Stat(filename); err != nil {
		t.Fatalf("expected %s to exist: %v", filename, err)
	}
}
