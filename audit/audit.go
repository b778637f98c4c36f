package audit

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"go.etcd.io/bbolt"

	"github.com/chymrt/chym/core"
)

var (
	activationsBucket = []byte("activations")
	faultsBucket      = []byte("faults")
)

// ActivationRecord is one Recorder.RecordActivation entry.
type ActivationRecord struct {
	Timestamp string   `json:"timestamp"`
	Site      string   `json:"site"`
	Warnings  []string `json:"warnings,omitempty"`
	Errors    []string `json:"errors,omitempty"`
}

// FaultRecord is one Recorder.RecordFault entry.
type FaultRecord struct {
	Timestamp string `json:"timestamp"`
	Reaction  string `json:"reaction"`
	Reason    string `json:"reason"`
	Retried   bool   `json:"retried"`
}

// Recorder appends activation diagnostics and terminal reaction
// faults to a BoltDB file, mirroring the teacher's
// cmd/mservice/storage/bolt.Storage in shape (Debug flag, logf,
// Open/Close) but as a write-mostly audit trail rather than crew
// machine-state storage.
type Recorder struct {
	Debug    bool
	filename string
	db       *bbolt.DB
}

// NewRecorder makes a Recorder backed by filename. Call Open before
// recording anything.
func NewRecorder(filename string) *Recorder {
	return &Recorder{filename: filename}
}

func (r *Recorder) logf(format string, args ...interface{}) {
	if r.Debug {
		log.Printf("chym/audit: "+format, args...)
	}
}

// Open opens (creating if needed) the BoltDB file and its buckets.
func (r *Recorder) Open() error {
	db, err := bbolt.Open(r.filename, 0644, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return err
	}
	r.db = db

	return db.Update(func(tx *bbolt.Tx) error {
		if _, err := tx.CreateBucketIfNotExists(activationsBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucketIfNotExists(faultsBucket)
		return err
	})
}

// Close closes the BoltDB file.
func (r *Recorder) Close() error {
	return r.db.Close()
}

// RecordActivation appends the WarningsAndErrors an Activate call
// produced (or attempted to produce — wae may be non-nil even when
// err made activation fail) for site.
func (r *Recorder) RecordActivation(site string, wae *core.WarningsAndErrors, err error) error {
	rec := ActivationRecord{Timestamp: core.Timestamp(), Site: site}
	if wae != nil {
		rec.Warnings = wae.Warnings
		rec.Errors = wae.Errors
	}
	if err != nil && len(rec.Errors) == 0 {
		rec.Errors = []string{err.Error()}
	}

	r.logf("RecordActivation %s: %d warning(s), %d error(s)", site, len(rec.Warnings), len(rec.Errors))
	return r.put(activationsBucket, rec)
}

// RecordFault appends a terminal reaction fault: a UserReactionError
// or RuntimeProtocolError that the JoinDefinition caught rather than
// letting propagate.
func (r *Recorder) RecordFault(reaction string, reason error, retried bool) error {
	rec := FaultRecord{Timestamp: core.Timestamp(), Reaction: reaction, Reason: reason.Error(), Retried: retried}
	r.logf("RecordFault %s: %s (retried=%v)", reaction, rec.Reason, retried)
	return r.put(faultsBucket, rec)
}

func (r *Recorder) put(bucket []byte, rec interface{}) error {
	js, err := json.Marshal(rec)
	if err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return fmt.Errorf("chym/audit: bucket %q missing — was Open called?", bucket)
		}
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		key := []byte(fmt.Sprintf("%020d", seq))
		return b.Put(key, js)
	})
}

// Activations returns every recorded ActivationRecord, oldest first.
func (r *Recorder) Activations() ([]ActivationRecord, error) {
	var out []ActivationRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(activationsBucket)
		return b.ForEach(func(_, v []byte) error {
			var rec ActivationRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	return out, err
}

// Faults returns every recorded FaultRecord, oldest first.
func (r *Recorder) Faults() ([]FaultRecord, error) {
	var out []FaultRecord
	err := r.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(faultsBucket)
		return b.ForEach(func(_, v []byte) error {
			var rec FaultRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			out = append(out, rec)
			return nil
		})
	})
	return out, err
}
