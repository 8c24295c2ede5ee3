package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	appLog "weekcal/internal/log"
	"weekcal/internal/model"
	"weekcal/internal/timerange"
)

// CSVStore keeps one event per CSV record in a single file.
//
// Insert appends a record. Update and Delete rewrite the whole file through
// a temporary file in the same directory that is renamed over the original,
// so the file is always either fully old or fully new.
type CSVStore struct {
	path    string
	codec   *Codec
	ids     IDGenerator
	checker RecurrenceChecker

	// open opens the store file for reading.
	open func(name string) (io.ReadCloser, error)
}

// NewCSV returns a store backed by path. The file need not exist yet; a
// missing file reads as empty.
func NewCSV(path string, codec *Codec, ids IDGenerator, checker RecurrenceChecker) *CSVStore {
	if codec == nil {
		codec = NewCodec(nil)
	}
	if ids == nil {
		ids = UUIDGenerator{}
	}
	return &CSVStore{path: path, codec: codec, ids: ids, checker: checker, open: openFile}
}

func (s *CSVStore) Path() string { return s.path }

// EnsureFile creates an empty store file (and its directory) if missing.
func (s *CSVStore) EnsureFile() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	return f.Close()
}

func (s *CSVStore) Find(id model.EventID) (model.Event, bool, error) {
	return find(s.All(), id)
}

func (s *CSVStore) FindByStartDate(r timerange.Range) iter.Seq2[model.Event, error] {
	return filter(s.All(), s.checker, r)
}

func (s *CSVStore) HasEventInRange(r timerange.Range) (bool, error) {
	return exists(s.FindByStartDate(r))
}

// All yields every stored event in file order.
func (s *CSVStore) All() iter.Seq2[model.Event, error] {
	return func(yield func(model.Event, error) bool) {
		for rec, err := range s.records() {
			if err != nil {
				yield(model.Event{}, err)
				return
			}
			e, err := s.codec.Decode(rec)
			if err != nil {
				yield(model.Event{}, fmt.Errorf("%s: %w", s.path, err))
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// records yields raw CSV records. The file is open only while iterating.
func (s *CSVStore) records() iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		f, err := s.open(s.path)
		if err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				yield(nil, err)
			}
			return
		}
		defer f.Close()

		r := csv.NewReader(f)
		// Field count is checked by the codec so the error names the field.
		r.FieldsPerRecord = -1
		for {
			rec, err := r.Read()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(nil, fmt.Errorf("%w: %s: %w", ErrDecode, s.path, err))
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func (s *CSVStore) Insert(e model.Event) error {
	rec, err := s.codec.Encode(e)
	if err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return err
	}
	w := newWriter(f)
	if err := w.Write(rec); err != nil {
		f.Close()
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}

	appLog.Debug("event inserted", "id", e.ID, "path", s.path)
	return nil
}

func (s *CSVStore) Update(e model.Event) error {
	return s.rewrite(e, false)
}

func (s *CSVStore) Delete(e model.Event) error {
	return s.rewrite(e, true)
}

func (s *CSVStore) GenerateID() model.EventID {
	return s.ids.Generate()
}

// rewrite copies every record into a temporary file, replacing (or, with
// remove, dropping) the records whose ID equals target's, then renames the
// temporary file over the store. Any failure before the rename leaves the
// store untouched.
func (s *CSVStore) rewrite(target model.Event, remove bool) error {
	var replacement []string
	if !remove {
		var err error
		if replacement, err = s.codec.Encode(target); err != nil {
			return err
		}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".weekcal-events-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	// Ensure we clean up temp file on error; after the rename this is a no-op.
	defer os.Remove(tmpName)

	matched, written, err := s.copyRecords(tmp, target.ID, replacement, remove)
	if err != nil {
		tmp.Close()
		return err
	}

	// Flush and close before chmod/rename.
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	mode := fs.FileMode(0o600)
	if info, err := os.Stat(s.path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return err
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		return err
	}

	appLog.Debug("events file rewritten",
		"path", s.path,
		"id", target.ID,
		"delete", remove,
		"matched", matched,
		"rows", written,
	)
	return nil
}

func (s *CSVStore) copyRecords(dst io.Writer, id model.EventID, replacement []string, remove bool) (matched, written int, err error) {
	w := newWriter(dst)
	for rec, err := range s.records() {
		if err != nil {
			return matched, written, err
		}
		// Decode every record so a corrupt store is never silently carried over.
		e, err := s.codec.Decode(rec)
		if err != nil {
			return matched, written, fmt.Errorf("%s: %w", s.path, err)
		}
		if e.ID == id {
			matched++
			if remove {
				continue
			}
			rec = replacement
		}
		if err := w.Write(rec); err != nil {
			return matched, written, err
		}
		written++
	}
	w.Flush()
	return matched, written, w.Error()
}

func openFile(name string) (io.ReadCloser, error) {
	return os.Open(name)
}

// newWriter writes CRLF terminated records, the conventional CSV dialect.
func newWriter(w io.Writer) *csv.Writer {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	return cw
}
