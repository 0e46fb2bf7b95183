package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
)

// CorpusRecord is the on-disk shape of a persisted Coverage entry: the
// inputs vector plus the PC sequence.
type CorpusRecord struct {
	Inputs []WireValue `yaml:"inputs"`
	Trace  []uint64    `yaml:"trace"`
}

// CorpusStore reads and writes one-record-per-file corpus entries under a
// directory, created lazily on first write. The filesystem is written only
// by the coordinator.
type CorpusStore struct {
	dir string
}

// NewCorpusStore builds a CorpusStore rooted at dir. The directory is not
// created until the first Save call.
func NewCorpusStore(dir string) *CorpusStore {
	return &CorpusStore{dir: dir}
}

// Save writes c to a new file named by the current timestamp, in
// `YYYY-MM-DD--HH:MM:SS` form. Collisions within one second overwrite the
// existing file, a documented non-critical behavior.
func (s *CorpusStore) Save(c coverage.Coverage, now time.Time) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("persistence: create corpus dir: %w", err)
	}

	rec := CorpusRecord{Trace: make([]uint64, len(c.Data))}
	for i, pc := range c.Data {
		rec.Trace[i] = uint64(pc)
	}
	for _, in := range c.Inputs {
		rec.Inputs = append(rec.Inputs, ValueToWire(in))
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("persistence: marshal corpus entry: %w", err)
	}

	name := now.Format("2006-01-02--15:04:05") + ".yaml"
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("persistence: write corpus entry: %w", err)
	}
	return path, nil
}

// Load reads a single corpus entry back into a Coverage record.
func (s *CorpusStore) Load(path string) (coverage.Coverage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return coverage.Coverage{}, fmt.Errorf("persistence: read corpus entry: %w", err)
	}
	var rec CorpusRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return coverage.Coverage{}, fmt.Errorf("persistence: unmarshal corpus entry: %w", err)
	}

	trace := make([]coverage.PC, len(rec.Trace))
	for i, pc := range rec.Trace {
		trace[i] = coverage.PC(pc)
	}
	inputs, err := decodeInputs(rec.Inputs)
	if err != nil {
		return coverage.Coverage{}, err
	}
	return coverage.New(inputs, trace), nil
}

// LoadAll reads every corpus entry under dir into a coverage.Set, the
// bootstrap snapshot the coordinator hands to every worker at startup. A
// missing directory is treated as an empty corpus, not an error.
func (s *CorpusStore) LoadAll() (*coverage.Set, error) {
	set := coverage.NewSet()
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("persistence: read corpus dir: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		c, err := s.Load(filepath.Join(s.dir, e.Name()))
		if err != nil {
			return nil, err
		}
		set.Insert(c)
	}
	return set, nil
}
