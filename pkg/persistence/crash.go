package persistence

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

// CrashRecord is the on-disk shape of a persisted Crash entry: target
// module, target function, inputs, and the error variant with its payload.
type CrashRecord struct {
	TargetModule   string      `yaml:"target_module"`
	TargetFunction string      `yaml:"target_function"`
	Inputs         []WireValue `yaml:"inputs"`
	ErrorKind      string      `yaml:"error_kind"`
	ErrorMessage   string      `yaml:"error_message"`
}

// CrashStore reads and writes one-record-per-file crash entries.
type CrashStore struct {
	dir string
}

// NewCrashStore builds a CrashStore rooted at dir.
func NewCrashStore(dir string) *CrashStore {
	return &CrashStore{dir: dir}
}

// Save writes c to a new file named by the current timestamp suffixed by
// the target function.
func (s *CrashStore) Save(c coverage.Crash, now time.Time) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("persistence: create crashes dir: %w", err)
	}

	rec := CrashRecord{
		TargetModule:   c.TargetModule,
		TargetFunction: c.TargetFunction,
		ErrorKind:      c.Error.Kind.String(),
		ErrorMessage:   c.Error.Message,
	}
	for _, in := range c.Inputs {
		rec.Inputs = append(rec.Inputs, ValueToWire(in))
	}

	data, err := yaml.Marshal(rec)
	if err != nil {
		return "", fmt.Errorf("persistence: marshal crash entry: %w", err)
	}

	name := fmt.Sprintf("%s--%s.yaml", now.Format("2006-01-02--15:04:05"), c.TargetFunction)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("persistence: write crash entry: %w", err)
	}
	return path, nil
}

// Load reads a single crash entry back into a Crash record.
func (s *CrashStore) Load(path string) (coverage.Crash, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return coverage.Crash{}, fmt.Errorf("persistence: read crash entry: %w", err)
	}
	var rec CrashRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return coverage.Crash{}, fmt.Errorf("persistence: unmarshal crash entry: %w", err)
	}

	inputs, err := decodeInputs(rec.Inputs)
	if err != nil {
		return coverage.Crash{}, err
	}
	kind, ok := errorKindByName[rec.ErrorKind]
	if !ok {
		return coverage.Crash{}, fmt.Errorf("persistence: unknown error kind %q", rec.ErrorKind)
	}
	return coverage.NewCrash(rec.TargetModule, rec.TargetFunction, inputs, vmerror.New(kind, rec.ErrorMessage)), nil
}

var errorKindByName = map[string]vmerror.Kind{
	"Abort":                vmerror.Abort,
	"Runtime":              vmerror.Runtime,
	"OutOfBound":           vmerror.OutOfBound,
	"OutOfGas":             vmerror.OutOfGas,
	"ArithmeticError":      vmerror.ArithmeticError,
	"MemoryLimitExceeded":  vmerror.MemoryLimitExceeded,
	"Unknown":              vmerror.Unknown,
}

// LoadAll reads every crash entry under dir into a coverage.CrashSet.
func (s *CrashStore) LoadAll() (*coverage.CrashSet, error) {
	set := coverage.NewCrashSet()
	entries, err := os.ReadDir(s.dir)
	if os.IsNotExist(err) {
		return set, nil
	}
	if err != nil {
		return nil, fmt.Errorf("persistence: read crashes dir: %w", err)
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
