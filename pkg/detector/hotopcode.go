package detector

import (
	"fmt"

	"github.com/FuzzingLabs/sui-fuzzer/pkg/coverage"
	"github.com/FuzzingLabs/sui-fuzzer/pkg/vmerror"
)

// HotOpcodeDetector flags traces dominated by a small number of program
// counters, signaling a likely tight loop or recursion: sorting PCs by
// frequency, it triggers when the top quartile accounts for more than 80%
// of total occurrences.
type HotOpcodeDetector struct{}

// NewHotOpcodeDetector builds a HotOpcodeDetector.
func NewHotOpcodeDetector() *HotOpcodeDetector {
	return &HotOpcodeDetector{}
}

// Type implements Detector.
func (d *HotOpcodeDetector) Type() Tag { return BasicOpCodeDetector }

// Detect implements Detector.
func (d *HotOpcodeDetector) Detect(cov coverage.Coverage, _ *vmerror.Error) (bool, string) {
	freq := cov.FrequencyTable()
	if len(freq) == 0 {
		return false, ""
	}
	total := 0
	for _, f := range freq {
		total += f.Count
	}
	if total == 0 {
		return false, ""
	}
	quartile := len(freq) / 4
	top := 0
	for i := 0; i < quartile; i++ {
		top += freq[i].Count
	}
	ratio := float64(top) / float64(total)
	if ratio > 0.8 {
		return true, fmt.Sprintf("hot opcode cluster: top %d of %d distinct PCs account for %.1f%% of executions — likely loop or recursion", quartile, len(freq), ratio*100)
	}
	return false, ""
}
