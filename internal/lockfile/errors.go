package lockfile

import (
	"errors"
	"fmt"
)

// ErrNotSecure reports a target whose permission bits are not 000.
var ErrNotSecure = errors.New("file is not secure")

// Outcome is the process-level result code of a locked write
type Outcome int

// Outcome codes are stable; scripts depend on them.
const (
	OutcomeSuccess     Outcome = 0
	OutcomeUsage       Outcome = 1
	OutcomeStat        Outcome = 2
	OutcomeCreate      Outcome = 3
	OutcomeCreateClose Outcome = 4
	OutcomeRestat      Outcome = 5
	OutcomeNotSecure   Outcome = 6
	OutcomeElevate     Outcome = 7
	OutcomeOpen        Outcome = 8
	OutcomeWrite       Outcome = 9
	OutcomeClose       Outcome = 10
)

// Step identifies the protocol step that failed
type Step int

const (
	StepStat Step = iota
	StepCreate
	StepCreateClose
	StepRestat
	StepVerify
	StepElevate
	StepOpen
	StepWrite
	StepClose
)

var stepNames = map[Step]string{
	StepStat:        "stat",
	StepCreate:      "open(create)",
	StepCreateClose: "close(create)",
	StepRestat:      "stat(after create)",
	StepVerify:      "verify",
	StepElevate:     "chmod +w",
	StepOpen:        "open",
	StepWrite:       "write",
	StepClose:       "close",
}

var stepOutcomes = map[Step]Outcome{
	StepStat:        OutcomeStat,
	StepCreate:      OutcomeCreate,
	StepCreateClose: OutcomeCreateClose,
	StepRestat:      OutcomeRestat,
	StepVerify:      OutcomeNotSecure,
	StepElevate:     OutcomeElevate,
	StepOpen:        OutcomeOpen,
	StepWrite:       OutcomeWrite,
	StepClose:       OutcomeClose,
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Outcome returns the outcome code reported when this step fails
func (s Step) Outcome() Outcome {
	return stepOutcomes[s]
}

// StepError is returned by Writer.Write when a protocol step fails
type StepError struct {
	Step Step
	Path string
	Err  error
}

func (e *StepError) Error() string {
	if errors.Is(e.Err, ErrNotSecure) {
		return fmt.Sprintf("%s is not secure. Ignoring.", e.Path)
	}
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// OutcomeOf maps an error returned by Writer.Write to its outcome code.
// A nil error is success; errors that did not come from a protocol step
// are treated as usage errors.
func OutcomeOf(err error) Outcome {
	if err == nil {
		return OutcomeSuccess
	}
	var stepErr *StepError
	if errors.As(err, &stepErr) {
		return stepErr.Step.Outcome()
	}
	return OutcomeUsage
}
