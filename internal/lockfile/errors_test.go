package lockfile

import (
	"errors"
	"fmt"
	"testing"

	"golang.org/x/sys/unix"
)

func TestOutcomeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Outcome
	}{
		{"nil is success", nil, OutcomeSuccess},
		{"plain error is usage", errors.New("requires 2 args"), OutcomeUsage},
		{"stat", &StepError{Step: StepStat, Err: unix.EACCES}, OutcomeStat},
		{"create", &StepError{Step: StepCreate, Err: unix.EROFS}, OutcomeCreate},
		{"close after create", &StepError{Step: StepCreateClose, Err: unix.EIO}, OutcomeCreateClose},
		{"stat after create", &StepError{Step: StepRestat, Err: unix.EIO}, OutcomeRestat},
		{"not secure", &StepError{Step: StepVerify, Err: ErrNotSecure}, OutcomeNotSecure},
		{"elevate", &StepError{Step: StepElevate, Err: unix.EPERM}, OutcomeElevate},
		{"open", &StepError{Step: StepOpen, Err: unix.EACCES}, OutcomeOpen},
		{"write", &StepError{Step: StepWrite, Err: unix.ENOSPC}, OutcomeWrite},
		{"close", &StepError{Step: StepClose, Err: unix.EIO}, OutcomeClose},
		{"wrapped step error", fmt.Errorf("locked write: %w", &StepError{Step: StepWrite, Err: unix.EIO}), OutcomeWrite},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutcomeOf(tt.err); got != tt.want {
				t.Errorf("OutcomeOf() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStepErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *StepError
		want string
	}{
		{
			name: "not secure",
			err:  &StepError{Step: StepVerify, Path: "note.txt", Err: ErrNotSecure},
			want: "note.txt is not secure. Ignoring.",
		},
		{
			name: "system call failure names the step",
			err:  &StepError{Step: StepElevate, Path: "note.txt", Err: unix.EPERM},
			want: "chmod +w: operation not permitted",
		},
		{
			name: "unknown step",
			err:  &StepError{Step: Step(42), Err: unix.EIO},
			want: "step(42): input/output error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStepErrorUnwrap(t *testing.T) {
	err := &StepError{Step: StepOpen, Path: "note.txt", Err: unix.EACCES}
	if !errors.Is(err, unix.EACCES) {
		t.Error("errors.Is(StepError, EACCES) = false, want true")
	}
}
