package campaign

import "fmt"

// Status is the final state of a campaign run.
type Status int

const (
	// StatusCompleted means every contact was attempted and every send succeeded.
	StatusCompleted Status = iota
	// StatusCompletedWithFailures means every contact was attempted and at least
	// one send failed.
	StatusCompletedWithFailures
	// StatusConfigError means the contact source could not be used.
	StatusConfigError
	// StatusNothingToSend means the source was readable but held no address.
	StatusNothingToSend
	// StatusAborted means the campaign was declined at confirmation.
	StatusAborted
	// StatusInterrupted means the run was canceled while sending.
	StatusInterrupted
)

func (s Status) String() string {
	switch s {
	case StatusCompleted:
		return "completed"
	case StatusCompletedWithFailures:
		return "completed-with-failures"
	case StatusConfigError:
		return "config-error"
	case StatusNothingToSend:
		return "nothing-to-send"
	case StatusAborted:
		return "aborted"
	case StatusInterrupted:
		return "interrupted"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// ExitCode returns the process exit code for s.
func (s Status) ExitCode() int {
	switch s {
	case StatusCompleted:
		return 0
	case StatusConfigError:
		return 1
	case StatusCompletedWithFailures:
		return 2
	case StatusNothingToSend:
		return 3
	case StatusAborted:
		return 4
	case StatusInterrupted:
		return 130
	default:
		return 1
	}
}

func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
