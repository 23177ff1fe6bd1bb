package service

// Phase is a step of a long-running batch as shown to the operator.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseReading   Phase = "reading"
	PhasePreparing Phase = "preparing"
	PhaseWriting   Phase = "writing"
	PhaseComplete  Phase = "complete"
	PhaseFailed    Phase = "failed"
)

// ProgressFunc receives phase transitions. percent is 0-100.
type ProgressFunc func(phase Phase, percent int, message string)

func (f ProgressFunc) report(phase Phase, percent int, message string) {
	if f != nil {
		f(phase, percent, message)
	}
}
