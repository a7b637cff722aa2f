package ability

import "fmt"

// Phase is the explicit stage of an ability instance.
type Phase uint8

const (
	PhasePreparing Phase = iota
	PhaseExecuting
	PhaseRecovering
	PhaseDone
)

var phaseNames = [...]string{
	PhasePreparing:  "preparing",
	PhaseExecuting:  "executing",
	PhaseRecovering: "recovering",
	PhaseDone:       "done",
}

func (p Phase) String() string {
	if int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", uint8(p))
}

// IsValid reports whether p is one of the four known phases.
func (p Phase) IsValid() bool {
	return p <= PhaseDone
}

// ParsePhase converts a phase name back to Phase.
func ParsePhase(s string) (Phase, error) {
	for i, name := range phaseNames {
		if name == s {
			return Phase(i), nil
		}
	}
	return 0, fmt.Errorf("unknown phase %q", s)
}
