package engine

// Stage is one step of the per-record resolution cycle.
type Stage int

// Stages in cycle order. A record passes through every stage exactly once;
// optional stages whose input is absent are skipped, not omitted.
const (
	StageOriginal Stage = iota
	StageSpeaker
	StageElicitor
	StageEnterer
	StageModifier
	StageVerifier
	StageUtility
	StageInterlinear
)

var stageNames = [...]string{
	StageOriginal:    "Original",
	StageSpeaker:     "Speaker",
	StageElicitor:    "Elicitor",
	StageEnterer:     "Enterer",
	StageModifier:    "Modifier",
	StageVerifier:    "Verifier",
	StageUtility:     "Utility",
	StageInterlinear: "Interlinear",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return "Unknown"
	}
	return stageNames[s]
}

// Next returns the stage that follows s. Interlinear wraps to Original.
func (s Stage) Next() Stage {
	if s == StageInterlinear {
		return StageOriginal
	}
	return s + 1
}

// Stages lists the cycle in order.
func Stages() []Stage {
	out := make([]Stage, len(stageNames))
	for i := range out {
		out[i] = Stage(i)
	}
	return out
}
