package pipeline

import "fmt"

// State is a pipeline run state. Runs advance through the stage states in
// order and end in Complete or Failed; both are absorbing.
type State string

const (
	StateInit               State = "init"
	StateFetching           State = "fetching"
	StateInspecting         State = "inspecting"
	StateCleaning           State = "cleaning"
	StateFeatureEngineering State = "feature_engineering"
	StateTraining           State = "training"
	StatePredicting         State = "predicting"
	StateAnalyzing          State = "analyzing"
	StateMonitoring         State = "monitoring"
	StateReportCombining    State = "report_combining"
	StateComplete           State = "complete"
	StateFailed             State = "failed"
)

// stageOrder is the forward path of a successful run.
var stageOrder = []State{
	StateInit,
	StateFetching,
	StateInspecting,
	StateCleaning,
	StateFeatureEngineering,
	StateTraining,
	StatePredicting,
	StateAnalyzing,
	StateMonitoring,
	StateReportCombining,
	StateComplete,
}

// Terminal reports whether the state absorbs: no transitions leave it.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// CanTransition reports whether from→to is a legal move: one step forward
// along the stage order, or any non-terminal state to Failed.
func CanTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateFailed {
		return true
	}
	for i, s := range stageOrder {
		if s == from {
			return i+1 < len(stageOrder) && stageOrder[i+1] == to
		}
	}
	return false
}

// Machine tracks a run's state and rejects illegal transitions.
type Machine struct {
	current State
}

// NewMachine creates a machine in StateInit.
func NewMachine() *Machine {
	return &Machine{current: StateInit}
}

// Current returns the machine's state.
func (m *Machine) Current() State {
	return m.current
}

// To moves the machine to next, or returns an error describing the illegal
// transition without changing state.
func (m *Machine) To(next State) error {
	if !CanTransition(m.current, next) {
		return fmt.Errorf("illegal transition %s -> %s", m.current, next)
	}
	m.current = next
	return nil
}
