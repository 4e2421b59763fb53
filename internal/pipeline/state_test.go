package pipeline

import "testing"

func TestStateOrder(t *testing.T) {
	m := NewMachine()
	if m.Current() != StateInit {
		t.Fatalf("initial state = %s", m.Current())
	}

	path := []State{
		StateFetching, StateInspecting, StateCleaning, StateFeatureEngineering,
		StateTraining, StatePredicting, StateAnalyzing, StateMonitoring,
		StateReportCombining, StateComplete,
	}
	for _, next := range path {
		if err := m.To(next); err != nil {
			t.Fatalf("To(%s): %v", next, err)
		}
	}
	if !m.Current().Terminal() {
		t.Error("Complete not terminal")
	}
}

func TestStateNoSkipping(t *testing.T) {
	m := NewMachine()
	if err := m.To(StateTraining); err == nil {
		t.Error("expected error skipping to training")
	}
	if m.Current() != StateInit {
		t.Errorf("state changed on rejected transition: %s", m.Current())
	}
}

func TestStateNoBackwards(t *testing.T) {
	m := NewMachine()
	if err := m.To(StateFetching); err != nil {
		t.Fatalf("To(Fetching): %v", err)
	}
	if err := m.To(StateInspecting); err != nil {
		t.Fatalf("To(Inspecting): %v", err)
	}
	if err := m.To(StateFetching); err == nil {
		t.Error("expected error moving backwards")
	}
}

func TestAnyNonTerminalCanFail(t *testing.T) {
	for _, s := range stageOrder[:len(stageOrder)-1] {
		if !CanTransition(s, StateFailed) {
			t.Errorf("CanTransition(%s, failed) = false", s)
		}
	}
}

func TestTerminalStatesAbsorb(t *testing.T) {
	for _, terminal := range []State{StateComplete, StateFailed} {
		for _, to := range append(stageOrder, StateFailed) {
			if CanTransition(terminal, to) {
				t.Errorf("CanTransition(%s, %s) = true", terminal, to)
			}
		}
	}
}
