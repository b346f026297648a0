package ecs

// Condition decides whether a system may run on the current tick.
type Condition func(frame *UpdateFrame) bool

// InState is open while the State[S] singleton equals want.
// It is closed if the state was never added.
func InState[S comparable](want S) Condition {
	return func(frame *UpdateFrame) bool {
		st := GetSingleton[State[S]](frame.Storage)
		return st != nil && st.Current() == want
	}
}

func Always() Condition {
	return func(*UpdateFrame) bool { return true }
}

func Not(c Condition) Condition {
	return func(frame *UpdateFrame) bool { return !c(frame) }
}

// And is open when every condition is open. Evaluation stops at the first
// closed condition.
func And(conds ...Condition) Condition {
	return func(frame *UpdateFrame) bool {
		for _, c := range conds {
			if !c(frame) {
				return false
			}
		}
		return true
	}
}
