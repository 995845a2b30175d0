package mastery

// SetState is a set's position in the mastery lifecycle for one user.
type SetState string

const (
	StateUnmastered     SetState = "unmastered"
	StateMasteredLevel1 SetState = "mastered-level1"
	StateMasteredLevel2 SetState = "mastered-level2"
	StateMasteredLevel3 SetState = "mastered-level3"
	StateMasteredNinja  SetState = "mastered-ninja"
)

// StateOf maps a stored set mastery to its lifecycle state.
func StateOf(stored Level, ok bool) SetState {
	if !ok {
		return StateUnmastered
	}
	switch stored {
	case Level1:
		return StateMasteredLevel1
	case Level2:
		return StateMasteredLevel2
	case Level3:
		return StateMasteredLevel3
	case Ninja:
		return StateMasteredNinja
	default:
		return StateUnmastered
	}
}

// Terminal reports whether no further transition is defined from s.
func (s SetState) Terminal() bool { return s == StateMasteredNinja }

// StateTransition records a set mastery change for display.
type StateTransition struct {
	SetID string
	From  SetState
	To    SetState
	Level Level
}
