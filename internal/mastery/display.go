package mastery

// Badge returns a short marker for a set's stored mastery, empty when the
// set is unmastered.
func Badge(stored Level, ok bool) string {
	if !ok {
		return ""
	}
	switch stored {
	case Ninja:
		return "★ Ninja"
	default:
		return "✓ " + stored.Name()
	}
}

// LevelLabel renders a level for selection lists, marking locked ones.
func LevelLabel(l Level, unlocked bool) string {
	label := l.Name() + " (" + l.SpeedThreshold().String() + ")"
	if !unlocked {
		return "🔒 " + label
	}
	return label
}
