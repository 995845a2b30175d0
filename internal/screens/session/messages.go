package session

// timerFiredMsg delivers a practice timer callback on the update loop.
type timerFiredMsg struct {
	id int
}

// sessionEndMsg is sent once the practice controller reports the end.
type sessionEndMsg struct{}
