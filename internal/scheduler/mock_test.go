package scheduler

// recordingListener records the notifications in call order.
type recordingListener struct {
	events  []string
	screens [][]byte
	onStop  func()
}

func (l *recordingListener) Redraw(screen []byte) {
	l.events = append(l.events, "redraw")
	buf := make([]byte, len(screen))
	copy(buf, screen)
	l.screens = append(l.screens, buf)
}

func (l *recordingListener) PlaySound() {
	l.events = append(l.events, "play")
}

func (l *recordingListener) StopSound() {
	l.events = append(l.events, "stop")
	if l.onStop != nil {
		l.onStop()
	}
}
