package pipeline

import (
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/log"
)

// logListener is the headless scheduler listener, it counts and logs the
// notifications instead of rendering the screen or playing sound.
type logListener struct {
	logger *log.Logger

	redraws    uint64
	soundTicks uint64
	playing    bool
}

func newLogListener(logger *log.Logger) *logListener {
	return &logListener{
		logger: logger,
	}
}

func (l *logListener) Redraw(screen []byte) {
	l.redraws++

	lit := 0
	for _, pixel := range screen {
		if pixel != 0 {
			lit++
		}
	}
	l.logger.Debug("Redraw",
		log.Int("frame", int(l.redraws)),
		log.Int("pixels", lit),
		log.Int("of", chip8.ScreenSize))
}

func (l *logListener) PlaySound() {
	l.soundTicks++
	if !l.playing {
		l.playing = true
		l.logger.Debug("Sound started")
	}
}

func (l *logListener) StopSound() {
	if l.playing {
		l.playing = false
		l.logger.Debug("Sound stopped")
	}
}
