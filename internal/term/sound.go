package term

import (
	"log"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const sampleRate = beep.SampleRate(44100)

// Cues are the audible reactions to game events.
type Cues interface {
	Success()
	Failure()
	LevelUp()
}

type silent struct{}

func (silent) Success() {}
func (silent) Failure() {}
func (silent) LevelUp() {}

// Sound plays short sine tones through the default output device.
type Sound struct {
	mu   sync.Mutex
	init bool
	log  *log.Logger
}

// NewSound opens the speaker. Failure is not fatal: the game runs silently
// and the error is logged.
func NewSound(logger *log.Logger) *Sound {
	if logger == nil {
		logger = log.Default()
	}
	s := &Sound{log: logger}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		logger.Printf("audio initialization failed: %v", err)
		return s
	}
	s.init = true
	return s
}

// tones plays each frequency for d, one after another.
func (s *Sound) tones(d time.Duration, freqs ...float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.init {
		return
	}

	seq := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		sine, err := generators.SineTone(sampleRate, f)
		if err != nil {
			s.log.Printf("audio: %v", err)
			return
		}
		seq = append(seq, beep.Take(sampleRate.N(d), sine))
	}
	speaker.Play(beep.Seq(seq...))
}

func (s *Sound) Success() { s.tones(80*time.Millisecond, 660, 880) }
func (s *Sound) Failure() { s.tones(120*time.Millisecond, 330, 220) }
func (s *Sound) LevelUp() { s.tones(70*time.Millisecond, 523, 659, 784, 1047) }

func (s *Sound) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.init {
		speaker.Close()
		s.init = false
	}
}
