package catch

import "github.com/faideww/fishon/internal/fish"

// View is a read-only picture of the machine for rendering.
type View struct {
	State State
	Mode  Mode
	Fish  fish.FishType // set from Engaging until the attempt ends

	FishPos  float64
	Catcher  float64
	Zone     float64
	Progress float64

	WindowCenter float64
	WindowWidth  float64

	Outcome    Outcome // valid in Success and Failure
	HasOutcome bool
}

func (m *Machine) View() View {
	v := View{State: m.state, Mode: m.cfg.Mode}
	if a := m.att; a != nil && m.state >= Engaging {
		v.Fish = a.fish
		v.FishPos = a.fishPos
		v.Catcher = a.catcher
		v.Zone = a.zone
		v.Progress = a.progress
		v.WindowCenter = a.windowCenter
		v.WindowWidth = a.windowWidth
	}
	if (m.state == Success || m.state == Failure) && m.last != nil {
		v.Outcome = *m.last
		v.HasOutcome = true
	}
	return v
}
