package term

import (
	"fmt"

	"github.com/faideww/fishon/internal/catch"
	"github.com/gdamore/tcell/v2"
)

type action int

const (
	actNone action = iota
	actCast
	actUp
	actDown
	actCollect
	actBuy1
	actBuy2
	actBuy3
	actBuy4
	actReset
	actDebug
	actQuit
)

func actionFor(key tcell.Key, r rune) action {
	switch key {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actQuit
	case tcell.KeyUp:
		return actUp
	case tcell.KeyDown:
		return actDown
	case tcell.KeyEnter:
		return actCast
	case tcell.KeyRune:
	default:
		return actNone
	}

	switch r {
	case ' ':
		return actCast
	case 'q':
		return actQuit
	case 'c':
		return actCollect
	case '1':
		return actBuy1
	case '2':
		return actBuy2
	case '3':
		return actBuy3
	case '4':
		return actBuy4
	case 'R':
		return actReset
	case 'D':
		return actDebug
	case 'k':
		return actUp
	case 'j':
		return actDown
	}
	return actNone
}

// apply performs a player action. It returns false when the player quits.
func (u *UI) apply(a action) bool {
	switch a {
	case actQuit:
		return false
	case actCast:
		if u.runner.Cast() {
			return true
		}
		if !u.eco.CanSpendEnergy() {
			u.notify(fmt.Sprintf("Out of energy, next in %s", clockTime(u.eco.NextEnergyIn())))
		}
	case actUp:
		u.runner.Move(catch.Up)
	case actDown:
		u.runner.Move(catch.Down)
	case actCollect:
		if n := u.eco.CollectIncome(); n > 0 {
			u.notify(fmt.Sprintf("Collected %d tokens", n))
		} else {
			u.notify("Nothing to collect yet")
		}
	case actBuy1, actBuy2, actBuy3, actBuy4:
		u.buy(int(a - actBuy1))
	case actReset:
		switch u.runner.View().State {
		case catch.Idle, catch.Unavailable:
			u.eco.ResetAll()
			u.notify("Progress reset")
		default:
			u.notify("Finish this cast before resetting")
		}
	case actDebug:
		if u.debug {
			u.eco.AddDebugTokens(debugTokens)
			u.notify(fmt.Sprintf("+%d debug tokens", debugTokens))
		}
	}
	return true
}

func (u *UI) buy(slot int) {
	offers := u.eco.Shop()
	if slot < 0 || slot >= len(offers) {
		return
	}
	o := offers[slot]
	switch {
	case o.Maxed:
		u.notify(o.Upgrade.Name + " is maxed out")
	case !u.eco.PurchaseUpgrade(o.Upgrade.ID):
		u.notify(fmt.Sprintf("%s costs %d tokens", o.Upgrade.Name, o.Cost))
	default:
		u.notify(fmt.Sprintf("%s is now level %d", o.Upgrade.Name, o.Level+1))
	}
}
