package main

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/vantor/beatstrike"
	"github.com/vantor/beatstrike/core"
	"github.com/vantor/beatstrike/engine"
	"github.com/vantor/beatstrike/event"
	"github.com/vantor/beatstrike/status"
)

const (
	frameInterval = 16 * time.Millisecond // ~60 FPS
	beatFlashMs   = 120
	dummyCount    = 3
	dummyMaxHP    = 100
)

// dummy is a practice target standing in the attack range
type dummy struct {
	id core.Entity
	hp int
}

func (d *dummy) EntityID() core.Entity { return d.id }
func (d *dummy) Damageable() bool      { return d.hp > 0 }

func (d *dummy) TakeDamage(amount int) bool {
	d.hp -= amount
	if d.hp < 0 {
		d.hp = 0
	}
	return d.hp == 0
}

// demo renders the session state and feeds key presses into the combo chain
// It is both a press source and a bus subscriber
type demo struct {
	screen tcell.Screen
	sess   *beatstrike.Core
	alloc  *core.EntityAllocator
	logger *zap.Logger

	press func(at time.Time)

	dummies []*dummy

	stats *status.SessionStats

	width, height int
	beatFlash     time.Time
	beatIndex     int
	streak        int
	lastReset     string
	strongFlash   time.Time
}

func newDemo(sess *beatstrike.Core, alloc *core.EntityAllocator, logger *zap.Logger) (*demo, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	d := &demo{
		screen:    screen,
		sess:      sess,
		alloc:     alloc,
		logger:    logger,
		stats:     status.NewSessionStats(),
		beatIndex: engine.BeatIndexNone,
	}
	d.stats.Subscribe(sess.Bus())
	d.width, d.height = screen.Size()
	core.SetCrashCleanup(screen.Fini)
	d.spawnDummies()

	sess.Combo().RegisterPressSource(d)
	bus := sess.Bus()
	bus.Subscribe(event.EventBeatTick, d)
	bus.Subscribe(event.EventStreakChanged, d)
	bus.Subscribe(event.EventAttackStarted, d)
	bus.Subscribe(event.EventAttackResolved, d)
	bus.Subscribe(event.EventComboReset, d)
	return d, nil
}

// SetPressHandler installs the combo controller's press callback
func (d *demo) SetPressHandler(h func(at time.Time)) {
	d.press = h
}

// HandleEvent updates the HUD state from session events
func (d *demo) HandleEvent(ev event.Event) {
	switch ev.Type {
	case event.EventBeatTick:
		if p, ok := ev.Payload.(*event.BeatTickPayload); ok {
			d.beatFlash = time.Now()
			d.beatIndex = p.BeatIndex
		}
	case event.EventStreakChanged:
		if p, ok := ev.Payload.(*event.StreakChangedPayload); ok {
			d.streak = p.Streak
		}
	case event.EventAttackStarted:
		if p, ok := ev.Payload.(*event.AttackStartedPayload); ok {
			if p.Strong {
				d.strongFlash = time.Now()
			}
			// Every standing dummy is in range
			for _, target := range d.dummies {
				d.sess.Resolver().OnOverlap(target)
			}
		}
	case event.EventAttackResolved:
		if p, ok := ev.Payload.(*event.AttackResolvedPayload); ok {
			d.streak = p.Streak
		}
	case event.EventComboReset:
		if p, ok := ev.Payload.(*event.ComboResetPayload); ok {
			d.streak = 0
			d.lastReset = p.Reason
		}
	}
}

func (d *demo) spawnDummies() {
	d.dummies = d.dummies[:0]
	for i := 0; i < dummyCount; i++ {
		d.dummies = append(d.dummies, &dummy{id: d.alloc.Next(), hp: dummyMaxHP})
	}
}

// Run drives the session loop until quit, or for the given duration if nonzero
func (d *demo) Run(duration time.Duration) error {
	d.sess.Start(d.sess.BeatClock().Period())

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	var timeout <-chan time.Time
	if duration > 0 {
		timeout = time.After(duration)
	}

	eventChan := make(chan tcell.Event, 100)
	core.Go(func() {
		for {
			eventChan <- d.screen.PollEvent()
		}
	})

	for {
		select {
		case <-ticker.C:
			d.sess.Tick()
			d.draw()
		case <-timeout:
			d.sess.Stop()
			return nil
		case ev := <-eventChan:
			if !d.handleInput(ev) {
				d.sess.Stop()
				return nil
			}
		}
	}
}

func (d *demo) handleInput(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ':
			if d.press != nil {
				d.press(time.Now())
			}
		case 'p':
			if d.sess.Paused() {
				d.sess.Resume()
			} else {
				d.sess.Pause()
			}
		case 'r':
			d.sess.Combo().ResetCombo("manual")
			d.spawnDummies()
			d.lastReset = ""
		}
	case *tcell.EventResize:
		d.width, d.height = ev.Size()
		d.screen.Sync()
	}
	return true
}

func (d *demo) draw() {
	d.screen.Clear()

	cfg := d.sess.Config()
	now := time.Now()

	d.drawText(2, 1, tcell.StyleDefault.Bold(true),
		fmt.Sprintf("beatstrike  %.0f bpm", cfg.BPM))

	// Beat lamp, accented on the first beat of the bar
	lampStyle := tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
	if now.Sub(d.beatFlash).Milliseconds() < beatFlashMs {
		if d.beatIndex == 0 {
			lampStyle = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
		} else {
			lampStyle = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
		}
	}
	d.drawText(2, 3, lampStyle, "● BEAT")

	streakStyle := tcell.StyleDefault
	if now.Sub(d.strongFlash).Milliseconds() < 400 {
		streakStyle = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	}
	d.drawText(12, 3, streakStyle,
		fmt.Sprintf("combo %d/%d", d.streak, cfg.ComboThreshold))

	state := "idle"
	if d.sess.Paused() {
		state = "paused"
	} else if d.sess.Combo().AttackInProgress() {
		state = "attacking"
		if d.sess.Resolver().IsStrong() {
			state = "STRONG"
		}
	}
	d.drawText(28, 3, tcell.StyleDefault, state)

	if d.lastReset != "" {
		d.drawText(40, 3, tcell.StyleDefault.Foreground(tcell.ColorRed),
			"reset: "+d.lastReset)
	}

	for i, target := range d.dummies {
		d.drawDummy(2, 5+i*2, target)
	}

	d.drawText(2, 6+len(d.dummies)*2, tcell.StyleDefault,
		fmt.Sprintf("hits %d  kills %d  best %d  rate %.0f%%",
			d.stats.Hits.Load(), d.stats.Kills.Load(),
			d.stats.BestStreak.Load(), d.stats.HitRate.Get()*100))
	d.drawText(2, 8+len(d.dummies)*2, tcell.StyleDefault.Foreground(tcell.ColorDarkGray),
		"space strike   p pause   r reset   q quit")

	d.screen.Show()
}

func (d *demo) drawDummy(x, y int, target *dummy) {
	const barWidth = 20

	style := tcell.StyleDefault
	label := fmt.Sprintf("dummy %-3d", target.id)
	if target.hp == 0 {
		style = tcell.StyleDefault.Foreground(tcell.ColorDarkGray)
		label += " down"
	}
	d.drawText(x, y, style, label)

	filled := target.hp * barWidth / dummyMaxHP
	for i := 0; i < barWidth; i++ {
		ch := ' '
		barStyle := tcell.StyleDefault.Background(tcell.ColorDarkRed)
		if i < filled {
			barStyle = tcell.StyleDefault.Background(tcell.ColorGreen)
		}
		d.screen.SetContent(x+14+i, y, ch, nil, barStyle)
	}
}

func (d *demo) drawText(x, y int, style tcell.Style, text string) {
	for i, r := range text {
		d.screen.SetContent(x+i, y, r, nil, style)
	}
}

// Close restores the terminal
func (d *demo) Close() {
	core.SetCrashCleanup(nil)
	d.screen.Fini()
}
