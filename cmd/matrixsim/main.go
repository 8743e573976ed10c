//go:build !tinygo

// Command matrixsim runs the keypad controller against a simulated board in
// a desktop window. Keyboard keys close matrix switches; the window plays
// the bus master.
//
//	1 2 3 4 5 6 7 8 9 0 Q W E ...   hold to close switch 0, 1, 2, ...
//	Space                           read the event register
//	Tab                             probe
//	Esc                             quit
package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"strconv"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"keymatrix-go/drivers/kbdctl"
	"keymatrix-go/services/keypad"
	"keymatrix-go/types"
	"keymatrix-go/x/logx"
)

// switchKeys maps host keys to switch indexes in order.
var switchKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8,
	ebiten.KeyDigit9, ebiten.KeyDigit0,
	ebiten.KeyQ, ebiten.KeyW, ebiten.KeyE, ebiten.KeyR, ebiten.KeyT,
	ebiten.KeyY, ebiten.KeyU, ebiten.KeyI, ebiten.KeyO, ebiten.KeyP,
	ebiten.KeyA, ebiten.KeyS, ebiten.KeyD, ebiten.KeyF, ebiten.KeyG,
	ebiten.KeyH, ebiten.KeyJ, ebiten.KeyK, ebiten.KeyL,
	ebiten.KeyZ, ebiten.KeyX, ebiten.KeyC, ebiten.KeyV, ebiten.KeyB,
	ebiten.KeyN, ebiten.KeyM,
}

const historyLines = 8

var errQuit = errors.New("quit")

type game struct {
	cfg  keypad.Config
	svc  *keypad.Service
	sim  *keypad.Sim
	dev  kbdctl.Device
	log  *logx.Logger
	evs  []types.KeyEvent
	hist []string
}

func (g *game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return errQuit
	}
	n := g.cfg.Board.Keys()
	for i, k := range switchKeys {
		if i >= n {
			break
		}
		switch {
		case inpututil.IsKeyJustPressed(k):
			g.sim.Press(i)
		case inpututil.IsKeyJustReleased(k):
			g.sim.Release(i)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) {
		if err := g.dev.Probe(); err != nil {
			g.note("probe: " + err.Error())
		} else {
			g.note("probe: ok")
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		g.read()
	}
	return nil
}

func (g *game) read() {
	n, err := g.dev.ReadEvents(g.evs)
	if err != nil && n == 0 {
		g.note("read: " + err.Error())
		return
	}
	if n == 0 {
		g.note("read: empty")
		return
	}
	var b strings.Builder
	b.WriteString("read:")
	for _, e := range g.evs[:n] {
		b.WriteString(" ")
		b.WriteString(strconv.Itoa(int(e.Index)))
		if e.Pressed {
			b.WriteString("+")
		} else {
			b.WriteString("-")
		}
	}
	if err != nil {
		b.WriteString(" (" + err.Error() + ")")
	}
	g.note(b.String())
}

func (g *game) note(s string) {
	g.log.Info(s)
	g.hist = append(g.hist, s)
	if len(g.hist) > historyLines {
		g.hist = g.hist[len(g.hist)-historyLines:]
	}
}

func (g *game) Draw(screen *ebiten.Image) {
	var b strings.Builder
	b.WriteString(g.cfg.Board.Name + "  addr 0x" + strconv.FormatUint(uint64(g.cfg.Address), 16) + "  mode " + g.cfg.Mode + "\n\n")

	cols := len(g.cfg.Board.Cols)
	for r := range g.cfg.Board.Rows {
		for c := 0; c < cols; c++ {
			idx := r*cols + c
			switch {
			case g.svc.Pressed(idx):
				b.WriteString(" [#]")
			case g.sim.Closed(idx):
				b.WriteString(" [+]") // closed, not yet scanned
			default:
				b.WriteString(" [ ]")
			}
		}
		b.WriteString("\n")
	}

	st := g.svc.Stats()
	b.WriteString("\nstate " + st.State.String())
	if g.sim.Suspended() {
		b.WriteString(" (gated)")
	}
	if st.Mode == keypad.ModeIndicator {
		b.WriteString("  indicator " + strconv.FormatBool(g.sim.Indicator()))
	}
	b.WriteString("\nscans " + u(st.Scans) + "  sleeps " + u(st.Sleeps) + "  wakes " + u(st.Wakes) + "\n")
	b.WriteString("wake irqs " + u(st.WakeSignals) + "  coalesced " + u(st.Coalesced) + "\n")
	b.WriteString("queue " + strconv.Itoa(st.Queued) + "/" + strconv.Itoa(st.Capacity) + "  drops " + u(st.Drops) + "\n")
	b.WriteString("reads " + u(st.Reads) + "  served " + u(st.Served) + "  reg 0x" + strconv.FormatUint(uint64(st.Selected), 16) + "\n\n")
	for _, h := range g.hist {
		b.WriteString(h + "\n")
	}
	ebitenutil.DebugPrint(screen, b.String())
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) { return 320, 300 }

func u(v uint32) string { return strconv.FormatUint(uint64(v), 10) }

func main() {
	board := flag.String("board", "", "YAML board file (default: reference 4x3)")
	flag.Parse()

	cfg := keypad.DefaultConfig()
	if *board != "" {
		c, err := keypad.LoadConfig(*board)
		if err != nil {
			os.Stderr.WriteString("matrixsim: " + err.Error() + "\n")
			os.Exit(2)
		}
		cfg = c
	}
	log := logx.New(os.Stderr, "matrixsim", logx.ParseLevel(cfg.LogLevel))

	svc, sim, err := keypad.NewSim(cfg, log.With("keypad"))
	if err != nil {
		log.Error("init failed", "err", err)
		os.Exit(1)
	}
	cfg = svc.Config()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		if err := svc.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("controller stopped", "err", err)
		}
	}()

	dev := kbdctl.New(sim.Bus())
	dev.Configure(kbdctl.Config{
		Address:       cfg.Address,
		ProbeRegister: cfg.ProbeRegister,
		EventRegister: cfg.EventRegister,
		Capacity:      cfg.QueueCapacity,
	})

	g := &game{
		cfg: cfg,
		svc: svc,
		sim: sim,
		dev: dev,
		log: log,
		evs: make([]types.KeyEvent, cfg.QueueCapacity/types.EventBytes),
	}
	ebiten.SetWindowTitle("matrixsim: " + cfg.Board.Name)
	ebiten.SetWindowSize(640, 600)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, errQuit) {
		log.Error("window", "err", err)
	}
	cancel()
	sim.Close()
	svc.Close()
}
