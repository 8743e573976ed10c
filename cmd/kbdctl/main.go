// Command kbdctl is the keypad controller firmware. Board wiring comes from
// the selected setup (see services/keypad/internal/platform/setups).
package main

import (
	"context"
	"time"

	"keymatrix-go/services/keypad"
	"keymatrix-go/x/logx"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(2 * time.Second)

	cfg := keypad.DefaultConfig()
	log := logx.New(keypad.Console(cfg), "kbdctl", logx.ParseLevel(cfg.LogLevel))
	log.Info("boot", "board", cfg.Board.Name, "addr", uint8(cfg.Address))

	svc, err := keypad.New(cfg, log.With("keypad"))
	if err != nil {
		log.Error("init failed", "err", err)
		select {}
	}

	ctx := context.Background()
	if log.Enabled(logx.LevelDebug) {
		go reportStats(ctx, log.With("stats"), svc)
	}
	if err := svc.Run(ctx); err != nil {
		log.Error("stopped", "err", err)
	}
	select {}
}

// reportStats is debug-only: its timer wakes the core even while the keypad
// sleeps.
func reportStats(ctx context.Context, log *logx.Logger, svc *keypad.Service) {
	tick := time.NewTicker(5 * time.Second)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
		}
		st := svc.Stats()
		log.Debug("counters",
			"state", st.State,
			"scans", st.Scans,
			"sleeps", st.Sleeps,
			"wakes", st.Wakes,
			"coalesced", st.Coalesced,
			"drops", st.Drops,
			"served", st.Served)
	}
}
