// Package awake keeps the machine from sleeping during long check runs
package awake

import (
	"context"
	"math/rand"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/rs/zerolog/log"
)

// DefaultInterval is how often the mouse is nudged
const DefaultInterval = 1 * time.Minute

// KeepAwake nudges the mouse pointer every interval until ctx is done
func KeepAwake(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info().Dur("interval", interval).Msg("Starting keep-awake routine")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Stopping keep-awake routine")
			return
		case <-ticker.C:
			x, y := robotgo.GetMousePos()
			dx := rand.Intn(20) - 10
			dy := rand.Intn(20) - 10
			robotgo.MoveSmooth(x+dx, y+dy)
		}
	}
}
