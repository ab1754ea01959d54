//go:build statsview

package statsview

import (
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/retroenv/retrogolib/log"
)

// Launch starts the statistics server in a new goroutine.
func Launch(logger *log.Logger) {
	go func() {
		viewer.SetConfiguration(viewer.WithAddr(Address))
		mgr := statsview.New()
		if err := mgr.Start(); err != nil {
			logger.Error("Stats server failed", err)
		}
	}()

	logger.Info("Stats server available", log.String("url", "http://"+Address+url))
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return true
}
