//go:build !statsview

package statsview

import "github.com/retroenv/retrogolib/log"

// Launch logs that the statistics server is not part of this build.
func Launch(logger *log.Logger) {
	logger.Warn("Stats server not available, build with the statsview tag",
		log.String("address", Address))
}

// Available returns true if a statsview is available to launch.
func Available() bool {
	return false
}
