// hw probes for usable peripheral hardware exactly once per process.
// When the probe fails, every driver in the process degrades to mock
// mode and stays there; the probe is never retried.
package hw

import (
	"sync"

	"github.com/juju/loggo"
	"periph.io/x/periph/host"
)

var logger = loggo.GetLogger("alarms.hw")

var (
	once      sync.Once
	available bool
)

// Available reports whether the periph host drivers could be loaded.
// The first call performs the probe; a failure is logged once and
// latched for the lifetime of the process, it is never an error.
func Available() bool {
	once.Do(func() {
		if _, err := host.Init(); err != nil {
			logger.Warningf("no usable hardware, running in mock mode: %v", err)
			return
		}
		available = true
	})
	return available
}
