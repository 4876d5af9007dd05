// piezo drives a passive piezo buzzer wired to a single GPIO pin.
//
// Wiring:
//   piezo positive -> GPIO4 (BCM)
//   piezo negative -> GND
package piezo

import (
	"sync"
	"time"

	"github.com/juju/loggo"
	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/gpio/gpioreg"

	"github.com/pillsync/alarms/internal/hw"
)

var logger = loggo.GetLogger("alarms.piezo")

// PinName is the BCM name of the buzzer pin.
const PinName = "GPIO4"

// Pin is the digital output the buzzer is wired to.
// gpio.PinIO satisfies it.
type Pin interface {
	Out(l gpio.Level) error
	Halt() error
}

// Pattern describes one alarm invocation: groups of BeepsPerGroup
// beeps separated by GroupPause, repeated until Duration has elapsed.
// Duration is checked between groups only, so a call can block up to
// one full group plus pause past Duration.
type Pattern struct {
	Duration      time.Duration
	BeepsPerGroup int
	OnTime        time.Duration
	OffTime       time.Duration
	GroupPause    time.Duration
}

// DefaultPattern is the medication-due beep pattern.
var DefaultPattern = Pattern{
	Duration:      30 * time.Second,
	BeepsPerGroup: 3,
	OnTime:        150 * time.Millisecond,
	OffTime:       100 * time.Millisecond,
	GroupPause:    500 * time.Millisecond,
}

// Buzzer owns the buzzer pin. Alarm blocks for the whole pattern, so
// callers share a single Buzzer and calls are serialized internally.
type Buzzer struct {
	running sync.Mutex
	pin     Pin
	ready   bool
	mock    bool
}

// New returns a Buzzer bound to PinName, resolved lazily on first use.
func New() *Buzzer {
	return &Buzzer{}
}

// NewWithPin returns a Buzzer driving p instead of the default pin.
func NewWithPin(p Pin) *Buzzer {
	return &Buzzer{pin: p}
}

// Setup configures the pin as an output driven low. It only does work
// on the first call; later calls return immediately. A host without a
// usable pin puts the Buzzer in mock mode, never an error.
func (b *Buzzer) Setup() error {
	b.running.Lock()
	defer b.running.Unlock()
	return b.setup()
}

func (b *Buzzer) setup() error {
	if b.ready || b.mock {
		return nil
	}

	if b.pin == nil {
		if !hw.Available() {
			b.mock = true
			return nil
		}

		p := gpioreg.ByName(PinName)
		if p == nil {
			logger.Warningf("%v not found, buzzer running in mock mode", PinName)
			b.mock = true
			return nil
		}
		b.pin = p
	}

	if err := b.pin.Out(gpio.Low); err != nil {
		return err
	}

	b.ready = true
	return nil
}

// Alarm blocks while playing p on the buzzer. Whatever ends the loop,
// duration expiry or a failed pin write, the pin is driven low before
// returning; pin errors are returned to the caller. In mock mode it
// logs one notice and returns without sleeping. A non-positive
// Duration or BeepsPerGroup returns immediately.
func (b *Buzzer) Alarm(p Pattern) error {
	b.running.Lock()
	defer b.running.Unlock()

	if err := b.setup(); err != nil {
		return err
	}

	if b.mock {
		logger.Warningf("alarm requested but no buzzer hardware, doing nothing")
		return nil
	}

	if p.Duration <= 0 || p.BeepsPerGroup <= 0 {
		return nil
	}

	defer b.off()

	start := time.Now()
	for time.Since(start) < p.Duration {
		for i := 0; i < p.BeepsPerGroup; i++ {
			if err := b.pin.Out(gpio.High); err != nil {
				return err
			}
			time.Sleep(p.OnTime)

			if err := b.pin.Out(gpio.Low); err != nil {
				return err
			}
			time.Sleep(p.OffTime)
		}

		time.Sleep(p.GroupPause)
	}

	return nil
}

// off silences the buzzer, best effort.
func (b *Buzzer) off() {
	if b.pin == nil {
		return
	}
	_ = b.pin.Out(gpio.Low)
}

// Cleanup drives the pin low and releases it. Safe to call before
// Setup, in mock mode, and repeatedly; a later Setup reconfigures the
// pin from scratch.
func (b *Buzzer) Cleanup() {
	b.running.Lock()
	defer b.running.Unlock()

	if !b.ready {
		return
	}

	_ = b.pin.Out(gpio.Low)
	_ = b.pin.Halt()
	b.pin = nil
	b.ready = false
}
