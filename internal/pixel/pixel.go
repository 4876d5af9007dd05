// pixel drives a short WS2812-class LED stick as a visual alarm.
//
// The strip is driven over SPI, which gives reliable NRZ timing
// without a realtime kernel.
//
// Wiring:
//   stick DIN -> SPI0 MOSI (GPIO10, BCM)
//   stick VCC -> 5V
//   stick GND -> GND
package pixel

import (
	"sync"
	"time"

	"github.com/juju/loggo"
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/experimental/devices/nrzled"

	"github.com/pillsync/alarms/internal/hw"
)

var logger = loggo.GetLogger("alarms.pixel")

const (
	// NumPixels is the length of the stick (8x5050).
	NumPixels = 8
	// Brightness scales every channel before it is written out.
	Brightness = 0.4

	channels = 3
)

// Device is the strip handle the driver writes frames to.
// *nrzled.Dev satisfies it.
type Device interface {
	Write(p []byte) (n int, err error)
	Halt() error
}

// Color is an 8-bit RGB triple, pre-brightness.
type Color struct {
	R, G, B uint8
}

// Red is the default alarm color.
var Red = Color{R: 255}

// Pattern describes one alarm invocation: groups of FlashesPerGroup
// flashes separated by GroupPause, repeated until Duration has
// elapsed. Duration is checked between groups only, so a call can
// block up to one full group plus pause past Duration.
type Pattern struct {
	Duration        time.Duration
	FlashesPerGroup int
	OnTime          time.Duration
	OffTime         time.Duration
	GroupPause      time.Duration
	Color           Color
}

// DefaultPattern is the medication-due flash pattern.
var DefaultPattern = Pattern{
	Duration:        30 * time.Second,
	FlashesPerGroup: 3,
	OnTime:          150 * time.Millisecond,
	OffTime:         150 * time.Millisecond,
	GroupPause:      500 * time.Millisecond,
	Color:           Red,
}

// Strip owns the LED stick. Alarm blocks for the whole pattern, so
// callers share a single Strip and calls are serialized internally.
type Strip struct {
	running sync.Mutex
	dev     Device
	ready   bool
	mock    bool
}

// New returns a Strip bound to the first SPI port, opened lazily on
// first use.
func New() *Strip {
	return &Strip{}
}

// NewWithDevice returns a Strip writing to d instead of the default
// SPI-attached stick.
func NewWithDevice(d Device) *Strip {
	return &Strip{dev: d}
}

// Setup opens the strip and blanks it. It only does work on the first
// call; later calls return immediately. A host without a usable SPI
// port puts the Strip in mock mode, never an error.
func (s *Strip) Setup() error {
	s.running.Lock()
	defer s.running.Unlock()
	return s.setup()
}

func (s *Strip) setup() error {
	if s.ready || s.mock {
		return nil
	}

	if s.dev == nil {
		if !hw.Available() {
			s.mock = true
			return nil
		}

		port, err := spireg.Open("")
		if err != nil {
			logger.Warningf("no SPI port, pixels running in mock mode: %v", err)
			s.mock = true
			return nil
		}

		dev, err := nrzled.NewSPI(port, &nrzled.Opts{
			NumPixels: NumPixels,
			Channels:  channels,
			Freq:      2500 * physic.KiloHertz,
		})
		if err != nil {
			logger.Warningf("no pixel device, pixels running in mock mode: %v", err)
			s.mock = true
			return nil
		}
		s.dev = dev
	}

	if err := s.setAll(Color{}); err != nil {
		return err
	}

	s.ready = true
	return nil
}

// setAll stages a full frame of c and pushes it in a single write, so
// the whole stick changes at once.
func (s *Strip) setAll(c Color) error {
	frame := make([]byte, NumPixels*channels)
	r := byte(float64(c.R) * Brightness)
	g := byte(float64(c.G) * Brightness)
	b := byte(float64(c.B) * Brightness)
	for i := 0; i < len(frame); i += channels {
		frame[i] = r
		frame[i+1] = g
		frame[i+2] = b
	}

	_, err := s.dev.Write(frame)
	return err
}

// Alarm blocks while flashing p on the stick. Whatever ends the loop,
// duration expiry or a failed write, the stick is blanked before
// returning; write errors are returned to the caller. In mock mode it
// logs one notice and returns without sleeping. A non-positive
// Duration or FlashesPerGroup returns immediately.
func (s *Strip) Alarm(p Pattern) error {
	s.running.Lock()
	defer s.running.Unlock()

	if err := s.setup(); err != nil {
		return err
	}

	if s.mock {
		logger.Warningf("alarm requested but no pixel hardware, doing nothing")
		return nil
	}

	if p.Duration <= 0 || p.FlashesPerGroup <= 0 {
		return nil
	}

	defer s.blank()

	start := time.Now()
	for time.Since(start) < p.Duration {
		for i := 0; i < p.FlashesPerGroup; i++ {
			if err := s.setAll(p.Color); err != nil {
				return err
			}
			time.Sleep(p.OnTime)

			if err := s.setAll(Color{}); err != nil {
				return err
			}
			time.Sleep(p.OffTime)
		}

		time.Sleep(p.GroupPause)
	}

	return nil
}

// blank turns every pixel off, best effort.
func (s *Strip) blank() {
	if s.dev == nil {
		return
	}
	_ = s.setAll(Color{})
}

// Cleanup blanks the stick. The device handle is kept, the stick has
// no release primitive worth modeling. Safe to call before Setup, in
// mock mode, and repeatedly.
func (s *Strip) Cleanup() {
	s.running.Lock()
	defer s.running.Unlock()
	s.blank()
}
