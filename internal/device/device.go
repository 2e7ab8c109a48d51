// Package device reads raw evdev input events from the character devices
// named in a compiled configuration and turns them into the flattened
// ButtonEvent stream the matcher consumes. One goroutine per device reads
// and decodes input_event structs; all goroutines fan their output into a
// single channel.
package device

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/larsks/airdancer/internal/events"
	"github.com/larsks/airdancer/internal/patternengine"
	"github.com/larsks/airdancer/internal/pedalevent"
)

// binding pairs one configured DeviceBinding with the global button numbers
// its event codes were assigned, in the same order as Codes.
type binding struct {
	patternengine.DeviceBinding
	buttons []pedalevent.Button
}

// Manager owns one goroutine per configured device and fans their decoded
// events into a single channel.
type Manager struct {
	bindings []binding
	files    []*os.File
	events   chan pedalevent.ButtonEvent
	stop     chan struct{}
	wg       sync.WaitGroup
	mutex    sync.Mutex
	started  bool
}

// New assigns global 1-based button numbers to the flattened concatenation
// of each binding's event codes, in declaration order, and returns a Manager
// ready to Start.
func New(bindings []patternengine.DeviceBinding) *Manager {
	m := &Manager{
		events: make(chan pedalevent.ButtonEvent, 256),
		stop:   make(chan struct{}),
	}

	next := 1
	for _, b := range bindings {
		buttons := make([]pedalevent.Button, len(b.Codes))
		for i := range b.Codes {
			buttons[i] = pedalevent.Button(next)
			next++
		}
		m.bindings = append(m.bindings, binding{DeviceBinding: b, buttons: buttons})
	}

	return m
}

// Events returns the channel every configured device's decoded events are
// delivered on. It is closed once Stop has drained all reader goroutines.
func (m *Manager) Events() <-chan pedalevent.ButtonEvent {
	return m.events
}

// Start opens every configured device, grabbing it exclusively unless its
// binding marks it [shared], and launches one reader goroutine per device.
func (m *Manager) Start() error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.started {
		return fmt.Errorf("device manager already started")
	}
	if len(m.bindings) == 0 {
		return fmt.Errorf("no devices configured")
	}

	for _, b := range m.bindings {
		file, err := os.OpenFile(b.Path, os.O_RDWR, 0)
		if err != nil {
			m.closeFiles()
			return fmt.Errorf("open device %s: %w", b.Path, err)
		}
		if !b.Shared {
			if err := grab(file); err != nil {
				file.Close() //nolint:errcheck
				m.closeFiles()
				return fmt.Errorf("grab device %s: %w", b.Path, err)
			}
		}
		m.files = append(m.files, file)
	}

	m.started = true
	for i, b := range m.bindings {
		m.wg.Add(1)
		go m.monitor(m.files[i], b)
	}

	return nil
}

// Stop closes every device file (unblocking any in-flight Read), waits for
// all reader goroutines to exit, and closes the events channel.
func (m *Manager) Stop() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.started {
		return
	}
	m.started = false

	m.closeFiles()
	close(m.stop)
	m.wg.Wait()
	close(m.events)
}

func (m *Manager) closeFiles() {
	for _, f := range m.files {
		if err := f.Close(); err != nil {
			log.Printf("error closing device: %v", err)
		}
	}
}

// grab issues EVIOCGRAB so no other process sees this device's events while
// we hold it open.
func grab(f *os.File) error {
	return unix.IoctlSetInt(int(f.Fd()), unix.EVIOCGRAB, 1)
}

// monitor decodes input_event records from one device file and emits a
// ButtonEvent for each one that matches a configured code, until Stop closes
// either the file or the stop channel.
func (m *Manager) monitor(file *os.File, b binding) {
	defer m.wg.Done()

	log.Printf("monitoring device %s (%d code(s))", b.Path, len(b.Codes))

	eventSize := int(unsafe.Sizeof(events.InputEvent{}))
	readChan := make(chan []byte, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			buf := make([]byte, eventSize)
			n, err := file.Read(buf)
			if err != nil {
				select {
				case errChan <- err:
				case <-m.stop:
				}
				return
			}
			if n == eventSize {
				select {
				case readChan <- buf:
				case <-m.stop:
					return
				}
			}
		}
	}()

	for {
		select {
		case <-m.stop:
			log.Printf("stopping monitoring for device %s", b.Path)
			return
		case err := <-errChan:
			if strings.Contains(err.Error(), "file already closed") {
				log.Printf("stopping monitoring for device %s", b.Path)
			} else {
				log.Printf("error reading from device %s: %v", b.Path, err)
			}
			return
		case buf := <-readChan:
			var raw events.InputEvent
			if err := binary.Read(bytes.NewReader(buf), binary.LittleEndian, &raw); err != nil {
				log.Printf("error decoding event from %s: %v", b.Path, err)
				continue
			}
			m.dispatch(b, raw)
		}
	}
}

// dispatch maps one decoded input_event to its configured code (if any) and
// emits the resulting ButtonEvent(s): EV_KEY yields a single Down or Up;
// EV_REL yields a synthesized Down immediately followed by an Up, since a
// relative axis has no natural release.
func (m *Manager) dispatch(b binding, raw events.InputEvent) {
	now := time.Now()

	for i, code := range b.Codes {
		if events.EventType(raw.Type) != code.Type || raw.Code != code.Code {
			continue
		}

		button := b.buttons[i]

		switch code.Type {
		case events.EV_KEY:
			m.dispatchKey(button, raw.Value, now)
		case events.EV_REL:
			m.dispatchRel(button, raw.Value, code, now)
		case events.EV_ABS:
			m.dispatchAbs(button, raw.Value, code, now)
		}
	}
}

func (m *Manager) dispatchKey(button pedalevent.Button, value int32, t time.Time) {
	switch value {
	case int32(events.KEY_PRESSED):
		m.emit(button, pedalevent.Down, t)
	case int32(events.KEY_RELEASED):
		m.emit(button, pedalevent.Up, t)
	default:
		// KEY_REPEATED (autorepeat) and any other value carry no polarity
		// change and are dropped.
	}
}

func (m *Manager) dispatchRel(button pedalevent.Button, value int32, code patternengine.EventCodeSpec, t time.Time) {
	if code.Value != nil && *code.Value != value {
		return
	}
	if value == 0 {
		return
	}
	m.emit(button, pedalevent.Down, t)
	m.emit(button, pedalevent.Up, t)
}

func (m *Manager) dispatchAbs(button pedalevent.Button, value int32, code patternengine.EventCodeSpec, t time.Time) {
	if code.Value == nil || *code.Value != value {
		return
	}
	m.emit(button, pedalevent.Down, t)
}

func (m *Manager) emit(button pedalevent.Button, action pedalevent.Action, t time.Time) {
	ev := pedalevent.ButtonEvent{Button: button, Action: action, Time: t}
	select {
	case m.events <- ev:
	case <-m.stop:
	default:
		log.Printf("warning: event channel full, dropping %s", ev)
	}
}
