package remap

import (
	"context"
	"log"
	"runtime"
	"sync"

	"github.com/jupiterrider/purego-sdl3/sdl"
)

// Poll at ~250Hz so curve edits are audible on the output device
// without perceptible latency.
const pollDelayNS = 4_000_000

type joystickInfo struct {
	joystick *sdl.Joystick
	name     string
	id       sdl.JoystickID
}

// Reader polls the active joystick, evaluates every bound axis
// through its published curve and forwards the shaped values to the
// output device, emitting frame deltas for monitoring clients.
type Reader struct {
	rig       *Rig
	out       Output
	frame     Frame
	prevFrame Frame
	joysticks map[sdl.JoystickID]*joystickInfo
	activeID  sdl.JoystickID // the first connected joystick
	hasActive bool
	changes   chan Frame
	mu        sync.RWMutex
}

func NewReader(rig *Rig, out Output) *Reader {
	return &Reader{
		rig:       rig,
		out:       out,
		joysticks: make(map[sdl.JoystickID]*joystickInfo),
		changes:   make(chan Frame, 64),
	}
}

// Changes returns the channel on which frame changes are sent.
func (r *Reader) Changes() <-chan Frame {
	return r.changes
}

// CurrentFrame returns a snapshot of the current remapper state.
func (r *Reader) CurrentFrame() Frame {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frame
}

// Run initializes SDL and runs the event+polling loop on the current
// thread. Must be called from a goroutine with runtime.LockOSThread.
func (r *Reader) Run(ctx context.Context) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	if !sdl.Init(sdl.InitJoystick) {
		log.Fatalf("SDL Init failed: %s", sdl.GetError())
	}
	defer sdl.Quit()

	log.Println("SDL3 Joystick subsystem initialized")

	for _, id := range sdl.GetJoysticks() {
		r.openJoystick(id)
	}

	for {
		select {
		case <-ctx.Done():
			r.closeAll()
			return
		default:
		}

		r.processEvents()
		r.pollAxes()
		sdl.DelayNS(pollDelayNS)
	}
}

func (r *Reader) processEvents() {
	var event sdl.Event
	for sdl.PollEvent(&event) {
		switch event.Type() {
		case sdl.EventJoystickAdded:
			r.openJoystick(event.JDevice().Which)
		case sdl.EventJoystickRemoved:
			r.removeJoystick(event.JDevice().Which)
		}
	}
}

func (r *Reader) openJoystick(instanceID sdl.JoystickID) {
	if _, exists := r.joysticks[instanceID]; exists {
		return
	}

	js := sdl.OpenJoystick(instanceID)
	if js == nil {
		log.Printf("Failed to open joystick %d: %s", instanceID, sdl.GetError())
		return
	}

	jsID := sdl.GetJoystickID(js)
	name := sdl.GetJoystickName(js)
	info := &joystickInfo{joystick: js, name: name, id: jsID}
	r.joysticks[jsID] = info

	log.Printf("Joystick connected: %s (VID=%04X PID=%04X) axes=%d",
		name, sdl.GetJoystickVendor(js), sdl.GetJoystickProduct(js),
		sdl.GetNumJoystickAxes(js))

	// Use the first connected joystick as the remapped device
	if !r.hasActive {
		r.activeID = jsID
		r.hasActive = true
		log.Printf("Active joystick set: %s (ID=%d)", name, jsID)

		r.mu.Lock()
		r.frame.Connected = true
		r.frame.Device = name
		r.mu.Unlock()

		r.emitFrame()
	}
}

func (r *Reader) removeJoystick(instanceID sdl.JoystickID) {
	info, exists := r.joysticks[instanceID]
	if !exists {
		return
	}

	log.Printf("Joystick disconnected: %s", info.name)
	sdl.CloseJoystick(info.joystick)
	delete(r.joysticks, instanceID)

	if !r.hasActive || r.activeID != instanceID {
		return
	}
	r.hasActive = false

	// Center all outputs so a stuck deflection never survives a
	// device disconnect.
	for _, a := range r.rig.Axes() {
		r.out.SetAxis(a.Target, 0)
	}

	if len(r.joysticks) == 0 {
		r.mu.Lock()
		r.frame = Frame{}
		r.mu.Unlock()
		r.emitFrame()
		return
	}

	// Promote the next available joystick
	for id, js := range r.joysticks {
		if sdl.JoystickConnected(js.joystick) {
			r.activeID = id
			r.hasActive = true
			log.Printf("Active joystick switched to: %s (ID=%d)", js.name, id)

			r.mu.Lock()
			r.frame.Connected = true
			r.frame.Device = js.name
			r.mu.Unlock()

			r.emitFrame()
			break
		}
	}
}

func (r *Reader) closeAll() {
	for id, info := range r.joysticks {
		sdl.CloseJoystick(info.joystick)
		delete(r.joysticks, id)
	}
}

func (r *Reader) pollAxes() {
	if !r.hasActive {
		return
	}
	info, exists := r.joysticks[r.activeID]
	if !exists || !sdl.JoystickConnected(info.joystick) {
		return
	}

	js := info.joystick
	numAxes := sdl.GetNumJoystickAxes(js)

	frame := Frame{
		Connected: true,
		Device:    info.name,
		Axes:      make([]AxisValue, 0, len(r.rig.Axes())),
	}

	for _, a := range r.rig.Axes() {
		if a.Index >= numAxes {
			continue
		}
		raw := NormalizeAxis(sdl.GetJoystickAxis(js, a.Index))
		shaped := a.Evaluate(raw)
		r.out.SetAxis(a.Target, shaped)
		frame.Axes = append(frame.Axes, AxisValue{
			Name:   a.Name,
			Target: a.Target,
			Raw:    raw,
			Value:  shaped,
		})
	}

	r.mu.Lock()
	delta := ComputeDelta(r.prevFrame, frame)
	if !delta.IsEmpty() {
		r.frame = frame
		r.prevFrame = frame
		r.mu.Unlock()
		r.emitFrame()
	} else {
		r.mu.Unlock()
	}
}

func (r *Reader) emitFrame() {
	r.mu.RLock()
	f := r.frame
	r.mu.RUnlock()

	select {
	case r.changes <- f:
	default:
		// Drop if the channel is full to avoid blocking the SDL thread
	}
}
