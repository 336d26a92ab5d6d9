package hub

import (
	"encoding/json"
	"log"
	"time"

	"github.com/soar/axisremap/internal/remap"
)

const (
	fullSyncInterval = 5 * time.Second
	deltaCountSync   = 100
)

// Broadcaster listens for remapper frame changes and broadcasts them
// to the hub.
type Broadcaster struct {
	hub       *Hub
	changes   <-chan remap.Frame
	lastFrame remap.Frame
	seq       int64
}

func NewBroadcaster(h *Hub, changes <-chan remap.Frame) *Broadcaster {
	return &Broadcaster{
		hub:     h,
		changes: changes,
	}
}

// Run starts the broadcaster loop. Should be run in a goroutine.
func (b *Broadcaster) Run() {
	ticker := time.NewTicker(fullSyncInterval)
	defer ticker.Stop()

	var deltaCount int64

	for {
		select {
		case frame, ok := <-b.changes:
			if !ok {
				return
			}

			delta := remap.ComputeDelta(b.lastFrame, frame)
			b.lastFrame = frame

			if delta.IsEmpty() {
				continue
			}

			b.seq++
			deltaCount++

			// Send full sync periodically
			if deltaCount >= deltaCountSync {
				b.sendFull(frame)
				deltaCount = 0
			} else {
				b.sendDelta(delta)
			}

		case <-ticker.C:
			if b.lastFrame.Connected {
				b.seq++
				b.sendFull(b.lastFrame)
			}
		}
	}
}

// SendInitialState sends the current full state and every axis curve
// projection to a newly connected client.
func (b *Broadcaster) SendInitialState(c *Client, rig *remap.Rig) {
	b.seq++
	c.sendMessage(NewFullMessage(b.seq, &b.lastFrame))
	for _, a := range rig.Axes() {
		c.sendMessage(NewCurveMessage(a.Name, a.Curve()))
	}
}

func (b *Broadcaster) sendFull(frame remap.Frame) {
	msg := NewFullMessage(b.seq, &frame)
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling full message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}

func (b *Broadcaster) sendDelta(delta *remap.DeltaChanges) {
	msg := NewDeltaMessage(b.seq, delta)
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error marshaling delta message: %v", err)
		return
	}
	b.hub.Broadcast(data)
}
