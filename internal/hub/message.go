package hub

import (
	"time"

	"github.com/soar/axisremap/internal/curve"
	"github.com/soar/axisremap/internal/remap"
)

// WSMessage represents a WebSocket message sent from server to client.
type WSMessage struct {
	Type      string              `json:"type"`              // "full", "delta", "curve", "rejected"
	Seq       int64               `json:"seq"`               // Sequence number for ordering
	Timestamp int64               `json:"timestamp"`         // Unix timestamp in milliseconds
	Data      *remap.Frame        `json:"data,omitempty"`    // Full remapper state for type "full"
	Changes   *remap.DeltaChanges `json:"changes,omitempty"` // Delta changes for type "delta"
	Axis      string              `json:"axis,omitempty"`    // Axis name for "curve" and "rejected"
	Curve     *curve.Parameters   `json:"curve,omitempty"`   // Updated curve projection for type "curve"
	Error     string              `json:"error,omitempty"`   // Rejection reason for type "rejected"
}

// NewFullMessage creates a "full" type message containing the complete
// remapper state.
func NewFullMessage(seq int64, frame *remap.Frame) *WSMessage {
	return &WSMessage{
		Type:      "full",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Data:      frame,
	}
}

// NewDeltaMessage creates a "delta" type message containing only
// changed fields.
func NewDeltaMessage(seq int64, changes *remap.DeltaChanges) *WSMessage {
	return &WSMessage{
		Type:      "delta",
		Seq:       seq,
		Timestamp: time.Now().UnixMilli(),
		Changes:   changes,
	}
}

// NewCurveMessage creates a "curve" message carrying the updated
// working-copy projection after a successful edit.
func NewCurveMessage(axis string, params curve.Parameters) *WSMessage {
	return &WSMessage{
		Type:      "curve",
		Timestamp: time.Now().UnixMilli(),
		Axis:      axis,
		Curve:     &params,
	}
}

// NewRejectedMessage creates a "rejected" message for an edit the
// session refused; the curve is unchanged.
func NewRejectedMessage(axis string, err error) *WSMessage {
	return &WSMessage{
		Type:      "rejected",
		Timestamp: time.Now().UnixMilli(),
		Axis:      axis,
		Error:     err.Error(),
	}
}

// ClientMessage represents an editor command sent by the client.
type ClientMessage struct {
	Type string       `json:"type"` // "edit"
	Axis string       `json:"axis"`
	Edit remap.EditOp `json:"edit"`
}
