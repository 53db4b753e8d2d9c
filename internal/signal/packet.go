package signal

// Packet is an addressed message queued for delivery to one device.
//
// Timestamp is assigned by the Bus when the packet is sent; producers
// leave it zero. Packets are shared by pointer and must not be modified
// after Send.
type Packet struct {
	// Timestamp is microseconds since the bus epoch.
	Timestamp uint64 `json:"timestamp"`

	// DeviceID is the destination device identifier.
	DeviceID string `json:"device_id"`

	// Payload is interpreted by the receiving device. Unknown payloads are ignored.
	Payload any `json:"payload,omitempty"`
}

// New returns a packet addressed to deviceID.
func New(deviceID string, payload any) *Packet {
	return &Packet{DeviceID: deviceID, Payload: payload}
}

// CellPayload sets a single matrix cell.
type CellPayload struct {
	Row int  `json:"row"`
	Col int  `json:"col"`
	On  bool `json:"on"`
}

// TogglePayload flips a single matrix cell.
type TogglePayload struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

// WordPayload sets a whole row from an integer, bit 0 in column 0.
type WordPayload struct {
	Row   int    `json:"row"`
	Value uint32 `json:"value"`
}

// ResetPayload asks the device to clear its state.
type ResetPayload struct{}

// Sender enqueues packets for later delivery.
type Sender interface {
	Send(p *Packet)
}
