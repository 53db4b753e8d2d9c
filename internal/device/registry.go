package device

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry is the ordered set of devices owned by a board.
//
// Iteration follows registration order. Duplicate ids are not rejected;
// lookups return the first match.
type Registry struct {
	devices []Device
	logger  Logger
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{logger: noopLogger{}}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	r.logger = logger
}

// Add appends d. Nil devices are ignored.
func (r *Registry) Add(d Device) {
	if d == nil {
		return
	}
	if r.Get(d.ID()) != nil {
		r.logger.Warn("duplicate device id, first registration wins", "device_id", d.ID())
	}
	r.devices = append(r.devices, d)
	r.logger.Debug("device added", "device_id", d.ID(), "count", len(r.devices))
}

// Remove deletes the first device with the given id and returns it.
// It returns nil when no device matches.
func (r *Registry) Remove(id string) Device {
	for i, d := range r.devices {
		if d.ID() != id {
			continue
		}
		copy(r.devices[i:], r.devices[i+1:])
		r.devices[len(r.devices)-1] = nil
		r.devices = r.devices[:len(r.devices)-1]
		r.logger.Debug("device removed", "device_id", id, "count", len(r.devices))
		return d
	}
	return nil
}

// Get returns the first device with the given id, or nil.
func (r *Registry) Get(id string) Device {
	for _, d := range r.devices {
		if d.ID() == id {
			return d
		}
	}
	return nil
}

// Each calls fn for every device in registration order.
func (r *Registry) Each(fn func(d Device)) {
	for _, d := range r.devices {
		fn(d)
	}
}

// List returns the devices in registration order.
func (r *Registry) List() []Device {
	out := make([]Device, len(r.devices))
	copy(out, r.devices)
	return out
}

// Len returns the number of registered devices.
func (r *Registry) Len() int {
	return len(r.devices)
}

// Clear removes every device.
func (r *Registry) Clear() {
	clear(r.devices)
	r.devices = r.devices[:0]
}
