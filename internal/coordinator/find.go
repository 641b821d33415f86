package coordinator

import (
	"strings"

	"climatehub.dev/hub/internal/errors"
)

// FindDevice resolves a user-supplied query to a single device, trying an
// exact endpoint id match first, then an exact case-insensitive friendly
// name match, then a case-insensitive substring match against the
// friendly name. For the name and substring stages, ties are broken by
// discovery insertion order (the order devices first appeared in the
// twin) rather than Go's unspecified map iteration order, so the first
// hit always wins deterministically. It returns errors.KindDeviceNotFound
// if nothing matches at any stage.
func (c *Coordinator) FindDevice(query string) (*Device, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if d, ok := c.devices[query]; ok {
		return d, nil
	}

	lower := strings.ToLower(query)
	for _, id := range c.deviceOrder {
		if d, ok := c.devices[id]; ok && strings.ToLower(d.FriendlyName) == lower {
			return d, nil
		}
	}

	for _, id := range c.deviceOrder {
		if d, ok := c.devices[id]; ok && strings.Contains(strings.ToLower(d.FriendlyName), lower) {
			return d, nil
		}
	}

	return nil, errors.WithAttr(errors.New(errors.KindDeviceNotFound, "coordinator: no device matches query"), "query", query)
}

// Devices returns every currently known device.
func (c *Coordinator) Devices() []*Device {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*Device, 0, len(c.devices))
	for _, d := range c.devices {
		out = append(out, d)
	}
	return out
}
