package blox

import (
	"slices"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// MockBusScanner discovers mock temperature sensors on a simulated bus.
// Each bus address appears at most once in the container.
type MockBusScanner struct {
	addresses []uint64
}

// NewMockBusScanner creates a scanner for a bus with the given addresses attached.
func NewMockBusScanner(addresses ...uint64) *MockBusScanner {
	return &MockBusScanner{addresses: slices.Clone(addresses)}
}

// Attach adds an address to the bus.
func (s *MockBusScanner) Attach(address uint64) {
	if !slices.Contains(s.addresses, address) {
		s.addresses = append(s.addresses, address)
	}
}

// Scan returns a connected sensor for every address not yet in c.
func (s *MockBusScanner) Scan(c *cbox.Container) []cbox.Object {
	known := make(map[uint64]bool)
	for co := range c.All() {
		if sensor, ok := co.Object().Implements(TempSensorMockType).(*TempSensorMock); ok && sensor.Address() != 0 {
			known[sensor.Address()] = true
		}
	}

	var found []cbox.Object
	for _, address := range s.addresses {
		if known[address] {
			continue
		}
		sensor := NewTempSensorMock()
		sensor.settings = TempSensorMockSettings{Connected: true, Address: address}
		found = append(found, sensor)
	}
	return found
}
