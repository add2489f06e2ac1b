package blox

import (
	"fmt"

	"github.com/nerrad567/brewlogic-core/internal/cbox"
)

// NewFactory registers every user-creatable block. Blocks that reference
// siblings resolve them in c.
func NewFactory(c *cbox.Container) (*cbox.Factory, error) {
	f := cbox.NewFactory()
	constructors := map[cbox.Type]cbox.Constructor{
		TempSensorMockType:     func() cbox.Object { return NewTempSensorMock() },
		SetpointSimpleType:     func() cbox.Object { return NewSetpointSimple() },
		SetpointSensorPairType: func() cbox.Object { return NewSetpointSensorPair(c) },
		ActuatorAnalogMockType: func() cbox.Object { return NewActuatorAnalogMock() },
	}
	for t, fn := range constructors {
		if err := f.Register(t, fn); err != nil {
			return nil, fmt.Errorf("registering block type %d: %w", t, err)
		}
	}
	return f, nil
}
