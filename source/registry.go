package source

import (
	"context"
	"slices"

	"github.com/pkg/errors"
	"github.com/samber/lo"

	"go.viam.com/kinectviewer/logging"
)

// A DeviceConstructor opens the device with the given index.
type DeviceConstructor func(ctx context.Context, index int, logger logging.Logger) (FrameSource, error)

var deviceRegistry = map[string]DeviceConstructor{}

// RegisterDevice registers a device driver under a name. Registering a name twice panics.
func RegisterDevice(name string, ctor DeviceConstructor) {
	if _, old := deviceRegistry[name]; old {
		panic(errors.Errorf("trying to register two devices with same name %s", name))
	}
	if ctor == nil {
		panic(errors.Errorf("cannot register a nil constructor for device %s", name))
	}
	deviceRegistry[name] = ctor
}

// DeviceLookup looks up a device constructor by name. nil is returned if there is none.
func DeviceLookup(name string) DeviceConstructor {
	return deviceRegistry[name]
}

// RegisteredDevices returns the names of all registered devices, sorted.
func RegisteredDevices() []string {
	names := lo.Keys(deviceRegistry)
	slices.Sort(names)
	return names
}

// OpenDevice opens device index of the named driver.
func OpenDevice(ctx context.Context, name string, index int, logger logging.Logger) (FrameSource, error) {
	ctor := DeviceLookup(name)
	if ctor == nil {
		return nil, errors.Errorf("no device driver named %q, have %v", name, RegisteredDevices())
	}
	if index < 0 {
		return nil, errors.Errorf("device index must not be negative, got %d", index)
	}
	src, err := ctor(ctx, index, logger.Sublogger(name))
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s device %d", name, index)
	}
	return src, nil
}
