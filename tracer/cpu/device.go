package cpu

import (
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/cpu"
)

// Host CPU description used for estimating tracer speed.
type Device struct {
	Name string

	// Physical cores and hardware threads.
	Cores   uint32
	Threads uint32

	// Clock speed in MHz.
	ClockSpeed uint32

	// Relative speed estimate; roughly the number of giga-cycles per second
	// across all hardware threads.
	Speed uint32
}

// Implements Stringer.
func (d Device) String() string {
	return fmt.Sprintf(
		"Name: %s\nSpecs: %d cores, %d threads, %d Mhz clock, %d approximate speed",
		d.Name,
		d.Cores,
		d.Threads,
		d.ClockSpeed,
		d.Speed,
	)
}

// Query the host CPU. Fields that cannot be detected fall back to values
// reported by the Go runtime.
func DetectDevice() (*Device, error) {
	dev := &Device{
		Name:    runtime.GOARCH,
		Threads: uint32(runtime.NumCPU()),
	}

	if threads, err := cpu.Counts(true); err == nil && threads > 0 {
		dev.Threads = uint32(threads)
	}
	if cores, err := cpu.Counts(false); err == nil && cores > 0 {
		dev.Cores = uint32(cores)
	} else {
		dev.Cores = dev.Threads
	}

	infoList, err := cpu.Info()
	if err != nil {
		return nil, fmt.Errorf("cpu tracer: could not query cpu info: %w", err)
	}
	if len(infoList) != 0 {
		if infoList[0].ModelName != "" {
			dev.Name = infoList[0].ModelName
		}
		dev.ClockSpeed = uint32(infoList[0].Mhz)
	}

	dev.Speed = estimateSpeed(dev.Threads, dev.ClockSpeed)
	return dev, nil
}

func estimateSpeed(threads, clockSpeed uint32) uint32 {
	if clockSpeed == 0 {
		clockSpeed = 1000
	}
	speed := threads * clockSpeed / 1000
	if speed == 0 {
		speed = 1
	}
	return speed
}
