package system

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
)

// ThermalReading is a snapshot of how hard the machine is working.
// MaxTempC is 0 when no sensor could be read.
type ThermalReading struct {
	MaxTempC   float64
	LoadPerCPU float64
}

// Hot reports whether either limit is exceeded. A zero limit disables that
// check.
func (r ThermalReading) Hot(maxTempC, maxLoad float64) bool {
	if maxTempC > 0 && r.MaxTempC >= maxTempC {
		return true
	}
	return maxLoad > 0 && r.LoadPerCPU >= maxLoad
}

func (r ThermalReading) String() string {
	if r.MaxTempC == 0 {
		return fmt.Sprintf("load/cpu %.2f", r.LoadPerCPU)
	}
	return fmt.Sprintf("%.0f°C, load/cpu %.2f", r.MaxTempC, r.LoadPerCPU)
}

// ReadThermal reads CPU package temperatures and the 1-minute load average.
// Missing sensors are not an error; an error is returned only when neither
// source is available.
func ReadThermal(ctx context.Context) (ThermalReading, error) {
	var r ThermalReading

	temps, tempErr := host.SensorsTemperaturesWithContext(ctx)
	for _, t := range temps {
		if !cpuSensor(t.SensorKey) {
			continue
		}
		if t.Temperature > r.MaxTempC {
			r.MaxTempC = t.Temperature
		}
	}

	avg, loadErr := load.AvgWithContext(ctx)
	if loadErr == nil {
		n, err := cpu.CountsWithContext(ctx, true)
		if err != nil || n < 1 {
			n = 1
		}
		r.LoadPerCPU = avg.Load1 / float64(n)
	}

	if r.MaxTempC == 0 && loadErr != nil {
		if tempErr != nil {
			return r, fmt.Errorf("thermal probe: %w", tempErr)
		}
		return r, fmt.Errorf("load average: %w", loadErr)
	}
	return r, nil
}

func cpuSensor(key string) bool {
	key = strings.ToLower(key)
	for _, p := range []string{"coretemp", "k10temp", "cpu", "package", "tdie", "tctl", "soc"} {
		if strings.Contains(key, p) {
			return true
		}
	}
	return false
}
