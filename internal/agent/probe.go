package agent

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	gnet "github.com/shirou/gopsutil/v4/net"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/zjrosen/deskctl/internal/command"
	"github.com/zjrosen/deskctl/internal/log"
)

// Probe reads host metrics.
type Probe interface {
	Status(ctx context.Context) (command.SystemStatus, error)
	Processes(ctx context.Context, limit int) ([]ProcessInfo, error)
	Network(ctx context.Context) (NetworkInfo, error)
}

// ProcessInfo is one row of the process list.
type ProcessInfo struct {
	PID    int32
	Name   string
	CPU    float64
	Memory float32
}

// NetworkInfo summarizes interfaces and traffic.
type NetworkInfo struct {
	Interfaces []InterfaceInfo
	BytesSent  uint64
	BytesRecv  uint64
}

// InterfaceInfo is one interface with its addresses.
type InterfaceInfo struct {
	Name  string
	Addrs []string
}

// HostProbe reads metrics through gopsutil.
type HostProbe struct {
	// CPUSample is how long CPU usage is sampled for.
	CPUSample time.Duration
}

var _ Probe = (*HostProbe)(nil)

// NewHostProbe returns a probe that samples CPU for one second, matching
// what most task managers show.
func NewHostProbe() *HostProbe {
	return &HostProbe{CPUSample: time.Second}
}

// Status returns hostname, OS, CPU and memory usage, and uptime.
func (p *HostProbe) Status(ctx context.Context) (command.SystemStatus, error) {
	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return command.SystemStatus{}, fmt.Errorf("read host info: %w", err)
	}
	percents, err := cpu.PercentWithContext(ctx, p.CPUSample, false)
	if err != nil {
		return command.SystemStatus{}, fmt.Errorf("read cpu usage: %w", err)
	}
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return command.SystemStatus{}, fmt.Errorf("read memory usage: %w", err)
	}

	var cpuPct float64
	if len(percents) > 0 {
		cpuPct = percents[0]
	}
	return command.SystemStatus{
		Hostname: info.Hostname,
		OS:       strings.TrimSpace(osName(info.OS) + " " + info.KernelVersion),
		CPU:      round1(cpuPct),
		Memory:   round1(vm.UsedPercent),
		Uptime:   FormatUptime(time.Duration(info.Uptime) * time.Second),
	}, nil
}

// Processes returns the top processes by memory share.
func (p *HostProbe) Processes(ctx context.Context, limit int) ([]ProcessInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	out := make([]ProcessInfo, 0, len(procs))
	for _, proc := range procs {
		name, err := proc.NameWithContext(ctx)
		if err != nil {
			// Exited or access denied.
			continue
		}
		memPct, _ := proc.MemoryPercentWithContext(ctx)
		cpuPct, _ := proc.CPUPercentWithContext(ctx)
		out = append(out, ProcessInfo{PID: proc.Pid, Name: name, CPU: round1(cpuPct), Memory: memPct})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Memory > out[j].Memory })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	log.Debug(log.CatAgent, "listed processes", "total", len(procs), "returned", len(out))
	return out, nil
}

// Network returns interfaces that are up and total traffic counters.
func (p *HostProbe) Network(ctx context.Context) (NetworkInfo, error) {
	ifaces, err := gnet.InterfacesWithContext(ctx)
	if err != nil {
		return NetworkInfo{}, fmt.Errorf("list interfaces: %w", err)
	}
	var info NetworkInfo
	for _, iface := range ifaces {
		if !hasFlag(iface.Flags, "up") || hasFlag(iface.Flags, "loopback") {
			continue
		}
		ii := InterfaceInfo{Name: iface.Name}
		for _, a := range iface.Addrs {
			ii.Addrs = append(ii.Addrs, a.Addr)
		}
		info.Interfaces = append(info.Interfaces, ii)
	}

	counters, err := gnet.IOCountersWithContext(ctx, false)
	if err != nil {
		return NetworkInfo{}, fmt.Errorf("read io counters: %w", err)
	}
	if len(counters) > 0 {
		info.BytesSent = counters[0].BytesSent
		info.BytesRecv = counters[0].BytesRecv
	}
	return info, nil
}

func hasFlag(flags []string, want string) bool {
	for _, f := range flags {
		if f == want {
			return true
		}
	}
	return false
}

func osName(goos string) string {
	switch goos {
	case "linux":
		return "Linux"
	case "darwin":
		return "Darwin"
	case "windows":
		return "Windows"
	default:
		return goos
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FormatUptime renders d as "3h 12m". Hours are not folded into days.
func FormatUptime(d time.Duration) string {
	total := int64(d / time.Minute)
	return fmt.Sprintf("%dh %dm", total/60, total%60)
}
