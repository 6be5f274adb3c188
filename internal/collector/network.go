package collector

import (
	"context"
	"errors"
	"fmt"

	"github.com/nozo-moto/netspeed/pkg/types"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// ErrInterfaceNotFound is returned when the configured interface is absent
// from the host's counters.
var ErrInterfaceNotFound = errors.New("interface not found")

type NetworkCollector struct {
	iface      string
	ioCounters func(ctx context.Context, pernic bool) ([]psnet.IOCountersStat, error)
	interfaces func(ctx context.Context) (psnet.InterfaceStatList, error)
}

// NewNetworkCollector reads host counters for iface, or the sum of every
// non-loopback interface when iface is empty.
func NewNetworkCollector(iface string) *NetworkCollector {
	return &NetworkCollector{
		iface:      iface,
		ioCounters: psnet.IOCountersWithContext,
		interfaces: psnet.InterfacesWithContext,
	}
}

func (nc *NetworkCollector) Read(ctx context.Context) (types.Counters, error) {
	counters, err := nc.ioCounters(ctx, true)
	if err != nil {
		return types.Counters{}, fmt.Errorf("failed to get network counters: %w", err)
	}

	var total types.Counters
	found := false
	for _, counter := range counters {
		if isLoopback(counter.Name) && nc.iface == "" {
			continue
		}
		if nc.iface != "" && counter.Name != nc.iface {
			continue
		}
		total.BytesSent += counter.BytesSent
		total.BytesReceived += counter.BytesRecv
		found = true
	}

	if nc.iface != "" && !found {
		return types.Counters{}, fmt.Errorf("%w: %s", ErrInterfaceNotFound, nc.iface)
	}
	return total, nil
}

// GetActiveInterfaces lists the host's non-loopback interfaces.
func (nc *NetworkCollector) GetActiveInterfaces(ctx context.Context) ([]string, error) {
	interfaces, err := nc.interfaces(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get interfaces: %w", err)
	}

	var active []string
	for _, iface := range interfaces {
		if !isLoopback(iface.Name) {
			active = append(active, iface.Name)
		}
	}

	return active, nil
}

func isLoopback(name string) bool {
	return name == "lo" || name == "lo0"
}
