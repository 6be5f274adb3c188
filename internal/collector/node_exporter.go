package collector

import (
	"context"
	"fmt"
	"net/http"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"

	"github.com/nozo-moto/netspeed/pkg/types"
)

const (
	transmitMetric = "node_network_transmit_bytes_total"
	receiveMetric  = "node_network_receive_bytes_total"
)

// NodeExporterCollector reads interface byte counters from a node_exporter
// metrics endpoint instead of the local host.
type NodeExporterCollector struct {
	url    string
	iface  string
	client *http.Client
}

func NewNodeExporterCollector(url, iface string) *NodeExporterCollector {
	return &NodeExporterCollector{
		url:   url,
		iface: iface,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

func (nc *NodeExporterCollector) Read(ctx context.Context) (types.Counters, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, nc.url, nil)
	if err != nil {
		return types.Counters{}, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := nc.client.Do(req)
	if err != nil {
		return types.Counters{}, fmt.Errorf("failed to query node exporter: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.Counters{}, fmt.Errorf("failed to query node exporter: unexpected status %s", resp.Status)
	}

	parser := expfmt.TextParser{}
	data, err := parser.TextToMetricFamilies(resp.Body)
	if err != nil {
		return types.Counters{}, fmt.Errorf("failed to parse metrics: %w", err)
	}

	var counters types.Counters
	for _, field := range []struct {
		name string
		dst  *uint64
	}{
		{transmitMetric, &counters.BytesSent},
		{receiveMetric, &counters.BytesReceived},
	} {
		family, ok := data[field.name]
		if !ok {
			return types.Counters{}, fmt.Errorf("failed to find %s in scrape", field.name)
		}
		total, found := nc.sum(family)
		if !found {
			if nc.iface != "" {
				return types.Counters{}, fmt.Errorf("%w: %s", ErrInterfaceNotFound, nc.iface)
			}
			return types.Counters{}, fmt.Errorf("failed to find a usable %s sample", field.name)
		}
		*field.dst = total
	}

	return counters, nil
}

// sum adds up the matching devices. Samples that carry neither a counter
// nor an untyped value are skipped.
func (nc *NodeExporterCollector) sum(family *dto.MetricFamily) (uint64, bool) {
	var total uint64
	found := false
	for _, metric := range family.GetMetric() {
		device := deviceLabel(metric)
		if nc.iface == "" && isLoopback(device) {
			continue
		}
		if nc.iface != "" && device != nc.iface {
			continue
		}
		switch {
		case metric.GetCounter() != nil:
			total += uint64(metric.GetCounter().GetValue())
		case metric.GetUntyped() != nil:
			total += uint64(metric.GetUntyped().GetValue())
		default:
			continue
		}
		found = true
	}
	return total, found
}

func deviceLabel(metric *dto.Metric) string {
	for _, label := range metric.GetLabel() {
		if label.GetName() == "device" {
			return label.GetValue()
		}
	}
	return ""
}
