// Package netlab provides tools backed by a simulated lab network.
// The data models a small topology of three routers and a handful of
// access interfaces, enough to exercise every tool path without any
// reachable device.
package netlab

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/netsage/netsage/internal/tools"
)

// VLAN describes one entry in the lab VLAN database.
type VLAN struct {
	Name    string
	Subnet  string
	Gateway string
}

var vlanDB = map[int]VLAN{
	10:  {Name: "USERS", Subnet: "192.168.10.0/24", Gateway: "192.168.10.1"},
	20:  {Name: "SERVERS", Subnet: "192.168.20.0/24", Gateway: "192.168.20.1"},
	30:  {Name: "MANAGEMENT", Subnet: "192.168.30.0/24", Gateway: "192.168.30.1"},
	99:  {Name: "NATIVE", Subnet: "192.168.99.0/24", Gateway: "192.168.99.1"},
	100: {Name: "VOICE", Subnet: "10.10.100.0/24", Gateway: "10.10.100.1"},
}

var interfaceStatus = map[string]string{
	"GigabitEthernet0/1": "up/up, VLAN 10, 1Gbps, Full duplex",
	"GigabitEthernet0/2": "down/down, VLAN 20, auto, auto",
	"GigabitEthernet0/3": "up/up, VLAN 30, 100Mbps, Full duplex",
}

var interfaceErrors = map[string]string{
	"GigabitEthernet0/1": "Input errors: 0, Output errors: 0, CRC: 0, Collisions: 0 - HEALTHY",
	"GigabitEthernet0/2": "Input errors: 1542, Output errors: 23, CRC: 847, Collisions: 156 - ERRORS DETECTED",
	"GigabitEthernet0/3": "Input errors: 5, Output errors: 0, CRC: 5, Collisions: 0 - MINOR ISSUES",
}

var ospfNeighbors = map[string]string{
	"R1": "Neighbor 192.168.1.2 (R2): FULL/DR on Gi0/0\nNeighbor 192.168.1.3 (R3): FULL/BDR on Gi0/0",
	"R2": "Neighbor 192.168.1.1 (R1): FULL/BDR on Gi0/0\nNeighbor 192.168.1.3 (R3): FULL/DR on Gi0/0",
}

var bgpSummaries = map[string]string{
	"R1": "Neighbor 10.0.0.2 (AS 65002): Established, 150 prefixes\nNeighbor 10.0.0.3 (AS 65003): Established, 200 prefixes\nNeighbor 10.0.0.4 (AS 65004): Idle, 0 prefixes",
	"R2": "Neighbor 10.0.0.1 (AS 65001): Established, 120 prefixes",
}

var routingTables = map[string]string{
	"R1": "0.0.0.0/0 via 10.0.0.1 (static)\n192.168.10.0/24 directly connected, Gi0/1\n192.168.20.0/24 via 192.168.1.2 (OSPF)\n192.168.30.0/24 via 192.168.1.3 (OSPF)",
	"R2": "0.0.0.0/0 via 10.0.0.1 (OSPF)\n192.168.10.0/24 via 192.168.1.1 (OSPF)\n192.168.20.0/24 directly connected, Gi0/1",
}

var pingResults = map[string]string{
	"192.168.10.1": "Success: 5/5 packets, avg latency 1ms",
	"192.168.20.1": "Success: 5/5 packets, avg latency 2ms",
	"192.168.30.1": "Failed: 0/5 packets, destination unreachable",
	"8.8.8.8":      "Success: 5/5 packets, avg latency 15ms",
}

// LookupVLAN formats the database entry for a VLAN id. Unknown ids
// produce a not-found message rather than an error so the model can
// relay it to the user.
func LookupVLAN(id int) string {
	vlan, ok := vlanDB[id]
	if !ok {
		return fmt.Sprintf("VLAN %d not found", id)
	}
	return fmt.Sprintf("VLAN %d: %s, Subnet: %s, Gateway: %s", id, vlan.Name, vlan.Subnet, vlan.Gateway)
}

// VLANIDs returns the known VLAN ids in ascending order.
func VLANIDs() []int {
	ids := make([]int, 0, len(vlanDB))
	for id := range vlanDB {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// RegisterTools adds the simulated lab tools to a registry.
func RegisterTools(r *tools.Registry) {
	r.Register(&tools.Tool{
		Name:        "calculate_subnet",
		Description: `Calculate subnet details. Input: CIDR notation (e.g., "192.168.1.0/24")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			return CalculateSubnet(input)
		},
	})

	r.Register(&tools.Tool{
		Name:        "lookup_vlan",
		Description: "Look up VLAN info. Input: VLAN ID number (e.g., 10)",
		Handler: func(ctx context.Context, input string) (string, error) {
			id, err := strconv.Atoi(strings.TrimSpace(input))
			if err != nil {
				return "", fmt.Errorf("VLAN ID must be a number, got %q", input)
			}
			return LookupVLAN(id), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "check_interface",
		Description: `Check interface status. Input: interface name (e.g., "GigabitEthernet0/1")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			return lookupTable(interfaceStatus, input, "Interface %s not found"), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "get_ospf_neighbors",
		Description: `Get OSPF neighbors. Input: device name (e.g., "R1")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			device := strings.TrimSpace(input)
			data, ok := ospfNeighbors[device]
			if !ok {
				return fmt.Sprintf("No OSPF data for %s", device), nil
			}
			return fmt.Sprintf("OSPF neighbors for %s:\n%s", device, data), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "get_bgp_summary",
		Description: `Get BGP summary. Input: device name (e.g., "R1")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			device := strings.TrimSpace(input)
			data, ok := bgpSummaries[device]
			if !ok {
				return fmt.Sprintf("No BGP data for %s", device), nil
			}
			return fmt.Sprintf("BGP summary for %s:\n%s", device, data), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "ping_device",
		Description: `Ping a target. Input: IP address (e.g., "192.168.10.1")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			target := strings.TrimSpace(input)
			result, ok := pingResults[target]
			if !ok {
				result = "Host unreachable"
			}
			return fmt.Sprintf("Ping %s: %s", target, result), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "get_interface_errors",
		Description: `Get interface error counters. Input: interface name (e.g., "GigabitEthernet0/1")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			return lookupTable(interfaceErrors, input, "Interface %s not found"), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "get_routing_table",
		Description: `Get routing table. Input: device name (e.g., "R1")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			device := strings.TrimSpace(input)
			data, ok := routingTables[device]
			if !ok {
				return fmt.Sprintf("No routing data for %s", device), nil
			}
			return fmt.Sprintf("Routing table for %s:\n%s", device, data), nil
		},
	})
}

func lookupTable(table map[string]string, key, notFound string) string {
	key = strings.TrimSpace(key)
	if v, ok := table[key]; ok {
		return fmt.Sprintf("%s: %s", key, v)
	}
	return fmt.Sprintf(notFound, key)
}
