package netdev

import (
	"context"
	"fmt"
	"strings"

	"github.com/netsage/netsage/internal/tools"
)

// RegisterTools adds the live device tools to a registry. Every tool
// takes a device name; two-argument tools take "device,arg".
func RegisterTools(r *tools.Registry, runner Runner) {
	devices := strings.Join(runner.DeviceNames(), ", ")

	r.Register(&tools.Tool{
		Name:        "health_check",
		Description: fmt.Sprintf(`Check device health. Input: device name (e.g., "R1"). Available devices: %s`, devices),
		Handler: func(ctx context.Context, input string) (string, error) {
			return HealthCheck(ctx, runner, strings.TrimSpace(input))
		},
	})

	r.Register(&tools.Tool{
		Name:        "ospf_neighbors",
		Description: `Get OSPF neighbors. Input: device name (e.g., "R1")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			device := strings.TrimSpace(input)
			out, err := runner.Run(ctx, device, "show ip ospf neighbor")
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("OSPF Neighbors for %s:\n%s", device, out), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "bgp_summary",
		Description: `Get BGP summary. Input: device name (e.g., "R1")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			device := strings.TrimSpace(input)
			out, err := runner.Run(ctx, device, "show ip bgp summary")
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("BGP Summary for %s:\n%s", device, out), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "interface_status",
		Description: `Get interface status. Input: device name, optionally interface (e.g., "R1" or "R1,GigabitEthernet1")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			device, iface := tools.PairArgs(input)
			command := "show ip interface brief"
			if iface != "" {
				command = "show interface " + iface
			}
			return runner.Run(ctx, device, command)
		},
	})

	r.Register(&tools.Tool{
		Name:        "routing_table",
		Description: `Get routing table. Input: device name (e.g., "R1")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			device := strings.TrimSpace(input)
			out, err := runner.Run(ctx, device, "show ip route")
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Routing Table for %s:\n%s", device, out), nil
		},
	})

	r.Register(&tools.Tool{
		Name:        "ping",
		Description: `Ping from a device. Input: device,target (e.g., "R1,8.8.8.8")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			device, target := tools.PairArgs(input)
			if target == "" {
				return "", fmt.Errorf("ping needs device,target")
			}
			return runner.Run(ctx, device, fmt.Sprintf("ping %s repeat 3", target))
		},
	})

	r.Register(&tools.Tool{
		Name:        "running_config",
		Description: `Get running config. Input: device name, optionally section (e.g., "R1" or "R1,router ospf")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			device, section := tools.PairArgs(input)
			command := "show running-config"
			if section != "" {
				command = "show running-config | section " + section
			}
			return runner.Run(ctx, device, command)
		},
	})

	r.Register(&tools.Tool{
		Name:        "send_command",
		Description: `Send any command. Input: device,command (e.g., "R1,show version")`,
		Handler: func(ctx context.Context, input string) (string, error) {
			device, command := tools.PairArgs(input)
			if command == "" {
				return "", fmt.Errorf("send_command needs device,command")
			}
			return runner.Run(ctx, device, command)
		},
	})
}

// HealthCheck classifies a device as HEALTHY, DEGRADED, or CRITICAL.
// Routers are judged by interface state; an unreachable device is
// always CRITICAL.
func HealthCheck(ctx context.Context, runner Runner, device string) (string, error) {
	d, ok := runner.Device(device)
	if !ok {
		return "", fmt.Errorf("device '%s' not found", device)
	}

	if d.Platform == PlatformLinux {
		out, err := runner.Run(ctx, device, "uptime")
		if err != nil {
			return fmt.Sprintf("%s is CRITICAL - Error: %v", device, err), nil
		}
		return fmt.Sprintf("%s is HEALTHY\nUptime: %s", device, strings.TrimSpace(out)), nil
	}

	uptime, err := runner.Run(ctx, device, "show version | include uptime")
	if err != nil {
		return fmt.Sprintf("%s is CRITICAL - Error: %v", device, err), nil
	}
	brief, err := runner.Run(ctx, device, "show ip interface brief")
	if err != nil {
		return fmt.Sprintf("%s is CRITICAL - Error: %v", device, err), nil
	}

	up, down := countInterfaceStates(brief)
	status := "HEALTHY"
	switch {
	case down == 0:
		status = "HEALTHY"
	case up > down:
		status = "DEGRADED"
	default:
		status = "CRITICAL"
	}

	return fmt.Sprintf("%s is %s\n%s\nInterfaces: %d up, %d down",
		device, status, strings.TrimSpace(uptime), up, down), nil
}

// countInterfaceStates tallies up/down lines from "show ip interface
// brief" output, skipping administratively down interfaces.
func countInterfaceStates(brief string) (up, down int) {
	for _, line := range strings.Split(brief, "\n") {
		lower := strings.ToLower(line)
		if strings.Contains(lower, "admin") {
			continue
		}
		if strings.Contains(lower, "down") {
			down++
		} else if strings.Contains(lower, "up") {
			up++
		}
	}
	return up, down
}
