package netlab

import (
	"fmt"
	"net"
	"strings"
)

// CalculateSubnet computes network, broadcast, mask, and usable host
// count from CIDR notation. The host portion of the input is ignored,
// so "192.168.1.57/24" works the same as "192.168.1.0/24".
func CalculateSubnet(cidr string) (string, error) {
	cidr = strings.TrimSpace(cidr)
	_, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return "", fmt.Errorf("invalid CIDR %q", cidr)
	}

	ip4 := ipnet.IP.To4()
	if ip4 == nil {
		return "", fmt.Errorf("only IPv4 networks are supported, got %q", cidr)
	}

	mask := ipnet.Mask
	broadcast := make(net.IP, len(ip4))
	for i := range ip4 {
		broadcast[i] = ip4[i] | ^mask[i]
	}

	ones, bits := mask.Size()
	hosts := 0
	if bits-ones >= 2 {
		hosts = (1 << (bits - ones)) - 2
	}

	return fmt.Sprintf("Network: %s, Broadcast: %s, Mask: %s, Usable hosts: %d",
		ip4, broadcast, net.IP(mask), hosts), nil
}
