package cmd

import (
	"fmt"
	"net/netip"
	"strconv"
	"strings"
	"time"

	"firestige.xyz/pcapflow/internal/ippacket"
	"firestige.xyz/pcapflow/internal/pcap"
)

// parseEndpoint accepts "ip:port", "ip:*", "*:port", or "*" and returns
// the matching Endpoint, with WildcardEndpoint for an empty string.
func parseEndpoint(s string) (ippacket.Endpoint, error) {
	if s == "" || s == "*" || s == "*:*" {
		return ippacket.WildcardEndpoint(), nil
	}
	host, portStr, err := splitHostPort(s)
	if err != nil {
		return ippacket.Endpoint{}, err
	}

	ep := ippacket.WildcardEndpoint()
	if host != "*" {
		addr, err := netip.ParseAddr(host)
		if err != nil {
			return ippacket.Endpoint{}, fmt.Errorf("invalid address %q: %w", host, err)
		}
		ep.Addr = addr
	}
	if portStr != "*" && portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return ippacket.Endpoint{}, fmt.Errorf("invalid port %q: %w", portStr, err)
		}
		ep.Port = port
	}
	return ep, nil
}

func splitHostPort(s string) (host, port string, err error) {
	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return s, "*", nil
	}
	return s[:idx], s[idx+1:], nil
}

// parseProtocols maps protocol names/numbers to the IP protocol numbers
// FilterConfig.ProtocolSet expects.
func parseProtocols(names []string) (map[uint8]struct{}, error) {
	if len(names) == 0 {
		return nil, nil
	}
	set := make(map[uint8]struct{}, len(names))
	for _, name := range names {
		switch strings.ToLower(name) {
		case "tcp":
			set[ippacket.ProtocolTCP] = struct{}{}
		case "udp":
			set[ippacket.ProtocolUDP] = struct{}{}
		default:
			n, err := strconv.Atoi(name)
			if err != nil || n < 0 || n > 255 {
				return nil, fmt.Errorf("invalid protocol %q (use tcp, udp, or a 0-255 IP protocol number)", name)
			}
			set[uint8(n)] = struct{}{}
		}
	}
	return set, nil
}

// parseOptionalUint64 returns an unset Optional for an empty string.
func parseOptionalUint64(s string) (pcap.Optional[uint64], error) {
	if s == "" {
		return pcap.None[uint64](), nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return pcap.Optional[uint64]{}, err
	}
	return pcap.Some(v), nil
}

func parseOptionalInt64(s string) (pcap.Optional[int64], error) {
	if s == "" {
		return pcap.None[int64](), nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return pcap.Optional[int64]{}, err
	}
	return pcap.Some(v), nil
}

// parseOptionalDate parses an RFC3339 timestamp into absolute
// microseconds since the Unix epoch.
func parseOptionalDate(s string) (pcap.Optional[int64], error) {
	if s == "" {
		return pcap.None[int64](), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return pcap.Optional[int64]{}, fmt.Errorf("invalid date %q (want RFC3339): %w", s, err)
	}
	return pcap.Some(t.UnixMicro()), nil
}

func parseVlanIDs(ids []string) ([]uint32, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	out := make([]uint32, 0, len(ids))
	for _, s := range ids {
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vlan id %q: %w", s, err)
		}
		out = append(out, uint32(v))
	}
	return out, nil
}

func formatVlanStack(vlans pcap.VlanStack) string {
	if len(vlans) == 0 {
		return "-"
	}
	ids := make([]string, len(vlans))
	for i, v := range vlans {
		ids[i] = strconv.FormatUint(uint64(v.VlanID), 10)
	}
	return strings.Join(ids, "/")
}
