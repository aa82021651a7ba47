package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"firestige.xyz/pcapflow/internal/ippacket"
	"firestige.xyz/pcapflow/internal/pcap"
)

var filterFlags struct {
	firstPacket     string
	lastPacket      string
	firstTimestamp  string
	lastTimestamp   string
	firstDate       string
	lastDate        string
	vlanIDs         []string
	protocols       []string
	source          string
	destination     string
	bidirectional   bool
	wildcard        bool
	follow          bool
	addressLogLevel string
}

var filterCmd = &cobra.Command{
	Use:   "filter <file>",
	Short: "Filter IP datagrams out of a pcap / pcap-ng capture",
	Long: `filter reads a capture file (or "-" for standard input), decapsulates
each frame down to its IP datagram, and prints one line per datagram that
passes the configured packet-number/time window, protocol set, VLAN
match, and flow predicates.`,
	Args: cobra.ExactArgs(1),
	RunE: runFilter,
}

func init() {
	fs := filterCmd.Flags()
	fs.StringVar(&filterFlags.firstPacket, "first-packet", "", "skip datagrams before this 1-based packet number")
	fs.StringVar(&filterFlags.lastPacket, "last-packet", "", "stop after this 1-based packet number")
	fs.StringVar(&filterFlags.firstTimestamp, "first-timestamp", "", "skip datagrams before this microsecond offset from the first timestamp")
	fs.StringVar(&filterFlags.lastTimestamp, "last-timestamp", "", "stop after this microsecond offset from the first timestamp")
	fs.StringVar(&filterFlags.firstDate, "first-date", "", "skip datagrams before this RFC3339 timestamp")
	fs.StringVar(&filterFlags.lastDate, "last-date", "", "stop after this RFC3339 timestamp")
	fs.StringSliceVar(&filterFlags.vlanIDs, "vlan-id", nil, "expected VLAN id, outer to inner (repeatable)")
	fs.StringSliceVar(&filterFlags.protocols, "proto", nil, "protocol to match: tcp, udp, or a 0-255 IP protocol number (repeatable)")
	fs.StringVar(&filterFlags.source, "source", "", "source endpoint: ip[:port], * for wildcard")
	fs.StringVar(&filterFlags.destination, "destination", "", "destination endpoint: ip[:port], * for wildcard")
	fs.BoolVar(&filterFlags.bidirectional, "bidirectional", false, "also match datagrams with source/destination reversed")
	fs.BoolVar(&filterFlags.wildcard, "wildcard", false, "keep wildcard endpoints open instead of learning them from the first match")
	fs.BoolVar(&filterFlags.follow, "follow", false, "retry on clean end-of-input instead of stopping, for a growing capture")
	fs.StringVar(&filterFlags.addressLogLevel, "address-log-level", "info", "severity to log the auto-learned flow at: debug, info, warning, error")
}

func parseSeverity(s string) (pcap.Severity, error) {
	switch s {
	case "debug":
		return pcap.SeverityDebug, nil
	case "info", "":
		return pcap.SeverityInfo, nil
	case "warning", "warn":
		return pcap.SeverityWarning, nil
	case "error":
		return pcap.SeverityError, nil
	default:
		return pcap.SeverityInfo, fmt.Errorf("unrecognized address-log-level %q", s)
	}
}

// buildFilterConfig builds a pcap.FilterConfig from the command-line
// flags, falling back to the loaded config file's filter defaults for
// anything left unset on the command line.
func buildFilterConfig() (pcap.FilterConfig, error) {
	var out pcap.FilterConfig
	var err error
	defaults := cfg.Filter

	if out.FirstPacket, err = parseOptionalUint64(filterFlags.firstPacket); err != nil {
		return out, err
	}
	if !out.FirstPacket.Set && defaults.FirstPacket != nil {
		out.FirstPacket = pcap.Some(*defaults.FirstPacket)
	}
	if out.LastPacket, err = parseOptionalUint64(filterFlags.lastPacket); err != nil {
		return out, err
	}
	if !out.LastPacket.Set && defaults.LastPacket != nil {
		out.LastPacket = pcap.Some(*defaults.LastPacket)
	}
	if out.FirstTimeOffset, err = parseOptionalInt64(filterFlags.firstTimestamp); err != nil {
		return out, err
	}
	if !out.FirstTimeOffset.Set && defaults.FirstTimeOffset != nil {
		out.FirstTimeOffset = pcap.Some(*defaults.FirstTimeOffset)
	}
	if out.LastTimeOffset, err = parseOptionalInt64(filterFlags.lastTimestamp); err != nil {
		return out, err
	}
	if !out.LastTimeOffset.Set && defaults.LastTimeOffset != nil {
		out.LastTimeOffset = pcap.Some(*defaults.LastTimeOffset)
	}
	if out.FirstTime, err = parseOptionalDate(filterFlags.firstDate); err != nil {
		return out, err
	}
	if out.LastTime, err = parseOptionalDate(filterFlags.lastDate); err != nil {
		return out, err
	}
	if out.VlanMatch, err = parseVlanIDs(filterFlags.vlanIDs); err != nil {
		return out, err
	}
	if len(out.VlanMatch) == 0 {
		out.VlanMatch = defaults.VlanMatch
	}
	if out.ProtocolSet, err = parseProtocols(filterFlags.protocols); err != nil {
		return out, err
	}
	if len(out.ProtocolSet) == 0 && len(defaults.Protocols) > 0 {
		if out.ProtocolSet, err = parseProtocols(defaults.Protocols); err != nil {
			return out, fmt.Errorf("config: filter.protocols: %w", err)
		}
	}

	if out.Source, err = parseEndpoint(filterFlags.source); err != nil {
		return out, err
	}
	if out.Destination, err = parseEndpoint(filterFlags.destination); err != nil {
		return out, err
	}
	out.Bidirectional = filterFlags.bidirectional
	out.WildcardAllowed = filterFlags.wildcard
	return out, nil
}

func runFilter(cmd *cobra.Command, args []string) error {
	r, err := pcap.Open(args[0], reporter)
	if err != nil {
		return err
	}
	defer r.Close()

	if filterFlags.follow {
		d, perr := time.ParseDuration(cfg.Follow.Interval)
		if perr != nil {
			d = 500 * time.Millisecond
		}
		r.SetStreamMode(cfg.Follow.Retries, d)
	}

	fcfg, err := buildFilterConfig()
	if err != nil {
		return err
	}
	fs := pcap.NewFilterStage(r, fcfg, reporter)
	sev, err := parseSeverity(filterFlags.addressLogLevel)
	if err != nil {
		return err
	}
	fs.SetAddressFilterLogLevel(sev)

	for {
		res, err := fs.Next()
		if err != nil {
			if err == pcap.ErrEndOfInput {
				return nil
			}
			return err
		}
		printIPResult(res)
	}
}

func printIPResult(res *pcap.IPResult) {
	ts := "-"
	if res.Timestamp.Valid() {
		ts = pcap.ToTime(res.Timestamp.Micros()).Format(time.RFC3339Nano)
	}
	pkt := res.Packet
	fmt.Printf("%d\t%s\tvlan=%s\t%s -> %s\tproto=%d\tsize=%d\n",
		res.PacketNumber, ts, formatVlanStack(res.Vlans),
		endpointString(pkt.Source), endpointString(pkt.Destination), pkt.Protocol, res.OriginalSize)
}

func endpointString(e ippacket.Endpoint) string {
	return e.String()
}
