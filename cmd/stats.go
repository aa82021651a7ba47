package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"firestige.xyz/pcapflow/internal/pcap"
)

var statsCmd = &cobra.Command{
	Use:   "stats <file>",
	Short: "Show capture-wide counters after a full pass",
	Long: `stats reads the entire capture file, then prints the counters and
timestamp bounds the Reader accumulates along the way: packet_count,
ip_packet_count, total packet/IP-packet sizes, and first/last timestamp.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	r, err := pcap.Open(args[0], reporter)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		if _, err := r.NextIP(); err != nil {
			if err != pcap.ErrEndOfInput {
				return err
			}
			break
		}
	}

	fmt.Printf("file_size:          %d\n", r.FileSize())
	fmt.Printf("packet_count:       %d\n", r.PacketCount())
	fmt.Printf("ip_packet_count:    %d\n", r.IPPacketCount())
	fmt.Printf("packets_size:       %d\n", r.TotalPacketsSize())
	fmt.Printf("ip_packets_size:    %d\n", r.TotalIPPacketsSize())
	if first, ok := r.FirstTimestamp(); ok {
		fmt.Printf("first_timestamp:    %s\n", pcap.ToTime(first).Format(time.RFC3339Nano))
	}
	if last, ok := r.LastTimestamp(); ok {
		fmt.Printf("last_timestamp:     %s\n", pcap.ToTime(last).Format(time.RFC3339Nano))
	}
	return nil
}
