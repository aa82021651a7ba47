package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"firestige.xyz/pcapflow/internal/pcap"
)

var listCmd = &cobra.Command{
	Use:   "list <file>",
	Short: "List every captured block/record, not just IP datagrams",
	Long: `list walks a capture file block by block (or record by record for
legacy pcap), printing one diagnostic line per captured frame: its packet
number, timestamp, interface index, and original/captured sizes. Unlike
filter, truncated frames and non-IP frames are shown too.`,
	Args: cobra.ExactArgs(1),
	RunE: runList,
}

func runList(cmd *cobra.Command, args []string) error {
	r, err := pcap.Open(args[0], reporter)
	if err != nil {
		return err
	}
	defer r.Close()

	for {
		frame, err := r.NextCapturedFrame()
		if err != nil {
			if err == pcap.ErrEndOfInput {
				return nil
			}
			return err
		}
		ts := "-"
		if frame.Timestamp.Valid() {
			ts = pcap.ToTime(frame.Timestamp.Micros()).Format(time.RFC3339Nano)
		}
		trunc := ""
		if frame.Truncated {
			trunc = " (truncated)"
		}
		fmt.Printf("%d\t%s\tif=%d\toriginal=%d\tcaptured=%d%s\n",
			frame.PacketNumber, ts, frame.InterfaceIndex, frame.OriginalSize, len(frame.Bytes), trunc)
	}
}
