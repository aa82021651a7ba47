// Package cmd implements the pcapflow CLI using the cobra framework.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"firestige.xyz/pcapflow/internal/config"
	"firestige.xyz/pcapflow/internal/log"
)

var (
	configFile string
	cfg        *config.Config
	reporter   *log.Reporter
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "pcapflow",
	Short: "Read and filter pcap / pcap-ng capture files",
	Long: `pcapflow reads legacy pcap and block-structured pcap-ng capture files
without linking libpcap, decapsulates Ethernet/VLAN/loopback/raw framing
down to the carried IP datagram, and can filter that stream by packet
number, time window, protocol, VLAN tagging, and flow (with optional
auto-learned bidirectional matching).`,
	Version:           "0.1.0",
	PersistentPreRunE: setup,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. Called once by main.main.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (YAML); built-in defaults apply when omitted")

	rootCmd.AddCommand(filterCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(statsCmd)
}

// setup loads configuration and builds the process-wide logger and
// pcap.Reporter before any subcommand runs.
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := config.Load(configFile)
	if err != nil {
		return err
	}
	cfg = loaded

	if err := log.Init(&cfg.Log); err != nil {
		return err
	}
	reporter = log.NewReporter(log.GetLogger())
	return nil
}

func exitWithError(msg string, err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", msg)
	}
	os.Exit(1)
}
