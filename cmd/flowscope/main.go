package main

import (
	"fmt"
	"os"

	"flowscope/internal/classifier"
	"flowscope/internal/config"
	"flowscope/internal/model"
	"flowscope/pkg/pcap"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	cfgFile    string
	streaming  bool
	buildTable bool
	sortByTs   bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "flowscope <capture.pcap>",
	Short: "Reconstruct packet sequences and flows from a pcap capture",
	Long: `flowscope reads a stored pcap capture, decodes the IP packets it
contains and reconstructs them into an ordered packet sequence and an
optional flow table grouping packets of the same conversation.`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.Flags().BoolVar(&streaming, "stream", false, "consume the capture lazily instead of materializing it")
	rootCmd.Flags().BoolVar(&buildTable, "flow-table", false, "group packets into flows (implies sorting)")
	rootCmd.Flags().BoolVar(&sortByTs, "sort", false, "sort the materialized sequence by timestamp")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "report read statistics and classifier hits")
}

func run(cmd *cobra.Command, args []string) error {
	opts := pcap.Options{Mode: pcap.ModeMaterialized}

	if cfgFile != "" {
		cfg, err := config.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		opts.File = cfg.Reader.File
		opts.Interface = cfg.Reader.Interface
		opts.BuildFlowTable = cfg.Reader.BuildFlowTable
		opts.SortByTimestamp = cfg.Reader.SortByTimestamp
		opts.Verbose = cfg.Reader.Verbose
		if cfg.Reader.Mode != "" {
			mode, err := pcap.ParseMode(cfg.Reader.Mode)
			if err != nil {
				return err
			}
			opts.Mode = mode
		}
	}

	// Flags and the positional capture path override the config file.
	if len(args) == 1 {
		opts.File = args[0]
	}
	if streaming {
		opts.Mode = pcap.ModeStreaming
	}
	if buildTable {
		opts.BuildFlowTable = true
	}
	if sortByTs {
		opts.SortByTimestamp = true
	}
	if verbose {
		opts.Verbose = true
		logrus.SetLevel(logrus.DebugLevel)
	}

	source, err := pcap.NewSource(opts)
	if err != nil {
		return err
	}
	defer source.Close()

	if opts.Mode == pcap.ModeStreaming {
		return runStreaming(source)
	}
	return runMaterialized(source, opts)
}

// runStreaming pulls the capture one packet at a time, reporting classifier
// hits as they appear.
func runStreaming(source *pcap.Source) error {
	stream, err := source.Stream()
	if err != nil {
		return err
	}

	count := 0
	for {
		pkt, ok := stream.Next()
		if !ok {
			break
		}
		count++
		reportPacket(pkt)
	}
	logrus.Infof("streamed %d IP packets", count)
	return nil
}

func runMaterialized(source *pcap.Source, opts pcap.Options) error {
	packets, err := source.Packets()
	if err != nil {
		return err
	}
	for _, pkt := range packets {
		reportPacket(pkt)
	}
	logrus.Infof("materialized %d IP packets", len(packets))

	if !opts.BuildFlowTable {
		return nil
	}
	table, err := source.FlowTable()
	if err != nil {
		return err
	}
	for _, rec := range table.Records() {
		fmt.Printf("%s\tpackets=%d bytes=%d first=%s last=%s\n",
			rec.Key, rec.PacketCount, rec.ByteCount,
			rec.FirstSeen.Format("15:04:05.000000"), rec.LastSeen.Format("15:04:05.000000"))
	}
	logrus.Infof("reconstructed %d flows", table.Len())
	return nil
}

// reportPacket logs application-layer classifier hits for one packet.
func reportPacket(pkt *model.ParsedPacket) {
	switch {
	case classifier.IsDNS(pkt):
		logrus.Debugf("%s DNS queries=%v", pkt.FiveTuple, classifier.Queries(pkt))
	case classifier.IsHTTP(pkt):
		if ua := classifier.UserAgent(pkt); ua != "" {
			logrus.Debugf("%s HTTP user-agent=%q", pkt.FiveTuple, ua)
		} else {
			logrus.Debugf("%s HTTP", pkt.FiveTuple)
		}
	case classifier.IsSMTP(pkt):
		logrus.Debugf("%s SMTP", pkt.FiveTuple)
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
