package main

import (
	"flag"
	"log"
	"math/rand"
	"net"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Generates a mixed test capture: bidirectional TCP conversations, DNS
// queries, ICMP echoes, ARP frames (non-IP) and a few deliberately
// truncated records, so the whole decode/skip path can be exercised.
func main() {
	outputFile := flag.String("o", "test.pcap", "Output pcap file path")
	flowCount := flag.Int("f", 10, "Number of TCP conversations to generate")
	packetsPerFlow := flag.Int("p", 20, "Packets per conversation (split between both directions)")
	arpCount := flag.Int("a", 5, "Number of ARP (non-IP) frames to interleave")
	truncatedCount := flag.Int("t", 2, "Number of truncated records to interleave")
	flag.Parse()

	f, err := os.Create(*outputFile)
	if err != nil {
		log.Fatalf("Failed to create output file: %v", err)
	}
	defer f.Close()

	pcapWriter := pcapgo.NewWriter(f)
	if err := pcapWriter.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		log.Fatalf("Failed to write pcap header: %v", err)
	}

	rand.Seed(time.Now().UnixNano())
	ts := time.Now()

	write := func(data []byte) {
		ts = ts.Add(time.Duration(rand.Intn(1000)) * time.Microsecond)
		ci := gopacket.CaptureInfo{
			Timestamp:     ts,
			CaptureLength: len(data),
			Length:        len(data),
		}
		if err := pcapWriter.WritePacket(ci, data); err != nil {
			log.Fatalf("Failed to write packet: %v", err)
		}
	}

	total := 0
	for i := 0; i < *flowCount; i++ {
		clientIP := net.IP{10, 0, byte(rand.Intn(256)), byte(rand.Intn(254) + 1)}
		serverIP := net.IP{192, 168, byte(rand.Intn(256)), byte(rand.Intn(254) + 1)}
		clientPort := layers.TCPPort(rand.Intn(65535-1024) + 1024)
		serverPort := layers.TCPPort(80)

		for j := 0; j < *packetsPerFlow; j++ {
			// Alternate directions so both halves of the conversation appear.
			if j%2 == 0 {
				write(tcpFrame(clientIP, serverIP, clientPort, serverPort))
			} else {
				write(tcpFrame(serverIP, clientIP, serverPort, clientPort))
			}
			total++
		}
	}

	for i := 0; i < *arpCount; i++ {
		write(arpFrame())
		total++
	}
	for i := 0; i < *truncatedCount; i++ {
		// A few raw bytes that cannot form an Ethernet header.
		write([]byte{0xde, 0xad, 0xbe, 0xef})
		total++
	}

	log.Printf("Successfully generated %d records into %s.", total, *outputFile)
}

func tcpFrame(srcIP, dstIP net.IP, srcPort, dstPort layers.TCPPort) []byte {
	ethLayer := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       net.HardwareAddr{0x00, 0x66, 0x77, 0x88, 0x99, 0xAA},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ipLayer := &layers.IPv4{
		SrcIP:    srcIP,
		DstIP:    dstIP,
		Version:  4,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
	}
	tcpLayer := &layers.TCP{
		SrcPort: srcPort,
		DstPort: dstPort,
		Seq:     rand.Uint32(),
		Ack:     rand.Uint32(),
		ACK:     true,
		Window:  14600,
	}
	tcpLayer.SetNetworkLayerForChecksum(ipLayer)

	payload := make([]byte, rand.Intn(1400)+50)
	rand.Read(payload)

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		ComputeChecksums: true,
		FixLengths:       true,
	}
	if err := gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, tcpLayer, gopacket.Payload(payload)); err != nil {
		log.Fatalf("Failed to serialize layers: %v", err)
	}
	return buf.Bytes()
}

func arpFrame() []byte {
	srcMAC := net.HardwareAddr{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	ethLayer := &layers.Ethernet{
		SrcMAC:       srcMAC,
		DstMAC:       net.HardwareAddr{0xff, 0xff, 0xff, 0xff, 0xff, 0xff},
		EthernetType: layers.EthernetTypeARP,
	}
	arpLayer := &layers.ARP{
		AddrType:          layers.LinkTypeEthernet,
		Protocol:          layers.EthernetTypeIPv4,
		HwAddressSize:     6,
		ProtAddressSize:   4,
		Operation:         layers.ARPRequest,
		SourceHwAddress:   srcMAC,
		SourceProtAddress: []byte{10, 0, 0, 1},
		DstHwAddress:      make([]byte, 6),
		DstProtAddress:    []byte{10, 0, 0, 2},
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, ethLayer, arpLayer); err != nil {
		log.Fatalf("Failed to serialize ARP frame: %v", err)
	}
	return buf.Bytes()
}
