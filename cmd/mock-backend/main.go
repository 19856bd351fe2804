// mock-backend serves deterministic diagnosis responses for local development
// of the dashboard and CLI. Check outcomes derive from keywords in the target
// string ("fail", "warn", "slow", "boom"), so every failure scenario can be
// reproduced on demand.
//
// Usage: mock-backend [--addr :8000] [--shape envelope|flat|report|refuse] [--debug]
package main

import (
	"flag"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"net-troubleshooter/internal/mockbackend"
)

func main() {
	addr := flag.String("addr", ":8000", "listen address")
	shape := flag.String("shape", mockbackend.ShapeEnvelope, "default diagnose response shape (envelope|flat|report|refuse)")
	frontendURL := flag.String("frontend-url", "http://localhost:5173", "frontend URL echoed by /quick-check")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	backendURL := "http://" + *addr
	if strings.HasPrefix(*addr, ":") {
		backendURL = "http://localhost" + *addr
	}

	server := &mockbackend.Server{
		DefaultShape: *shape,
		BackendURL:   backendURL,
		FrontendURL:  *frontendURL,
	}

	logrus.Infof("mock backend listening on %s (shape %s)", *addr, *shape)
	if err := http.ListenAndServe(*addr, server.Routes()); err != nil {
		logrus.Fatalf("mock backend: %v", err)
	}
}
