// autd3cpu-bridge: forward a captured JSON-lines frame trace to a real
// CPU board over a USB debug dongle, for bench-testing against physical
// BRAM instead of the simulator. Degrades to a clear error, rather than a
// panic, when no dongle is attached.
//
// Examples:
//
//	./autd3cpu-bridge -t capture.jsonl
//	./autd3cpu-bridge -t capture.jsonl -d "#0" -v
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/gousb"
	"github.com/spf13/pflag"

	"github.com/shinolab/autd3cpu-go/pkg/trace"
	"github.com/shinolab/autd3cpu-go/pkg/usbbridge"
)

func main() {
	tracePath := pflag.StringP("trace", "t", "", "Path to a JSON-lines frame trace (required)")
	deviceSel := pflag.StringP("device", "d", "", usbbridge.SelectorUsage())
	verbose := pflag.BoolP("verbose", "v", false, "Verbose output")
	ackTimeout := pflag.Duration("ack-timeout", 500*time.Millisecond, "Timeout waiting for the board's ack per frame")
	pflag.Parse()

	if *tracePath == "" {
		fmt.Fprintln(os.Stderr, "Error: -t/--trace is required")
		pflag.PrintDefaults()
		os.Exit(1)
	}

	entries, err := trace.ReadAll(*tracePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to read trace: %v\n", err)
		os.Exit(1)
	}

	ctx := gousb.NewContext()
	defer ctx.Close()

	dev, err := usbbridge.Open(ctx, usbbridge.Selector(*deviceSel))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: no bridge dongle available: %v\n", err)
		fmt.Fprintln(os.Stderr, "Hint: feed the trace to cmd/autd3cpu-sim with -f to exercise the dispatcher without hardware.")
		os.Exit(1)
	}
	defer dev.Close()

	if *verbose {
		fmt.Printf("Connected to bridge at bus %d address %d\n", dev.Bus, dev.Address)
	}

	for i, e := range entries {
		header, err := e.Header()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: entry %d: bad header hex: %v\n", i, err)
			os.Exit(1)
		}
		body, err := e.Body()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: entry %d: bad body hex: %v\n", i, err)
			os.Exit(1)
		}

		if err := dev.SendFrame(header, body); err != nil {
			fmt.Fprintf(os.Stderr, "Error: frame %d: send failed: %v\n", i, err)
			os.Exit(1)
		}
		ack, err := dev.RecvAck(*ackTimeout)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: frame %d: ack timeout: %v\n", i, err)
			os.Exit(1)
		}
		if *verbose {
			fmt.Printf("frame %d: ack=0x%04X\n", i, ack)
		}
	}

	fmt.Printf("Forwarded %d frame(s)\n", len(entries))
}
