// Package usbbridge talks to a debug dongle wired to the real CPU
// board's EtherCAT tap: it forwards (header, body) frames captured from
// the host down to the board over USB bulk transfers and reads back the
// board's ack word, standing in for a real EtherCAT MAC/PHY when bench
// testing the dispatcher against physical BRAM. Adapted from gocat's
// pkg/yardstick device-transport layer (USB enumeration, endpoint setup,
// bulk in/out), with the YardStick One's RF-specific command set (NIC,
// SPECAN, AES, amplifier, RFST) dropped entirely: this bridge moves
// opaque frame bytes, not RF packets.
package usbbridge

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/gousb"
)

// VendorID and ProductID identify the debug dongle on the USB bus. Both
// are placeholders for a bench-specific device; cmd/autd3cpu-bridge has
// no flag to override them.
const (
	VendorID  = 0x1D50
	ProductID = 0x6088

	epInAddr  = 0x81
	epOutAddr = 0x01

	maxPacketSize = 64
)

// DefaultTimeout bounds each bulk write issued by SendFrame; RecvAck
// takes its own timeout.
const DefaultTimeout = 500 * time.Millisecond

// Device is an open USB connection to a debug dongle.
type Device struct {
	usbDevice *gousb.Device
	usbConfig *gousb.Config
	iface     *gousb.Interface
	epIn      *gousb.InEndpoint
	epOut     *gousb.OutEndpoint

	Serial  string
	Bus     int
	Address int

	mu sync.Mutex
}

// FindAll opens every attached dongle and claims its interface; a
// device whose setup fails is closed and skipped.
func FindAll(ctx *gousb.Context) ([]*Device, error) {
	usbDevs, err := ctx.OpenDevices(func(desc *gousb.DeviceDesc) bool {
		return desc.Vendor == gousb.ID(VendorID) && desc.Product == gousb.ID(ProductID)
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate bridge devices: %w", err)
	}

	devices := make([]*Device, 0, len(usbDevs))
	for _, raw := range usbDevs {
		d, err := wrap(raw)
		if err != nil {
			raw.Close()
			continue
		}
		devices = append(devices, d)
	}
	return devices, nil
}

// Selector picks one dongle out of several: "" for the first one found,
// "#N" for the Nth by enumeration order, or "bus:addr" for an exact USB
// location.
type Selector string

// SelectorUsage documents the -d flag accepted formats.
func SelectorUsage() string {
	return `Bridge device selector. Formats:
    ""         - use first available dongle
    "#N"       - use the Nth dongle, 0-indexed
    "bus:addr" - match exact USB bus:address`
}

// Open resolves sel against the attached dongles and returns the single
// matching Device, closing every other candidate it opened along the way.
func Open(ctx *gousb.Context, sel Selector) (*Device, error) {
	devices, err := FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no bridge dongle found")
	}

	s := string(sel)
	switch {
	case s == "":
		closeAllBut(devices, 0)
		return devices[0], nil

	case strings.HasPrefix(s, "#"):
		idx, err := strconv.Atoi(s[1:])
		if err != nil || idx < 0 || idx >= len(devices) {
			closeAllBut(devices, -1)
			return nil, fmt.Errorf("invalid or out-of-range device index %q", s)
		}
		closeAllBut(devices, idx)
		return devices[idx], nil

	case strings.Contains(s, ":"):
		parts := strings.SplitN(s, ":", 2)
		bus, err1 := strconv.Atoi(parts[0])
		addr, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			closeAllBut(devices, -1)
			return nil, fmt.Errorf("invalid bus:addr %q", s)
		}
		for i, d := range devices {
			if d.Bus == bus && d.Address == addr {
				closeAllBut(devices, i)
				return d, nil
			}
		}
		closeAllBut(devices, -1)
		return nil, fmt.Errorf("no dongle at bus:addr %q", s)

	default:
		closeAllBut(devices, -1)
		return nil, fmt.Errorf("unrecognized device selector %q", s)
	}
}

func closeAllBut(devices []*Device, keep int) {
	for i, d := range devices {
		if i != keep {
			d.Close()
		}
	}
}

func wrap(usbDev *gousb.Device) (*Device, error) {
	usbDev.SetAutoDetach(true)

	cfg, err := usbDev.Config(1)
	if err != nil {
		return nil, fmt.Errorf("get usb config: %w", err)
	}
	iface, err := cfg.Interface(0, 0)
	if err != nil {
		cfg.Close()
		return nil, fmt.Errorf("claim usb interface: %w", err)
	}
	epIn, err := iface.InEndpoint(epInAddr & 0x0F)
	if err != nil {
		iface.Close()
		cfg.Close()
		return nil, fmt.Errorf("get in endpoint: %w", err)
	}
	epOut, err := iface.OutEndpoint(epOutAddr & 0x0F)
	if err != nil {
		iface.Close()
		cfg.Close()
		return nil, fmt.Errorf("get out endpoint: %w", err)
	}

	serial, _ := usbDev.SerialNumber()
	desc := usbDev.Desc
	return &Device{
		usbDevice: usbDev,
		usbConfig: cfg,
		iface:     iface,
		epIn:      epIn,
		epOut:     epOut,
		Serial:    serial,
		Bus:       desc.Bus,
		Address:   desc.Address,
	}, nil
}

// Close releases the USB interface and configuration.
func (d *Device) Close() error {
	if d.iface != nil {
		d.iface.Close()
	}
	if d.usbConfig != nil {
		d.usbConfig.Close()
	}
	return nil
}

// SendFrame writes header||body to the bridge's OUT endpoint in
// maxPacketSize chunks, standing in for an EtherCAT frame landing on the
// board's RX regions.
func (d *Device) SendFrame(header, body []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf := make([]byte, 0, len(header)+len(body))
	buf = append(buf, header...)
	buf = append(buf, body...)

	for len(buf) > 0 {
		n := len(buf)
		if n > maxPacketSize {
			n = maxPacketSize
		}
		ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
		_, err := d.epOut.WriteContext(ctx, buf[:n])
		cancel()
		if err != nil {
			return fmt.Errorf("bridge write: %w", err)
		}
		buf = buf[n:]
	}
	return nil
}

// RecvAck reads the board's 2-byte ack word off the IN endpoint.
func (d *Device) RecvAck(timeout time.Duration) (uint16, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf := make([]byte, 2)
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	n, err := d.epIn.ReadContext(ctx, buf)
	if err != nil {
		return 0, fmt.Errorf("bridge read: %w", err)
	}
	if n < 2 {
		return 0, fmt.Errorf("short ack read: got %d bytes", n)
	}
	return uint16(buf[0]) | uint16(buf[1])<<8, nil
}
