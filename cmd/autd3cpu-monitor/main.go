// autd3cpu-monitor: a small GUI that polls a running autd3cpu-sim's
// runtime counters over HTTP and renders them live, for watching a bench
// run without tailing logs. Adapted from Nitro-Core-DX's sprite-editor
// fyne layout (grid-of-labels-plus-toolbar), swapped for a live readout.
package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/spf13/pflag"

	"github.com/shinolab/autd3cpu-go/pkg/metrics"
)

func main() {
	addr := pflag.StringP("addr", "a", "http://127.0.0.1:6060/debug/vars", "autd3cpu-sim metrics endpoint")
	pollEvery := pflag.Duration("poll", 500*time.Millisecond, "Poll interval")
	varName := pflag.String("var", "autd3cpu_sim", "expvar name autd3cpu-sim published under")
	pflag.Parse()

	myApp := app.New()
	window := myApp.NewWindow("autd3cpu monitor")
	window.Resize(fyne.NewSize(420, 360))

	rows := map[string]*widget.Label{
		"Classified":       widget.NewLabel("-"),
		"Dropped":          widget.NewLabel("-"),
		"Duplicate":        widget.NewLabel("-"),
		"Ring full spins":  widget.NewLabel("-"),
		"Mod writes":       widget.NewLabel("-"),
		"Silencer writes":  widget.NewLabel("-"),
		"Sync writes":      widget.NewLabel("-"),
		"Normal gain":      widget.NewLabel("-"),
		"Point-STM":        widget.NewLabel("-"),
		"Gain-STM":         widget.NewLabel("-"),
		"Mod-delay":        widget.NewLabel("-"),
		"Unknown gain mode": widget.NewLabel("-"),
	}
	order := []string{
		"Classified", "Dropped", "Duplicate", "Ring full spins",
		"Mod writes", "Silencer writes", "Sync writes", "Normal gain",
		"Point-STM", "Gain-STM", "Mod-delay", "Unknown gain mode",
	}

	grid := container.NewVBox()
	for _, name := range order {
		grid.Add(container.NewHBox(widget.NewLabel(name+":"), rows[name]))
	}

	status := widget.NewLabel("connecting...")
	content := container.NewVBox(status, grid)
	window.SetContent(content)

	go func() {
		ticker := time.NewTicker(*pollEvery)
		defer ticker.Stop()
		for range ticker.C {
			snap, err := fetchSnapshot(*addr, *varName)
			if err != nil {
				status.SetText(fmt.Sprintf("error: %v", err))
				continue
			}
			status.SetText("connected: " + *addr)
			rows["Classified"].SetText(fmt.Sprint(snap.FramesClassified))
			rows["Dropped"].SetText(fmt.Sprint(snap.FramesDropped))
			rows["Duplicate"].SetText(fmt.Sprint(snap.FramesDuplicate))
			rows["Ring full spins"].SetText(fmt.Sprint(snap.RingFullSpins))
			rows["Mod writes"].SetText(fmt.Sprint(snap.ModWrites))
			rows["Silencer writes"].SetText(fmt.Sprint(snap.SilencerWrites))
			rows["Sync writes"].SetText(fmt.Sprint(snap.SyncWrites))
			rows["Normal gain"].SetText(fmt.Sprint(snap.NormalGainWrites))
			rows["Point-STM"].SetText(fmt.Sprint(snap.PointSTMWrites))
			rows["Gain-STM"].SetText(fmt.Sprint(snap.GainSTMWrites))
			rows["Mod-delay"].SetText(fmt.Sprint(snap.ModDelayWrites))
			rows["Unknown gain mode"].SetText(fmt.Sprint(snap.UnknownGainMode))
		}
	}()

	window.ShowAndRun()
}

// fetchSnapshot pulls autd3cpu-sim's published expvar and decodes the one
// variable it cares about.
func fetchSnapshot(addr, varName string) (metrics.Snapshot, error) {
	client := http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(addr)
	if err != nil {
		return metrics.Snapshot{}, err
	}
	defer resp.Body.Close()

	// /debug/vars also carries expvar's own "cmdline" (a JSON array) and
	// "memstats" (an unrelated object); decode raw first so those don't
	// fail unmarshaling into Snapshot.
	var vars map[string]json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&vars); err != nil {
		return metrics.Snapshot{}, fmt.Errorf("decode /debug/vars: %w", err)
	}
	raw, ok := vars[varName]
	if !ok {
		return metrics.Snapshot{}, fmt.Errorf("variable %q not present in response", varName)
	}
	var snap metrics.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return metrics.Snapshot{}, fmt.Errorf("decode %q: %w", varName, err)
	}
	return snap, nil
}
