package ui

import (
	"context"
	"fmt"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/nozo-moto/netspeed/pkg/types"
)

const (
	graphWidth  = 60
	graphHeight = 15
)

// Dashboard is a terminal renderer for the sampling loop.
type Dashboard struct {
	app      *tview.Application
	duration float64

	dateTimeView *tview.TextView
	totalsView   *tview.TextView
	speedView    *tview.TextView
	historyView  *tview.TextView
	statusView   *tview.TextView

	mu    sync.Mutex
	frame types.Frame
}

// NewDashboard builds a dashboard whose chart spans duration seconds.
func NewDashboard(duration float64) *Dashboard {
	d := &Dashboard{
		app:      tview.NewApplication(),
		duration: duration,
	}
	d.setupUI()
	return d
}

// Run blocks until the user quits or ctx is cancelled. Quitting from the
// keyboard calls stop so the sampling loop can shut down too.
func (d *Dashboard) Run(ctx context.Context, stop context.CancelFunc) error {
	d.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch {
		case event.Key() == tcell.KeyEsc, event.Key() == tcell.KeyCtrlC,
			event.Key() == tcell.KeyRune && event.Rune() == 'q':
			stop()
			return nil
		}
		return event
	})

	go func() {
		<-ctx.Done()
		d.app.Stop()
	}()

	return d.app.Run()
}

func (d *Dashboard) Render(frame types.Frame) {
	d.mu.Lock()
	d.frame = frame
	d.mu.Unlock()

	d.app.QueueUpdateDraw(d.update)
}

func (d *Dashboard) setupUI() {
	d.dateTimeView = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	d.dateTimeView.SetBorder(true).
		SetTitle(" Realtime Network Speed Monitor ")

	d.totalsView = tview.NewTextView().
		SetDynamicColors(true)
	d.totalsView.SetBorder(true).
		SetTitle(" Totals ")

	d.speedView = tview.NewTextView().
		SetDynamicColors(true)
	d.speedView.SetBorder(true).
		SetTitle(" Current Speed ")

	d.historyView = tview.NewTextView().
		SetDynamicColors(true)
	d.historyView.SetBorder(true).
		SetTitle(fmt.Sprintf(" Last %gs ", d.duration))

	d.statusView = tview.NewTextView().
		SetDynamicColors(true)

	labels := tview.NewFlex().
		AddItem(d.totalsView, 0, 1, false).
		AddItem(d.speedView, 0, 1, false)

	mainFlex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(d.dateTimeView, 3, 1, false).
		AddItem(labels, 4, 1, false).
		AddItem(d.historyView, 0, 1, false).
		AddItem(d.statusView, 1, 1, false)

	d.app.SetRoot(mainFlex, true)
}

func (d *Dashboard) update() {
	d.mu.Lock()
	frame := d.frame
	d.mu.Unlock()

	d.apply(frame)
}

func (d *Dashboard) apply(frame types.Frame) {
	d.dateTimeView.SetText(fmt.Sprintf("[cyan]%s[white]", frame.Time.Format("2006-01-02 15:04:05")))

	d.totalsView.SetText(fmt.Sprintf(
		"[yellow]%s[white]\n[yellow]%s[white]",
		totalUploadLabel(frame.Totals),
		totalDownloadLabel(frame.Totals),
	))

	d.speedView.SetText(fmt.Sprintf(
		"[red]▲ %s[white]\n[green]▼ %s[white]",
		uploadSpeedLabel(frame.Latest),
		downloadSpeedLabel(frame.Latest),
	))

	d.historyView.SetText(renderGraph(frame.Window, d.duration, graphWidth, graphHeight))

	if frame.Err != nil {
		d.statusView.SetText(fmt.Sprintf("[red]%v[white]", frame.Err))
	} else {
		d.statusView.SetText(fmt.Sprintf("[gray]%s observed: ▲ %s ▼ %s  (q to quit)[white]",
			formatDuration(frame.Latest.Timestamp),
			formatBytes(frame.Totals.BytesSent),
			formatBytes(frame.Totals.BytesReceived),
		))
	}
}

func formatDuration(seconds float64) string {
	s := int(seconds)
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	if s < 3600 {
		return fmt.Sprintf("%dm%ds", s/60, s%60)
	}
	return fmt.Sprintf("%dh%dm", s/3600, (s/60)%60)
}
