// Package output renders the resolved lobby as a plain-text console table,
// the baseline sink the overlay always has available even with no GUI
// layer attached.
package output

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/prism-overlay/bwoverlay/internal/player"
)

// Sink receives the fully resolved, sorted player list on every redraw.
// Implementations must not block the caller for long: a slow sink should
// buffer or drop rather than stall the redraw aggregator.
type Sink interface {
	Render(players []player.Player) error
}

// Console is a Sink that prints a fixed-width table to an io.Writer.
type Console struct {
	w io.Writer
}

func NewConsole(w io.Writer) *Console {
	return &Console{w: w}
}

// Render prints one row per player: display name, stars, FKDR, WLR,
// winstreak. Nicked/pending/unknown players show dashes for the columns
// that aren't available yet.
func (c *Console) Render(players []player.Player) error {
	tw := tabwriter.NewWriter(c.w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "USERNAME\tSTARS\tFKDR\tWLR\tWINSTREAK")

	for _, p := range players {
		stars, fkdr, wlr, ws := "-", "-", "-", "-"
		if p.Variant == player.Known && p.Stats != nil {
			stars = fmt.Sprintf("%.1f", p.Stats.Stars)
			fkdr = fmt.Sprintf("%.2f", p.Stats.FKDR)
			wlr = fmt.Sprintf("%.2f", p.Stats.WLR)
			if p.Stats.WinstreakF.Overall != nil {
				ws = fmt.Sprintf("%d", *p.Stats.WinstreakF.Overall)
				if !p.Stats.WinstreakF.Accurate {
					ws += "?"
				}
			}
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.DisplayName(), stars, fkdr, wlr, ws)
	}

	return tw.Flush()
}
