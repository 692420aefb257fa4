// showinfo decodes a show file and prints what a prop would see:
// header, hardware records and the event list.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/picolume/firmware/internal/show"
)

func main() {
	all := flag.Bool("all", false, "print every prop record, including unset ones")
	identity := flag.Int("identity", 0, "also resolve the effective config for one prop")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: showinfo [-all] [-identity N] <show file>")
		os.Exit(2)
	}
	path := flag.Arg(0)

	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "showinfo:", err)
		os.Exit(1)
	}
	doc, err := show.DecodeDocument(b)
	if err != nil {
		fmt.Fprintln(os.Stderr, "showinfo:", err)
		os.Exit(1)
	}

	fmt.Printf("%s: version %d, %d events", path, doc.Header.Version, len(doc.Events))
	if int(doc.Header.EventCount) != len(doc.Events) {
		fmt.Printf(" (header declared %d)", doc.Header.EventCount)
	}
	fmt.Println()

	switch doc.Header.Version {
	case 1:
		fmt.Printf("global LED count: %d\n", doc.Header.GlobalLEDCount)
	case 2:
		set := 0
		for _, n := range doc.LEDCounts {
			if n > 0 {
				set++
			}
		}
		fmt.Printf("per-prop LED counts set for %d of %d props\n", set, len(doc.LEDCounts))
	}

	if *identity > 0 {
		pc := doc.ConfigFor(*identity)
		fmt.Printf("prop %d resolves to: %d LEDs, %s, %s, brightness %d\n",
			*identity, pc.LEDCount, pc.Chipset, pc.ColorOrder, pc.Brightness)
	}

	if len(doc.Table) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "prop\tleds\tchipset\torder\tbrightness")
		shown := 0
		for i, rec := range doc.Table {
			if !*all && rec == (show.PropConfig{}) {
				continue
			}
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%d\n", i+1, rec.LEDCount, rec.Chipset, rec.ColorOrder, rec.Brightness)
			shown++
		}
		w.Flush()
		if shown == 0 {
			fmt.Println("no prop records set; every prop resolves to defaults")
		}
	}

	if len(doc.Events) > 0 {
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "start\tduration\tkind\tcolor\tcolor2\tspeed\twidth\ttargets")
		for _, ev := range doc.Events {
			fmt.Fprintf(w, "%dms\t%dms\t%s\t#%06X\t#%06X\t%d\t%d\t%s\n",
				ev.Start, ev.Duration, ev.Kind,
				uint32(ev.Color)&0xFFFFFF, uint32(ev.Color2)&0xFFFFFF,
				ev.Speed, ev.Width, targets(ev.Targets))
		}
		w.Flush()
	}
}

func targets(m show.TargetMask) string {
	ids := m.Identities()
	if len(ids) == 0 {
		return "none"
	}
	shown := ids
	if len(shown) > 8 {
		shown = shown[:8]
	}
	parts := make([]string, len(shown))
	for i, id := range shown {
		parts[i] = strconv.Itoa(id)
	}
	s := strings.Join(parts, ",")
	if rest := len(ids) - len(shown); rest > 0 {
		s = fmt.Sprintf("%s +%d more", s, rest)
	}
	return s
}
