// The transmitter is the conductor's side of the link: it owns the
// master show clock and broadcasts timecode packets to every prop in
// range. Play, pause and seek come from stdin, one command per line.
package main

import (
	"bufio"
	"flag"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/picolume/firmware/internal/radio"
)

func main() {
	var (
		addr   = flag.String("addr", radio.DefaultGroupAddr, "broadcast group address")
		rate   = flag.Int("rate", 10, "packets per second")
		source = flag.Int("source", 1, "source id stamped into packets")
		start  = flag.Int("start-ms", 0, "initial show time (ms)")
		play   = flag.Bool("play", false, "start playing immediately")
	)
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.Kitchen})

	bc, err := radio.Dial(*addr)
	if err != nil {
		log.Fatal().Err(err).Str("addr", *addr).Msg("dial broadcast group")
	}
	defer bc.Close()

	cmds := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			cmds <- strings.TrimSpace(sc.Text())
		}
		close(cmds)
	}()

	var (
		counter  uint32
		timeMS   = int64(*start)
		playing  = *play
		lastTick = time.Now()
	)
	ticker := time.NewTicker(time.Second / time.Duration(max(1, *rate)))
	defer ticker.Stop()

	log.Info().
		Str("addr", *addr).
		Int("rate", *rate).
		Msg("transmitting timecode; commands: play | pause | seek <ms> | quit")

	for {
		select {
		case now := <-ticker.C:
			if playing {
				timeMS += now.Sub(lastTick).Milliseconds()
			}
			lastTick = now
			counter++
			pkt := radio.Packet{
				Counter: counter,
				TimeMS:  uint32(timeMS),
				Play:    playing,
				Source:  uint8(*source),
			}
			if err := bc.Send(pkt); err != nil {
				log.Warn().Err(err).Msg("send packet")
			}

		case line, ok := <-cmds:
			if !ok {
				log.Info().Msg("stdin closed, stopping")
				return
			}
			switch {
			case line == "play":
				playing = true
				lastTick = time.Now()
				log.Info().Int64("ms", timeMS).Msg("playing")
			case line == "pause":
				playing = false
				log.Info().Int64("ms", timeMS).Msg("paused")
			case strings.HasPrefix(line, "seek "):
				ms, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, "seek ")), 10, 64)
				if err != nil || ms < 0 {
					log.Warn().Str("cmd", line).Msg("bad seek, want: seek <ms>")
					continue
				}
				timeMS = ms
				log.Info().Int64("ms", timeMS).Msg("seeked")
			case line == "quit" || line == "exit":
				return
			case line == "":
			default:
				log.Warn().Str("cmd", line).Msg("unknown command")
			}
		}
	}
}
