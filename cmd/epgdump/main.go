// Command epgdump extracts SDT/EIT program-guide metadata from a Japanese
// ARIB digital-TV MPEG-2 Transport Stream and writes it as XMLTV or as a
// PHP-style serialized record.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/snapetech/epgdump/internal/eit"
	"github.com/snapetech/epgdump/internal/sdt"
	"github.com/snapetech/epgdump/internal/section"
	"github.com/snapetech/epgdump/internal/store"
	"github.com/snapetech/epgdump/internal/tsidconf"
	"github.com/snapetech/epgdump/internal/tspacket"
	"github.com/snapetech/epgdump/internal/writer"
)

const version = "epgdump 1.0"

func usage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: epgdump [options] (--BS | --CS | <channel_id>) infile outfile")
	fmt.Fprintln(os.Stderr, "  infile/outfile: \"-\" for stdin/stdout")
	fs.SetOutput(os.Stderr)
	fs.PrintDefaults()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	fs := flag.NewFlagSet("epgdump", flag.ContinueOnError)
	fs.SetOutput(io.Discard) // we print our own usage on error

	pf := fs.Bool("pf", false, "restrict to present/following EIT tables")
	sid := fs.Int("sid", -1, "emit only this service_id")
	cut := fs.String("cut", "", "comma-separated service_ids to exclude")
	all := fs.Bool("all", false, "broaden service-type acceptance (sdt_mode)")
	xmlOut := fs.Bool("xml", false, "emit XMLTV instead of the serialized format")
	bs := fs.Bool("BS", false, "channel is a BS service")
	cs := fs.Bool("CS", false, "channel is a CS service")
	help := fs.Bool("h", false, "show usage and exit")
	showVersion := fs.Bool("v", false, "show version and exit")
	verbose := fs.Bool("debug", false, "log diagnostic detail (section and continuity-drop counts)")

	if err := fs.Parse(args); err != nil {
		usage(fs)
		return 2
	}
	if *help {
		usage(fs)
		return 0
	}
	if *showVersion {
		fmt.Println(version)
		return 0
	}

	rest := fs.Args()
	var channelID string
	switch {
	case *bs:
		channelID = "BS"
	case *cs:
		channelID = "CS"
	default:
		if len(rest) < 1 {
			usage(fs)
			return 2
		}
		channelID = rest[0]
		rest = rest[1:]
	}
	if len(rest) != 2 {
		usage(fs)
		return 2
	}
	inPath, outPath := rest[0], rest[1]

	cutList, err := parseCutList(*cut)
	if err != nil {
		log.Printf("epgdump: invalid -cut list: %v", err)
		return 2
	}

	var sidOnly *uint16
	if *sid >= 0 {
		v := uint16(*sid)
		sidOnly = &v
	}

	in, err := openInput(inPath)
	if err != nil {
		log.Printf("epgdump: %v", err)
		return 1
	}
	defer in.Close()

	out, err := openOutput(outPath)
	if err != nil {
		log.Printf("epgdump: %v", err)
		return 1
	}
	defer out.Close()

	st := store.New(cutList, sidOnly)
	if err := decode(in, st, decodeOptions{
		pfOnly:  *pf,
		sdtMode: *all,
		ontv:    channelID,
		verbose: *verbose,
	}); err != nil {
		log.Printf("epgdump: %v", err)
		return 1
	}

	st.Compact()
	st.LinkSchedulePointers()

	tsidTable, err := tsidconf.Load()
	if err != nil && *verbose {
		log.Printf("epgdump: tsid.conf: %v", err)
	}

	wopts := writer.Options{ChannelType: channelType(channelID), TsidTable: tsidTable}
	if *xmlOut {
		err = writer.WriteXMLTV(out, st.Services())
	} else {
		err = writer.WriteSerialized(out, st.Services(), wopts)
	}
	if err != nil {
		log.Printf("epgdump: write output: %v", err)
		return 1
	}
	return 0
}

type decodeOptions struct {
	pfOnly  bool
	sdtMode bool
	ontv    string
	verbose bool
}

// decode runs the packet reader → section reassembler → SDT/EIT parser
// pipeline over r, mutating st as sections complete. It never returns an
// error for malformed stream content (spec §7): those are recovered
// locally and, with -debug, logged.
func decode(r io.Reader, st *store.Store, opts decodeOptions) error {
	reader := tspacket.NewReader(r)
	reassembler := section.New(0x11, 0x12)

	sdtOpts := sdt.Options{OntvHeader: opts.ontv, SDTMode: opts.sdtMode}
	eitOpts := eit.Options{PFOnly: opts.pfOnly}

	var drops, sections int
	for {
		pkt, err := reader.Next()
		if err != nil {
			if err == io.EOF {
				break
			}
			return fmt.Errorf("read packet: %w", err)
		}
		if pkt.Scrambled {
			continue
		}
		if pkt.Dropped {
			drops++
		}

		for _, sec := range reassembler.Ingest(pkt) {
			sections++
			switch sec.PID {
			case 0x11:
				sdt.Parse(sec, sdtOpts, st)
			case 0x12:
				eit.Parse(sec, eitOpts, st)
			}
		}
	}

	if opts.verbose {
		log.Printf("epgdump: decoded %d sections, %d continuity drops observed", sections, drops)
	}
	return nil
}

func channelType(channelID string) writer.ChannelType {
	switch channelID {
	case "BS":
		return writer.ChannelBS
	case "CS":
		return writer.ChannelCS
	default:
		return writer.ChannelTerrestrial
	}
}

func parseCutList(s string) ([]uint16, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]uint16, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		out = append(out, uint16(n))
	}
	return out, nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopWriteCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("open output: %w", err)
	}
	return f, nil
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
