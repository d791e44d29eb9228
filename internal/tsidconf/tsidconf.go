// Package tsidconf loads the optional tsid→(node,slot) override table the
// serialized writer uses to map a BS/CS transport_stream_id onto the
// node/slot pair a downstream recorder expects (spec §6).
package tsidconf

import (
	"bufio"
	"os"
	"strconv"
	"strings"
)

// DefaultPaths are tried in order; the first that exists wins, matching
// the original's LIST_FILE search order.
var DefaultPaths = []string{
	"/etc/epgdump/tsid.conf",
	"/usr/local/etc/epgdump/tsid.conf",
}

// Slot is a tsid's recorder-assigned node/slot pair.
type Slot struct {
	Node int
	Slot int
}

// Table maps transport_stream_id to its configured Slot.
type Table map[uint16]Slot

// Load reads the first existing path in paths (DefaultPaths if paths is
// empty) and returns the parsed table. A missing file is not an error: it
// returns an empty Table, since the file is best-effort ornamentation, not
// a required input. Malformed lines are skipped, not fatal.
func Load(paths ...string) (Table, error) {
	if len(paths) == 0 {
		paths = DefaultPaths
	}

	var f *os.File
	for _, p := range paths {
		var err error
		f, err = os.Open(p)
		if err == nil {
			break
		}
	}
	if f == nil {
		return Table{}, nil
	}
	defer f.Close()

	table := Table{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 3 {
			continue
		}
		tsid, err := strconv.ParseUint(strings.TrimSpace(parts[0]), 10, 16)
		if err != nil {
			continue
		}
		node, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			continue
		}
		slot, err := strconv.Atoi(strings.TrimSpace(parts[2]))
		if err != nil {
			continue
		}
		table[uint16(tsid)] = Slot{Node: node, Slot: slot}
	}
	if err := sc.Err(); err != nil {
		return table, err
	}
	return table, nil
}
