// Package writer renders the service store's accumulated services and
// events as either an XMLTV document or a PHP-style serialized record
// (spec §6), the two external output formats the CLI driver exposes.
package writer

import (
	"strconv"
	"strings"
	"time"

	"github.com/snapetech/epgdump/internal/store"
	"github.com/snapetech/epgdump/internal/tsidconf"
)

// ChannelType distinguishes how a service's recorder node/slot is derived
// for the serialized writer (spec §6, §9's BS/CS vs terrestrial split).
type ChannelType int

const (
	ChannelTerrestrial ChannelType = iota
	ChannelBS
	ChannelCS
)

// Options carries the CLI-derived settings both writers need.
type Options struct {
	ChannelType ChannelType
	TsidTable   tsidconf.Table
}

// genreField applies the emit-time genre convention (spec §6): content_type
// 16 (unset) becomes 0; any other value is emitted as content_type+1.
func genreField(contentType byte) int {
	if contentType == 16 {
		return 0
	}
	return int(contentType) + 1
}

// formatTime renders an epoch-seconds timestamp as the local-zone
// "YYYY-MM-DD HH:MM:SS" both writers use for start/stop fields.
func formatTime(epoch int64) string {
	return time.Unix(epoch, 0).Local().Format("2006-01-02 15:04:05")
}

// nodeSlot derives the (node, slot) pair the serialized writer's
// "node"/"slot" fields carry, following the original's tsid.conf-override
// logic: BS/CS channels derive a default from the transport_stream_id's
// bit layout, overridden by any tsid.conf entry; terrestrial channels
// report node/slot zero, except two well-known transport_stream_ids
// (0x40f1, 0x40f2) whose slot is decremented by one to match the
// downstream recorder's off-by-one channel numbering.
func nodeSlot(ct ChannelType, tsid uint16, table tsidconf.Table) (node, slot int) {
	if ct == ChannelTerrestrial {
		if tsid == 0x40f1 || tsid == 0x40f2 {
			return 0, -1
		}
		return 0, 0
	}

	node = int(tsid&0x1f0) >> 4
	slot = int(tsid & 0x07)
	if s, ok := table[tsid]; ok {
		node, slot = s.Node, s.Slot
	}
	return node, slot
}

// genreString renders an event's three genre pairs as the six
// colon-separated integers the XMLTV <genres> element carries.
func genreString(ev *store.Event) string {
	parts := make([]string, 0, 6)
	for _, g := range ev.Genre {
		parts = append(parts, strconv.Itoa(genreField(g.Content)), strconv.Itoa(int(g.Sub)))
	}
	return strings.Join(parts, ":")
}

// videoAudioString renders video_type:audio_type:multi_type for the
// XMLTV <video_audio> element.
func videoAudioString(ev *store.Event) string {
	return strconv.Itoa(ev.VideoType) + ":" + strconv.Itoa(ev.AudioType) + ":" + strconv.Itoa(ev.MultiType)
}
