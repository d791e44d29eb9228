// Package eit parses Event Information Table sections (present/following and
// schedule) and upserts the events they describe into existing services in
// the service store.
package eit

import (
	"time"

	"github.com/snapetech/epgdump/internal/arib"
	"github.com/snapetech/epgdump/internal/section"
	"github.com/snapetech/epgdump/internal/store"
)

const (
	tableIDPresent   = 0x4e
	tableIDFollowing = 0x4f
)

// Options carries the CLI-derived filters that affect EIT parsing beyond
// what the service store already enforces via its cut/sid gating.
type Options struct {
	// PFOnly restricts processing to present/following tables (--pf).
	PFOnly bool
}

func isPresentFollowing(tableID byte) bool {
	return tableID == tableIDPresent || tableID == tableIDFollowing
}

// Parse walks one EIT section's event loop, upserting matching events into
// the service identified by the section's service_id. Events for a
// service_id the store does not know about (excluded by cut list, sid
// filter, or never seen in an SDT) are silently dropped, since EIT alone
// never creates a service record.
func Parse(sec section.Section, opts Options, st *store.Store) {
	if sec.TableID < tableIDPresent || sec.TableID > 0x6f {
		return
	}
	pf := isPresentFollowing(sec.TableID)
	if opts.PFOnly && !pf {
		return
	}

	buf := sec.Data
	if len(buf) < 14 {
		return
	}

	sectionLength := int(buf[1]&0x0f)<<8 | int(buf[2])
	serviceID := uint16(buf[3])<<8 | uint16(buf[4])
	sectionNumber := int(buf[6])

	svc := st.Find(serviceID)
	if svc == nil {
		return
	}

	loopLen := sectionLength - 15 // header bytes 3-13 (11 bytes) plus CRC (4)
	index := 14

	for loopLen > 0 && index+12 <= len(buf) {
		ev, consumed := parseEvent(buf, index, sec.TableID, serviceID, sectionNumber)
		if consumed <= 0 {
			break
		}
		if ev != nil {
			svc.UpsertEvent(ev)
		}
		index += consumed
		loopLen -= consumed
	}
}

func parseEvent(buf []byte, index int, tableID byte, serviceID uint16, sectionNumber int) (*store.Event, int) {
	if index+12 > len(buf) {
		return nil, 0
	}

	eventID := uint16(buf[index])<<8 | uint16(buf[index+1])
	descLoopLen := int(buf[index+10]&0x0f)<<8 | int(buf[index+11])

	end := index + 12 + descLoopLen
	if end > len(buf) {
		end = len(buf)
	}
	consumed := end - index

	year, month, day, hour, minute, second, uncertain := decodeStartTime(buf[index+2:index+7], sectionNumber)

	ev := &store.Event{
		TableID:   tableID,
		ServiceID: serviceID,
		EventID:   eventID,
		Year:      year,
		Month:     month,
		Day:       day,
		Hour:      hour,
		Minute:    minute,
		Second:    second,
	}

	if uncertain {
		ev.EventStatus |= store.StatusStartTimeUncertain
	} else {
		t := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.Local)
		if t.Year() != year || int(t.Month()) != month || t.Day() != day {
			// Calendar error (DST gap, nonexistent day): drop the event but
			// still advance past its bytes.
			return nil, consumed
		}
		ev.StartTime = t.Unix()
	}
	ev.Duration = decodeDuration(buf[index+7 : index+10])
	ev.Genre = [3]store.GenrePair{{Content: 16, Sub: 16}, {Content: 16, Sub: 16}, {Content: 16, Sub: 16}}

	parseEventDescriptors(buf, index+12, end, ev)

	return ev, consumed
}

func decodeStartTime(b []byte, sectionNumber int) (year, month, day, hour, minute, second int, uncertain bool) {
	if b[0] == 0xff && b[1] == 0xff && b[2] == 0xff && b[3] == 0xff && b[4] == 0xff {
		return 1900 + 138, sectionNumber + 1, 0, 0, 0, 0, true
	}

	mjd := float64(int(b[0])<<8 | int(b[1]))
	yPrime := int((mjd - 15078.2) / 365.25)
	mPrime := int(((mjd - 14956.1) - float64(yPrime)*365.25) / 30.6001)
	d := int(mjd) - 14956 - int(float64(yPrime)*365.25) - int(float64(mPrime)*30.6001)

	var y, m int
	if mPrime == 14 || mPrime == 15 {
		y = yPrime + 1
		m = mPrime - 13
	} else {
		y = yPrime
		m = mPrime - 1
	}

	return 1900 + y, m, d, bcd(b[2]), bcd(b[3]), bcd(b[4]), false
}

func bcd(v byte) int {
	return int(v>>4)*10 + int(v&0x0f)
}

func decodeDuration(b []byte) int {
	if b[0] == 0 && b[1] == 0 && b[2] == 0 {
		return 0
	}
	return bcd(b[0])*3600 + bcd(b[1])*60 + bcd(b[2])
}

// extendedAccum carries the in-progress extended-event item concatenation
// across however many 0x4E descriptor instances appear in one event's
// descriptor loop.
type extendedAccum struct {
	description string
	item        []byte
	active      bool
}

func (a *extendedAccum) flush(ev *store.Event) {
	if !a.active {
		return
	}
	item := arib.NewDecoder().Decode(a.item)
	ev.Desc = a.description + "\t" + item
	a.active = false
	a.item = nil
	a.description = ""
}

func parseEventDescriptors(buf []byte, start, end int, ev *store.Event) {
	var accum extendedAccum

	index := start
	for index+2 <= end {
		tag := buf[index]
		length := int(buf[index+1])
		next := index + 2 + length
		if next > end {
			break
		}
		body := buf[index+2 : next]

		switch tag {
		case 0x4d:
			parseShortEvent(body, ev)
		case 0x4e:
			parseExtendedEvent(body, ev, &accum)
		case 0x54:
			parseContentDescriptor(body, ev)
		case 0x50:
			parseComponentDescriptor(body, ev)
		case 0xc4:
			parseAudioComponentDescriptor(body, ev)
		case 0xd5:
			parseSeriesDescriptor(body, ev)
		}

		index = next
	}

	accum.flush(ev)
}

// parseShortEvent decodes a short event descriptor (tag 0x4D): language
// code, then length-prefixed title and subtitle, both ARIB-decoded.
func parseShortEvent(body []byte, ev *store.Event) {
	if len(body) < 4 {
		return
	}
	pos := 3

	nameLen := int(body[pos])
	pos++
	if pos+nameLen > len(body) {
		return
	}
	if nameLen > 0 {
		ev.Title = arib.NewDecoder().Decode(body[pos : pos+nameLen])
	}
	pos += nameLen

	if pos >= len(body) {
		return
	}
	textLen := int(body[pos])
	pos++
	if pos+textLen > len(body) {
		return
	}
	if textLen > 0 {
		ev.Subtitle = arib.NewDecoder().Decode(body[pos : pos+textLen])
	}
}

// parseExtendedEvent decodes one extended event descriptor instance (tag
// 0x4E): descriptor_number/last_descriptor_number, a language code, and an
// item list. An item whose description length is zero continues the
// previous item's bytes; a nonzero description length flushes whatever is
// accumulated and starts a new run.
func parseExtendedEvent(body []byte, ev *store.Event, accum *extendedAccum) {
	if len(body) < 5 {
		return
	}
	lengthOfItems := int(body[4])
	pos := 5
	end := 5 + lengthOfItems
	if end > len(body) {
		end = len(body)
	}

	for pos < end {
		if pos >= len(body) {
			break
		}
		descLen := int(body[pos])
		if pos+1+descLen >= len(body) {
			break
		}
		itemLen := int(body[pos+1+descLen])
		itemStart := pos + 2 + descLen
		itemEnd := itemStart + itemLen
		if itemEnd > len(body) {
			break
		}

		if descLen > 0 {
			accum.flush(ev)
			accum.description = arib.NewDecoder().Decode(body[pos+1 : pos+1+descLen])
			accum.item = append([]byte(nil), body[itemStart:itemEnd]...)
			accum.active = true
		} else {
			accum.item = append(accum.item, body[itemStart:itemEnd]...)
			accum.active = true
		}

		pos = itemEnd
	}
}

// parseContentDescriptor decodes a content descriptor (tag 0x54): up to
// three (content_type, content_subtype) pairs. A content_type of 14 treats
// its paired nibble as a user-defined subtype, escaping to a second byte
// only when that nibble is 0x01. When the primary pair is 14 but a
// secondary pair carries a real classification, the secondary is promoted
// to primary.
func parseContentDescriptor(body []byte, ev *store.Event) {
	if len(body) < 1 {
		return
	}

	contentType := body[0] >> 4
	contentSubtype := body[0] & 0x0f
	if contentType == 14 && contentSubtype == 0x01 && len(body) >= 2 {
		contentSubtype = body[1] + 0x40
	}

	genre2, subGenre2 := byte(16), byte(16)
	genre3, subGenre3 := byte(16), byte(16)

	if len(body) >= 4 {
		genre2 = body[2] >> 4
		subGenre2 = body[2] & 0x0f
		if genre2 == 14 && subGenre2 == 0x01 && len(body) >= 4 {
			subGenre2 = body[3] + 0x40
		}

		if len(body) >= 6 {
			genre3 = body[4] >> 4
			subGenre3 = body[4] & 0x0f
			if genre3 == 14 && subGenre3 == 0x01 {
				// Preserved from the source: the low-nibble escape case for
				// the third genre pair masks rather than adds the offset.
				subGenre3 = body[5] & 0x40
			}
		}

		if contentType == 14 {
			subStock := contentSubtype
			if genre2 != 14 {
				contentType, contentSubtype = genre2, subGenre2
				genre2, subGenre2 = 14, subStock
			} else if genre3 != 14 && genre3 != 16 {
				contentType, contentSubtype = genre3, subGenre3
				genre3, subGenre3 = 14, subStock
			}
		}
	}

	ev.Genre[0] = store.GenrePair{Content: contentType, Sub: contentSubtype}
	ev.Genre[1] = store.GenrePair{Content: genre2, Sub: subGenre2}
	ev.Genre[2] = store.GenrePair{Content: genre3, Sub: subGenre3}
}

// parseComponentDescriptor decodes a component descriptor (tag 0x50),
// recording only the video component type.
func parseComponentDescriptor(body []byte, ev *store.Event) {
	if len(body) < 2 {
		return
	}
	ev.VideoType = int(body[1])
}

// parseAudioComponentDescriptor decodes an audio component descriptor (tag
// 0xC4): component type and the multi-lingual flag.
func parseAudioComponentDescriptor(body []byte, ev *store.Event) {
	if len(body) < 2 {
		return
	}
	ev.AudioType = int(body[1])
	if len(body) >= 6 {
		ev.MultiType = int(body[5]&0x80) >> 7
	}
}

// parseSeriesDescriptor decodes a series descriptor (tag 0xD5), recording
// only the episode number (a 12-bit field split across two bytes).
func parseSeriesDescriptor(body []byte, ev *store.Event) {
	if len(body) < 7 {
		return
	}
	ev.EpisodeNumber = int(body[5])<<4 | int(body[6]&0xf0)>>4
}
