package writer

import (
	"fmt"
	"io"
	"strconv"

	"github.com/snapetech/epgdump/internal/store"
)

// WriteSerialized renders services as a PHP-style serialized record: an
// "a:N:{...}" envelope of per-service channel metadata, followed by one
// serialized block per accepted service holding its PF and schedule event
// arrays (spec §6 "Serialized output").
func WriteSerialized(w io.Writer, services []*store.Service, opts Options) error {
	if len(services) == 0 {
		return nil
	}

	if err := writeChannelHeader(w, services, opts); err != nil {
		return err
	}

	for _, svc := range services {
		// The original only emits programme detail for import_stat==2
		// services; import_stat==1 services get a channel-header entry
		// but no event arrays. Preserved here unchanged.
		if svc.ImportStat != 2 {
			continue
		}
		if err := writeServiceEvents(w, svc); err != nil {
			return err
		}
	}
	return nil
}

func writeChannelHeader(w io.Writer, services []*store.Service, opts Options) error {
	if _, err := fmt.Fprintf(w, "a:%d:{", len(services)); err != nil {
		return err
	}
	for i, svc := range services {
		node, slot := nodeSlot(opts.ChannelType, svc.TransportStreamID, opts.TsidTable)

		if _, err := fmt.Fprintf(w, "i:%d;a:8:{", i); err != nil {
			return err
		}
		if err := writePHPString(w, "id", svc.Ontv); err != nil {
			return err
		}
		if err := writePHPString(w, "display-name", svc.Name); err != nil {
			return err
		}
		if err := writePHPInt(w, "ts", int(svc.TransportStreamID)); err != nil {
			return err
		}
		if err := writePHPInt(w, "on", int(svc.OriginalNetworkID)); err != nil {
			return err
		}
		if err := writePHPInt(w, "sv", int(svc.ServiceID)); err != nil {
			return err
		}
		if err := writePHPInt(w, "st", int(svc.ServiceType)); err != nil {
			return err
		}
		if err := writePHPInt(w, "node", node); err != nil {
			return err
		}
		if err := writePHPInt(w, "slot", slot); err != nil {
			return err
		}
		if _, err := io.WriteString(w, "}"); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "}\n")
	return err
}

func writeServiceEvents(w io.Writer, svc *store.Service) error {
	if len(svc.EITPF) == 0 && len(svc.EITSch) == 0 {
		return nil
	}

	if _, err := fmt.Fprintf(w, "a:3:{"); err != nil {
		return err
	}
	if err := writePHPString(w, "disc", svc.Ontv); err != nil {
		return err
	}
	if err := writePHPInt(w, "pf_cnt", len(svc.EITPF)); err != nil {
		return err
	}
	if err := writePHPInt(w, "sch_cnt", len(svc.EITSch)); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "}\n"); err != nil {
		return err
	}

	if len(svc.EITPF) > 0 {
		if _, err := fmt.Fprintf(w, "a:%d:{", len(svc.EITPF)); err != nil {
			return err
		}
		for i, ev := range svc.EITPF {
			if err := writeEventFields(w, i, 17, ev, svc.Ontv); err != nil {
				return err
			}
			if err := writePHPInt(w, "status", ev.EventStatus); err != nil {
				return err
			}
			if err := writePHPInt(w, "sch_pnt", ev.SchPnt); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "}"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "}\n"); err != nil {
			return err
		}
	}

	if len(svc.EITSch) > 0 {
		if _, err := fmt.Fprintf(w, "a:%d:{", len(svc.EITSch)); err != nil {
			return err
		}
		for i, ev := range svc.EITSch {
			if err := writeEventFields(w, i, 15, ev, svc.Ontv); err != nil {
				return err
			}
			if _, err := io.WriteString(w, "}"); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, "}\n"); err != nil {
			return err
		}
	}

	return nil
}

// writeEventFields writes the 15 fields common to both PF and schedule
// entries (opening the entry's "i:N;a:fieldCount:{" array but leaving it
// unclosed for the caller to append status/sch_pnt, if any, before "}").
func writeEventFields(w io.Writer, index, fieldCount int, ev *store.Event, ontv string) error {
	if _, err := fmt.Fprintf(w, "i:%d;a:%d:{", index, fieldCount); err != nil {
		return err
	}
	if err := writePHPString(w, "starttime", formatTime(ev.StartTime)); err != nil {
		return err
	}
	if err := writePHPString(w, "endtime", formatTime(ev.StartTime+int64(ev.Duration))); err != nil {
		return err
	}
	if err := writePHPString(w, "channel_disc", ontv); err != nil {
		return err
	}
	if err := writePHPInt(w, "eid", int(ev.EventID)); err != nil {
		return err
	}
	if err := writePHPString(w, "title", ev.Title); err != nil {
		return err
	}
	if err := writePHPString(w, "desc", ev.Desc); err != nil {
		return err
	}
	if err := writePHPInt(w, "category", genreField(ev.Genre[0].Content)); err != nil {
		return err
	}
	if err := writePHPInt(w, "sub_genre", int(ev.Genre[0].Sub)); err != nil {
		return err
	}
	if err := writePHPInt(w, "genre2", genreField(ev.Genre[1].Content)); err != nil {
		return err
	}
	if err := writePHPInt(w, "sub_genre2", int(ev.Genre[1].Sub)); err != nil {
		return err
	}
	if err := writePHPInt(w, "genre3", genreField(ev.Genre[2].Content)); err != nil {
		return err
	}
	if err := writePHPInt(w, "sub_genre3", int(ev.Genre[2].Sub)); err != nil {
		return err
	}
	if err := writePHPInt(w, "video_type", ev.VideoType); err != nil {
		return err
	}
	if err := writePHPInt(w, "audio_type", ev.AudioType); err != nil {
		return err
	}
	return writePHPInt(w, "multi_type", ev.MultiType)
}

func writePHPString(w io.Writer, key, val string) error {
	_, err := fmt.Fprintf(w, "s:%d:\"%s\";s:%d:\"%s\";", len(key), key, len(val), val)
	return err
}

func writePHPInt(w io.Writer, key string, val int) error {
	_, err := io.WriteString(w, "s:"+strconv.Itoa(len(key))+":\""+key+"\";i:"+strconv.Itoa(val)+";")
	return err
}
