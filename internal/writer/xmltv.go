package writer

import (
	"encoding/xml"
	"io"

	"github.com/snapetech/epgdump/internal/store"
)

// WriteXMLTV renders services as an XMLTV document: one <channel> per
// service followed by one <programme_pf>/<programme> per event and a
// trailing <programme_cnt> summary (spec §6 "XMLTV output").
func WriteXMLTV(w io.Writer, services []*store.Service) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "<!DOCTYPE tv SYSTEM \"xmltv.dtd\">\n"); err != nil {
		return err
	}

	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")

	root := xml.StartElement{
		Name: xml.Name{Local: "tv"},
		Attr: []xml.Attr{
			{Name: xml.Name{Local: "generator-info-name"}, Value: "epgdump"},
			{Name: xml.Name{Local: "generator-info-url"}, Value: "http://localhost/"},
		},
	}
	if err := enc.EncodeToken(root); err != nil {
		return err
	}

	for _, svc := range services {
		ch := xmlChannel{
			ID:          svc.Ontv,
			DisplayName: xmlLangText{Lang: "ja_JP", Value: svc.Name},
			IDDetail: xmlChannelID{
				TS: int(svc.TransportStreamID),
				ON: int(svc.OriginalNetworkID),
				SV: int(svc.ServiceID),
				ST: int(svc.ServiceType),
			},
		}
		if err := enc.EncodeElement(ch, xml.StartElement{Name: xml.Name{Local: "channel"}}); err != nil {
			return err
		}
	}

	for _, svc := range services {
		if err := writeServiceProgrammes(enc, svc); err != nil {
			return err
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return err
	}
	return enc.Flush()
}

func writeServiceProgrammes(enc *xml.Encoder, svc *store.Service) error {
	if len(svc.EITPF) == 0 && len(svc.EITSch) == 0 {
		return nil
	}

	for _, ev := range svc.EITPF {
		status := ev.EventStatus
		schPnt := ev.SchPnt
		prog := eventToProgramme(ev, svc.Ontv)
		prog.Status = &status
		prog.SchPnt = &schPnt
		if err := enc.EncodeElement(prog, xml.StartElement{Name: xml.Name{Local: "programme_pf"}}); err != nil {
			return err
		}
	}

	for _, ev := range svc.EITSch {
		prog := eventToProgramme(ev, svc.Ontv)
		if err := enc.EncodeElement(prog, xml.StartElement{Name: xml.Name{Local: "programme"}}); err != nil {
			return err
		}
	}

	cnt := xmlProgrammeCnt{
		Disc:   svc.Ontv,
		PFCnt:  len(svc.EITPF),
		SchCnt: len(svc.EITSch),
	}
	return enc.EncodeElement(cnt, xml.StartElement{Name: xml.Name{Local: "programme_cnt"}})
}

func eventToProgramme(ev *store.Event, ontv string) xmlProgramme {
	return xmlProgramme{
		Start:   formatTime(ev.StartTime),
		Stop:    formatTime(ev.StartTime + int64(ev.Duration)),
		Channel: ontv,
		EID:     ev.EventID,
		Title:   ev.Title,
		Desc:    ev.Desc,
		Genres:  genreString(ev),
		Video:   videoAudioString(ev),
	}
}

type xmlChannel struct {
	ID          string       `xml:"id,attr"`
	DisplayName xmlLangText  `xml:"display-name"`
	IDDetail    xmlChannelID `xml:"id"`
}

type xmlLangText struct {
	Lang  string `xml:"lang,attr"`
	Value string `xml:",chardata"`
}

type xmlChannelID struct {
	TS int `xml:"ts,attr"`
	ON int `xml:"on,attr"`
	SV int `xml:"sv,attr"`
	ST int `xml:"st,attr"`
}

type xmlProgramme struct {
	Start   string `xml:"start,attr"`
	Stop    string `xml:"stop,attr"`
	Channel string `xml:"channel,attr"`
	EID     uint16 `xml:"eid,attr"`
	Title   string `xml:"title"`
	Desc    string `xml:"desc"`
	Genres  string `xml:"genres"`
	Video   string `xml:"video_audio"`
	Status  *int   `xml:"status,omitempty"`
	SchPnt  *int   `xml:"sch_pnt,omitempty"`
}

type xmlProgrammeCnt struct {
	Disc   string `xml:"disc"`
	PFCnt  int    `xml:"pf_cnt"`
	SchCnt int    `xml:"sch_cnt"`
}
