// Package store holds the in-memory service/event model that the SDT and
// EIT parsers populate and the output writers read back.
package store

import "sort"

// Event status bits (§3 Event record).
const (
	StatusStartTimeUncertain = 1 << 0
	StatusDurationUncertain  = 1 << 1
	StatusEventUncertain     = StatusStartTimeUncertain | StatusDurationUncertain
	StatusNextEventUncertain = 1 << 2
)

// GenrePair is one (content_type, content_subtype) pair from a content
// descriptor.
type GenrePair struct {
	Content byte
	Sub     byte
}

// Event is one EIT-derived program entry, either a present/following entry
// or a schedule entry.
type Event struct {
	TableID   byte
	ServiceID uint16
	EventID   uint16

	Year, Month, Day      int
	Hour, Minute, Second  int
	StartTime             int64 // epoch seconds, local-zone calendar
	Duration              int   // seconds
	EventStatus           int

	Title       string
	Subtitle    string
	Desc        string // tab-separated item_description + item
	Genre       [3]GenrePair
	EpisodeNumber int
	VideoType     int
	AudioType     int
	MultiType     int

	ImportCnt int
	RenewCnt  int
	SchPnt    int // index into eit_sch this PF entry corresponds to, -1 if none
}

// Service is one SDT-derived service record and its accumulated events.
type Service struct {
	ServiceID          uint16
	ServiceType        byte
	OriginalNetworkID  uint16
	TransportStreamID  uint16
	Name               string
	Ontv               string
	ImportStat         int
	LogoDownloadDataID uint32
	LogoVersion        uint32

	// Populated marks whether an SDT service descriptor has filled this
	// record in at least once; the SDT parser uses it to distinguish a
	// first sighting from a later refinement of the same service_id.
	Populated bool

	EITPF  []*Event
	EITSch []*Event
}

// Store is the sorted, service_id-keyed collection both parsers mutate.
type Store struct {
	services []*Service
	cutSIDs  map[uint16]bool
	sidOnly  *uint16
}

// New returns an empty Store. cutSIDs lists service_ids to never insert;
// sidOnly, if non-nil, restricts insertion to that single service_id.
func New(cutSIDs []uint16, sidOnly *uint16) *Store {
	cut := make(map[uint16]bool, len(cutSIDs))
	for _, id := range cutSIDs {
		cut[id] = true
	}
	return &Store{cutSIDs: cut, sidOnly: sidOnly}
}

// Services returns the store's services in ascending service_id order.
func (s *Store) Services() []*Service {
	return s.services
}

// Find returns the service with the given service_id, or nil.
func (s *Store) Find(serviceID uint16) *Service {
	i := s.search(serviceID)
	if i < len(s.services) && s.services[i].ServiceID == serviceID {
		return s.services[i]
	}
	return nil
}

func (s *Store) search(serviceID uint16) int {
	return sort.Search(len(s.services), func(i int) bool {
		return s.services[i].ServiceID >= serviceID
	})
}

// EnsureService returns the service record for serviceID, creating and
// inserting it in service_id order on first sight. It returns nil when the
// service is excluded by the cut list or by an active single-service
// filter — gating happens at insert time, exactly as the original's
// cut-list check does it, so an excluded service is never added to the
// store at all.
func (s *Store) EnsureService(serviceID uint16) *Service {
	if s.cutSIDs[serviceID] {
		return nil
	}
	if s.sidOnly != nil && *s.sidOnly != serviceID {
		return nil
	}

	i := s.search(serviceID)
	if i < len(s.services) && s.services[i].ServiceID == serviceID {
		return s.services[i]
	}

	svc := &Service{ServiceID: serviceID}
	s.services = append(s.services, nil)
	copy(s.services[i+1:], s.services[i:])
	s.services[i] = svc
	return svc
}

// UpsertEvent inserts or updates ev in the appropriate list (PF or
// schedule, by TableID) of the service, preserving the eit_sch
// strictly-ascending start_time/unique-event_id invariant. A repeated
// schedule event_id updates fields in place (re-ordering the list if its
// start_time changed) and bumps ImportCnt/RenewCnt; a repeated
// present/following entry (same event_id and table_id) is overwritten
// without counters.
func (svc *Service) UpsertEvent(ev *Event) {
	if ev.TableID == 0x4e || ev.TableID == 0x4f {
		svc.upsertPF(ev)
		return
	}
	svc.upsertSchedule(ev)
}

func (svc *Service) upsertPF(ev *Event) {
	for _, existing := range svc.EITPF {
		if existing.EventID == ev.EventID && existing.TableID == ev.TableID {
			*existing = *ev
			return
		}
	}
	svc.EITPF = append(svc.EITPF, ev)
}

func (svc *Service) upsertSchedule(ev *Event) {
	for _, existing := range svc.EITSch {
		if existing.EventID == ev.EventID {
			importCnt, renewCnt := existing.ImportCnt+1, existing.RenewCnt+1
			moved := existing.StartTime != ev.StartTime
			*existing = *ev
			existing.ImportCnt = importCnt
			existing.RenewCnt = renewCnt
			if moved {
				sort.SliceStable(svc.EITSch, func(a, b int) bool {
					return svc.EITSch[a].StartTime < svc.EITSch[b].StartTime
				})
			}
			return
		}
	}
	ev.ImportCnt = 1

	i := sort.Search(len(svc.EITSch), func(i int) bool {
		return svc.EITSch[i].StartTime >= ev.StartTime
	})
	svc.EITSch = append(svc.EITSch, nil)
	copy(svc.EITSch[i+1:], svc.EITSch[i:])
	svc.EITSch[i] = ev
}

// LinkSchedulePointers sets each present/following event's SchPnt to the
// index of its matching event_id in the schedule list, or -1 if the
// schedule has no matching entry. Called once after the store is fully
// populated (and typically after Compact), mirroring the original's
// dump-time sch_pnt_update pass.
func (s *Store) LinkSchedulePointers() {
	for _, svc := range s.services {
		svc.linkSchedulePointers()
	}
}

func (svc *Service) linkSchedulePointers() {
	for _, pf := range svc.EITPF {
		pf.SchPnt = -1
		for i, sch := range svc.EITSch {
			if sch.EventID == pf.EventID {
				pf.SchPnt = i
				break
			}
		}
	}
}

// Compact removes services whose import_stat is not in {1, 2} and drops
// every eit_pf list after the first service sharing a transport_stream_id
// (present/following is identical across services on one TS).
func (s *Store) Compact() {
	kept := s.services[:0]
	for _, svc := range s.services {
		if svc.ImportStat == 1 || svc.ImportStat == 2 {
			kept = append(kept, svc)
		}
	}
	s.services = kept

	seenTSID := make(map[uint16]bool, len(s.services))
	for _, svc := range s.services {
		if seenTSID[svc.TransportStreamID] {
			svc.EITPF = nil
			continue
		}
		seenTSID[svc.TransportStreamID] = true
	}
}
