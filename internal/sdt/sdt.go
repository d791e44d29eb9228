// Package sdt parses Service Description Table sections and upserts the
// services they describe into the service store.
package sdt

import (
	"strconv"

	"github.com/snapetech/epgdump/internal/arib"
	"github.com/snapetech/epgdump/internal/section"
	"github.com/snapetech/epgdump/internal/store"
)

const (
	descriptorService = 0x48
	descriptorLogo    = 0xcf

	logoTransmissionDirect   = 0x01
	logoTransmissionIndirect = 0x02
	logoTransmissionSimple   = 0x03
)

// Options carries the CLI-derived settings the SDT parser needs beyond the
// section bytes themselves.
type Options struct {
	// OntvHeader is "BS", "CS", or the terrestrial channel id (§6).
	OntvHeader string
	// SDTMode widens import_stat acceptance (--all).
	SDTMode bool
}

// ClassifyImportStat implements the service-type acceptance table (§4.4) as
// a pure function, isolated from any parsing state so it can be tested
// directly against the table in the specification's design notes.
func ClassifyImportStat(serviceType byte, serviceID uint16, sdtMode bool) int {
	switch serviceType {
	case 0xc0: // data service
		if !sdtMode && serviceID != 910 {
			return -2
		}
		return 2
	case 0x01, 0x02: // digital TV / digital audio
		return 2
	default:
		if !sdtMode {
			return -2
		}
		return 2
	}
}

// Parse walks one SDT section's service loop, upserting matching services
// into st. Sections with an unexpected table_id are ignored (the
// reassembler's gating already restricts this to 0x42/0x46, but Parse is
// defensive so it can be unit-tested directly against hand-built bytes).
func Parse(sec section.Section, opts Options, st *store.Store) {
	if sec.TableID != 0x42 && sec.TableID != 0x46 {
		return
	}
	buf := sec.Data
	if len(buf) < 11 {
		return
	}

	sectionLength := int(buf[1]&0x0f)<<8 | int(buf[2])
	transportStreamID := uint16(buf[3])<<8 | uint16(buf[4])
	originalNetworkID := uint16(buf[8])<<8 | uint16(buf[9])

	loopLen := sectionLength - 12 // header (bytes 3-10) + CRC, per section_length's definition
	index := 11

	for loopLen > 0 && index+5 <= len(buf) {
		serviceID := uint16(buf[index])<<8 | uint16(buf[index+1])
		descLoopLen := int(buf[index+3]&0x0f)<<8 | int(buf[index+4])
		index += 5
		loopLen -= 5
		loopLen -= descLoopLen

		end := index + descLoopLen
		if end > len(buf) {
			end = len(buf)
		}

		result := parseServiceDescriptors(buf, index, end)
		index = end

		if result.hasService {
			upsertService(st, serviceID, transportStreamID, originalNetworkID, opts, result)
		}
	}
}

type descriptorResult struct {
	hasService  bool
	serviceType byte
	name        string

	hasLogo        bool
	logoDownloadID uint32
	logoVersion    uint32
}

func parseServiceDescriptors(buf []byte, index, end int) descriptorResult {
	var result descriptorResult
	for index+2 <= end {
		tag := buf[index]
		length := int(buf[index+1])
		next := index + 2 + length
		if next > end {
			break
		}

		switch tag {
		case descriptorLogo:
			parseLogoDescriptor(buf[index:next], &result)
		case descriptorService:
			parseServiceDescriptor(buf[index:next], &result)
		}

		index = next
	}
	return result
}

// parseServiceDescriptor decodes a service descriptor (tag 0x48): service
// type, provider name, and service name (both ARIB-encoded).
func parseServiceDescriptor(d []byte, result *descriptorResult) {
	if len(d) < 4 {
		return
	}
	result.hasService = true
	result.serviceType = d[2]

	providerNameLen := int(d[3])
	pos := 4 + providerNameLen
	if pos >= len(d) {
		return
	}
	serviceNameLen := int(d[pos])
	pos++
	if pos+serviceNameLen > len(d) {
		return
	}

	result.name = arib.NewDecoder().Decode(d[pos : pos+serviceNameLen])
}

// parseLogoDescriptor decodes a logo transfer descriptor (tag 0xCF),
// recording the download data id and version only for the direct CDT
// reference transmission type — indirect and simple-logo forms carry no
// identity fields this store tracks.
func parseLogoDescriptor(d []byte, result *descriptorResult) {
	if len(d) < 4 {
		return
	}
	transmissionType := d[2]
	if transmissionType != logoTransmissionDirect {
		return
	}
	if len(d) < 9 {
		return
	}
	result.hasLogo = true
	result.logoDownloadID = uint32(d[7])<<8 | uint32(d[8])
	result.logoVersion = uint32(d[5]&0x0f)<<8 | uint32(d[6])
}

func upsertService(st *store.Store, serviceID, transportStreamID, originalNetworkID uint16, opts Options, result descriptorResult) {
	svc := st.EnsureService(serviceID)
	if svc == nil {
		return // excluded by cut list or sid filter
	}

	if result.hasLogo {
		svc.LogoDownloadDataID = result.logoDownloadID
		svc.LogoVersion = result.logoVersion
	}
	if !result.hasService {
		return
	}

	switch {
	case !svc.Populated:
		svc.ServiceType = result.serviceType
		svc.OriginalNetworkID = originalNetworkID
		svc.TransportStreamID = transportStreamID
		svc.Name = result.name
		svc.Ontv = opts.OntvHeader + " " + strconv.Itoa(int(serviceID))
		svc.ImportStat = ClassifyImportStat(result.serviceType, serviceID, opts.SDTMode)
		svc.Populated = true
	case svc.ImportStat == 0:
		svc.ServiceType = result.serviceType
		svc.OriginalNetworkID = originalNetworkID
		svc.TransportStreamID = transportStreamID
		svc.Name = result.name
		svc.Ontv = opts.OntvHeader + "_" + strconv.Itoa(int(serviceID))
		svc.ImportStat = ClassifyImportStat(result.serviceType, serviceID, opts.SDTMode)
	case svc.ImportStat == -1:
		svc.ServiceType = result.serviceType
		svc.OriginalNetworkID = originalNetworkID
		svc.TransportStreamID = transportStreamID
		svc.Name = result.name
		svc.Ontv = opts.OntvHeader + " " + strconv.Itoa(int(serviceID))
		svc.ImportStat = 1
	}
}
