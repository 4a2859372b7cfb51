package batchgroup

import (
	"regexp"
	"strconv"
	"strings"
)

// NotAvailable fills volume/page identifiers that could not be recovered.
const NotAvailable = "N/A"

// Serial is the vol/page/serial triple recovered from a unit.
type Serial struct {
	VolumeNo string
	PageNo   string
	Number   int
}

// SerialParser recovers a unit's identifiers. ok is false when no serial
// number could be found; the returned Serial still carries the best
// vol/page values available.
type SerialParser interface {
	ParseSerial(u Unit) (s Serial, ok bool)
}

var (
	trailingDigits = regexp.MustCompile(`(?:[^-]*-)*(\d+)$`)
	slashedStockID = regexp.MustCompile(`(?i)^\s*vol\.?\s*no\.?\s*([^/]+?)\s*/\s*pg\.?\s*no\.?\s*([^/]+?)\s*/\s*s\.?\s*no\.?\s*(\d+)\s*$`)
)

// LegacySerialParser reads identifiers from the dedicated columns and falls
// back to the composite stock id written by older imports, either
// "vol-page-serial" or "Vol.No.X/Pg.No.Y/S.No.Z".
type LegacySerialParser struct{}

func (LegacySerialParser) ParseSerial(u Unit) (Serial, bool) {
	s := Serial{
		VolumeNo: strings.TrimSpace(u.VolumeNo),
		PageNo:   strings.TrimSpace(u.PageNo),
	}
	number, ok := parseDigits(u.SerialNo)

	stockID := strings.TrimSpace(u.StockID)
	if m := slashedStockID.FindStringSubmatch(stockID); m != nil {
		if s.VolumeNo == "" {
			s.VolumeNo = m[1]
		}
		if s.PageNo == "" {
			s.PageNo = m[2]
		}
		if !ok {
			number, ok = parseDigits(m[3])
		}
	}

	if !ok {
		if m := trailingDigits.FindStringSubmatch(stockID); m != nil {
			number, ok = parseDigits(m[1])
		}
	}

	if s.VolumeNo == "" || s.PageNo == "" {
		if parts := strings.Split(stockID, "-"); len(parts) == 3 {
			if s.VolumeNo == "" {
				s.VolumeNo = strings.TrimSpace(parts[0])
			}
			if s.PageNo == "" {
				s.PageNo = strings.TrimSpace(parts[1])
			}
		}
	}

	if s.VolumeNo == "" {
		s.VolumeNo = NotAvailable
	}
	if s.PageNo == "" {
		s.PageNo = NotAvailable
	}
	s.Number = number
	return s, ok
}

func parseDigits(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
