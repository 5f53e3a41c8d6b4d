// Package timetable parses the OrarioFacile XML export and normalizes its
// loosely-structured records into typed lesson and availability entries.
package timetable

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	appErrors "github.com/supplenze/supplenze-api/pkg/errors"
)

// ScheduleFile is the root of a timetable export. The root element name
// varies between export versions, so only the repeated LESSON children
// are mapped.
type ScheduleFile struct {
	XMLName xml.Name
	Records []RawRecord `xml:"LESSON"`
}

// RawRecord mirrors one LESSON element. Every field is optional in the
// wild; SITE, MODULE and WEEK are carried for fidelity but unused.
//
//	<LESSON>
//	  <DURATION>1:00</DURATION>
//	  <SUBJECT>INFORMATICA</SUBJECT>
//	  <SITE>Sede</SITE>
//	  <MODULE>Standard</MODULE>
//	  <TEACHER>SCIALPI MARIO</TEACHER>
//	  <GROUP>5^A-IA</GROUP>
//	  <ROOM>07-TW</ROOM>
//	  <WEEK>A</WEEK>
//	  <DAY>LUN</DAY>
//	  <TIME>8:00</TIME>
//	</LESSON>
type RawRecord struct {
	Duration *string  `xml:"DURATION"`
	Subject  *string  `xml:"SUBJECT"`
	Site     *string  `xml:"SITE"`
	Module   *string  `xml:"MODULE"`
	Teachers []string `xml:"TEACHER"`
	Groups   []string `xml:"GROUP"`
	Rooms    []string `xml:"ROOM"`
	Week     *string  `xml:"WEEK"`
	Day      *string  `xml:"DAY"`
	Time     *string  `xml:"TIME"`
}

// Subject sentinels and the reserved room prefix marking availability
// records. Real exports use either signal depending on source version.
const (
	SubjectAvailability  = "DISPO"
	SubjectRecoveryHours = "RECUPERO_ORARIO"
	AvailabilityRoomTag  = "DISPOSIZIONE#"
)

// dayCodes maps the Italian three-letter day tokens to ISO day-of-week.
var dayCodes = map[string]int{
	"LUN": 1,
	"MAR": 2,
	"MER": 3,
	"GIO": 4,
	"VEN": 5,
	"SAB": 6,
	"DOM": 7,
}

// ParseScheduleFile decodes a raw export document.
func ParseScheduleFile(data []byte) (*ScheduleFile, error) {
	var file ScheduleFile
	if err := xml.Unmarshal(data, &file); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrParse.Code, appErrors.ErrParse.Status, "malformed timetable document")
	}
	if len(file.Records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrParse, "timetable document contains no LESSON records")
	}
	return &file, nil
}

// ParseDay maps a locale day token to ISO 1-7.
func ParseDay(token string) (int, error) {
	if day, ok := dayCodes[token]; ok {
		return day, nil
	}
	return 0, appErrors.Clone(appErrors.ErrParse, fmt.Sprintf("unknown day code %q", token))
}

// ParseDuration converts an "H:MM" duration string into total minutes.
// Exactly two colon-separated non-negative integers are accepted.
func ParseDuration(raw string) (int, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return 0, appErrors.Clone(appErrors.ErrParse, fmt.Sprintf("invalid duration %q", raw))
	}
	hours, err := parseNonNegative(parts[0])
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrParse, fmt.Sprintf("invalid hours in duration %q", raw))
	}
	minutes, err := parseNonNegative(parts[1])
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrParse, fmt.Sprintf("invalid minutes in duration %q", raw))
	}
	return hours*60 + minutes, nil
}

// ParseTimeOfDay validates an "H:MM" or "HH:MM" clock value and returns
// it zero-padded, so slot comparisons reduce to string equality.
func ParseTimeOfDay(raw string) (string, error) {
	parts := strings.Split(raw, ":")
	if len(parts) != 2 {
		return "", appErrors.Clone(appErrors.ErrParse, fmt.Sprintf("invalid time %q", raw))
	}
	hours, err := parseNonNegative(parts[0])
	if err != nil || hours > 23 {
		return "", appErrors.Clone(appErrors.ErrParse, fmt.Sprintf("invalid hours in time %q", raw))
	}
	minutes, err := parseNonNegative(parts[1])
	if err != nil || minutes > 59 {
		return "", appErrors.Clone(appErrors.ErrParse, fmt.Sprintf("invalid minutes in time %q", raw))
	}
	return fmt.Sprintf("%02d:%02d", hours, minutes), nil
}

func parseNonNegative(raw string) (int, error) {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		return 0, fmt.Errorf("not a non-negative integer: %q", raw)
	}
	return value, nil
}
