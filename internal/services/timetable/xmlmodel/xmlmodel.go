// Package xmlmodel declares the record shapes of the timetables API XML
// documents. Handlers forward upstream bodies verbatim; these types exist for
// callers that want to decode a body themselves.
package xmlmodel

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
)

// EventStatus is the planned or changed status of an arrival/departure.
type EventStatus string

const (
	EventPlanned   EventStatus = "p"
	EventAdded     EventStatus = "a"
	EventCancelled EventStatus = "c"
)

// MessageType classifies a message attached to a stop or timetable.
type MessageType string

const (
	MessageHIM            MessageType = "h"
	MessageQualityChange  MessageType = "q"
	MessageFree           MessageType = "f"
	MessageCauseOfDelay   MessageType = "d"
	MessageIBIS           MessageType = "i"
	MessageUnassignedIBIS MessageType = "u"
	MessageDisruption     MessageType = "r"
	MessageConnection     MessageType = "c"
)

// Priority of a message; 4 marks it done.
type Priority string

const (
	PriorityHigh   Priority = "1"
	PriorityMedium Priority = "2"
	PriorityLow    Priority = "3"
	PriorityDone   Priority = "4"
)

// ConnectionStatus of a connecting train.
type ConnectionStatus string

const (
	ConnectionWaiting     ConnectionStatus = "w"
	ConnectionTransition  ConnectionStatus = "n"
	ConnectionAlternative ConnectionStatus = "a"
)

// DelaySource names the system that produced a delay.
type DelaySource string

const (
	DelayLeibit             DelaySource = "L"
	DelayRISNEAutomatic     DelaySource = "NA"
	DelayRISNEManual        DelaySource = "NM"
	DelayVDV                DelaySource = "V"
	DelayISTPAutomatic      DelaySource = "IA"
	DelayISTPManual         DelaySource = "IM"
	DelayAutomaticPrognosis DelaySource = "A"
)

// DistributorType scopes a distributor message.
type DistributorType string

const (
	DistributorCity         DistributorType = "s"
	DistributorRegion       DistributorType = "r"
	DistributorLongDistance DistributorType = "f"
	DistributorOther        DistributorType = "x"
)

// TripType is the train type flag of a trip label.
type TripType string

const (
	TripP TripType = "p"
	TripE TripType = "e"
	TripZ TripType = "z"
	TripS TripType = "s"
	TripH TripType = "h"
	TripN TripType = "n"
)

// ReferenceTripRelationToStop places a reference trip relative to a stop.
type ReferenceTripRelationToStop string

const (
	RelationBefore  ReferenceTripRelationToStop = "b"
	RelationEnd     ReferenceTripRelationToStop = "e"
	RelationBetween ReferenceTripRelationToStop = "c"
	RelationStart   ReferenceTripRelationToStop = "s"
	RelationAfter   ReferenceTripRelationToStop = "a"
)

// Timetable is the root of fchg, rchg and plan documents.
type Timetable struct {
	XMLName  xml.Name        `xml:"timetable"`
	Station  string          `xml:"station,attr,omitempty"`
	EVA      int64           `xml:"eva,attr,omitempty"`
	Messages []Message       `xml:"m"`
	Stops    []TimetableStop `xml:"s"`
}

// TimetableStop is one train's stop at the station.
type TimetableStop struct {
	ID                     string                   `xml:"id,attr"`
	EVA                    int64                    `xml:"eva,attr,omitempty"`
	TripLabel              *TripLabel               `xml:"tl"`
	Reference              *TripReference           `xml:"ref"`
	Arrival                *Event                   `xml:"ar"`
	Departure              *Event                   `xml:"dp"`
	Messages               []Message                `xml:"m"`
	HistoricDelays         []HistoricDelay          `xml:"hd"`
	HistoricPlatformChange []HistoricPlatformChange `xml:"hpc"`
	Connections            []Connection             `xml:"conn"`
	ReferenceTripRelations []ReferenceTripRelation  `xml:"rtr"`
}

// Event is an arrival or departure. Planned attributes start with p, changed
// ones with c.
type Event struct {
	PlannedTime         string      `xml:"pt,attr,omitempty"`
	PlannedPlatform     string      `xml:"pp,attr,omitempty"`
	PlannedPath         string      `xml:"ppth,attr,omitempty"`
	PlannedStatus       EventStatus `xml:"ps,attr,omitempty"`
	PlannedDestination  string      `xml:"pde,attr,omitempty"`
	ChangedTime         string      `xml:"ct,attr,omitempty"`
	ChangedPlatform     string      `xml:"cp,attr,omitempty"`
	ChangedPath         string      `xml:"cpth,attr,omitempty"`
	ChangedStatus       EventStatus `xml:"cs,attr,omitempty"`
	ChangedDestination  string      `xml:"cde,attr,omitempty"`
	CancellationTime    string      `xml:"clt,attr,omitempty"`
	DistantChange       int         `xml:"dc,attr,omitempty"`
	Hidden              int         `xml:"hi,attr,omitempty"`
	Line                string      `xml:"l,attr,omitempty"`
	TransitionReference string      `xml:"tra,attr,omitempty"`
	Wings               string      `xml:"wings,attr,omitempty"`
	Messages            []Message   `xml:"m"`
}

// Message is a free text, delay cause or disruption notice.
type Message struct {
	ID               string               `xml:"id,attr"`
	Type             MessageType          `xml:"t,attr"`
	Timestamp        string               `xml:"ts,attr"`
	Code             int                  `xml:"c,attr,omitempty"`
	Category         string               `xml:"cat,attr,omitempty"`
	Delay            int                  `xml:"del,attr,omitempty"`
	EventCode        string               `xml:"ec,attr,omitempty"`
	ExternalLink     string               `xml:"elnk,attr,omitempty"`
	ExternalText     string               `xml:"ext,attr,omitempty"`
	ValidFrom        string               `xml:"from,attr,omitempty"`
	ValidTo          string               `xml:"to,attr,omitempty"`
	InternalText     string               `xml:"int,attr,omitempty"`
	Owner            string               `xml:"o,attr,omitempty"`
	Priority         Priority             `xml:"pr,attr,omitempty"`
	DistributorNotes []DistributorMessage `xml:"dm"`
	TripLabels       []TripLabel          `xml:"tl"`
}

// DistributorMessage is a message scoped to a distributor.
type DistributorMessage struct {
	InternalText string          `xml:"int,attr,omitempty"`
	Name         string          `xml:"n,attr,omitempty"`
	Type         DistributorType `xml:"t,attr,omitempty"`
	Timestamp    string          `xml:"ts,attr,omitempty"`
}

// TripLabel identifies a train: category, number and operator.
type TripLabel struct {
	Category string   `xml:"c,attr"`
	Number   string   `xml:"n,attr"`
	Owner    string   `xml:"o,attr"`
	Flags    string   `xml:"f,attr,omitempty"`
	Type     TripType `xml:"t,attr,omitempty"`
}

// TripReference links a stop to the trips it references.
type TripReference struct {
	TripLabel  TripLabel   `xml:"tl"`
	References []TripLabel `xml:"rt"`
}

// Connection is a connecting train at the same station.
type Connection struct {
	ID        string           `xml:"id,attr"`
	Status    ConnectionStatus `xml:"cs,attr"`
	Timestamp string           `xml:"ts,attr"`
	EVA       int64            `xml:"eva,attr,omitempty"`
	Stop      TimetableStop    `xml:"s"`
	Ref       *TimetableStop   `xml:"ref"`
}

// HistoricDelay records an earlier delay value.
type HistoricDelay struct {
	Arrival   string      `xml:"ar,attr,omitempty"`
	Departure string      `xml:"dp,attr,omitempty"`
	Cause     string      `xml:"cod,attr,omitempty"`
	Source    DelaySource `xml:"src,attr,omitempty"`
	Timestamp string      `xml:"ts,attr,omitempty"`
}

// HistoricPlatformChange records an earlier platform change.
type HistoricPlatformChange struct {
	Arrival   string `xml:"ar,attr,omitempty"`
	Departure string `xml:"dp,attr,omitempty"`
	Cause     string `xml:"cot,attr,omitempty"`
	Timestamp string `xml:"ts,attr,omitempty"`
}

// ReferenceTrip is a trip other stops can be related to.
type ReferenceTrip struct {
	ID        string                 `xml:"id,attr"`
	Cancelled bool                   `xml:"c,attr"`
	Label     ReferenceTripLabel     `xml:"rtl"`
	Start     ReferenceTripStopLabel `xml:"sd"`
	End       ReferenceTripStopLabel `xml:"ea"`
}

// ReferenceTripLabel is the category and number of a reference trip.
type ReferenceTripLabel struct {
	Category string `xml:"c,attr"`
	Number   string `xml:"n,attr"`
}

// ReferenceTripStopLabel is the first or last stop of a reference trip.
type ReferenceTripStopLabel struct {
	EVA         int64  `xml:"eva,attr"`
	Index       int    `xml:"i,attr"`
	Name        string `xml:"n,attr"`
	PlannedTime string `xml:"pt,attr"`
}

// ReferenceTripRelation relates a stop to a reference trip.
type ReferenceTripRelation struct {
	Trip     ReferenceTrip               `xml:"rt"`
	Relation ReferenceTripRelationToStop `xml:"rts,attr"`
}

// Stations is the root of a station search result.
type Stations struct {
	XMLName  xml.Name  `xml:"stations"`
	Stations []Station `xml:"station"`
}

// Station is one station search hit.
type Station struct {
	Name      string `xml:"name,attr"`
	EVA       int64  `xml:"eva,attr"`
	DS100     string `xml:"ds100,attr"`
	Meta      string `xml:"meta,attr,omitempty"`
	Platforms string `xml:"p,attr,omitempty"`
	DB        string `xml:"db,attr,omitempty"`
	Creation  string `xml:"creationts,attr,omitempty"`
}

// DecodeTimetable decodes a fchg, rchg or plan document.
func DecodeTimetable(body []byte) (*Timetable, error) {
	var tt Timetable
	if err := decode(body, &tt); err != nil {
		return nil, fmt.Errorf("decode timetable: %w", err)
	}
	return &tt, nil
}

// DecodeStations decodes a station search document.
func DecodeStations(body []byte) (*Stations, error) {
	var st Stations
	if err := decode(body, &st); err != nil {
		return nil, fmt.Errorf("decode stations: %w", err)
	}
	return &st, nil
}

func decode(body []byte, v any) error {
	dec := xml.NewDecoder(bytes.NewReader(body))
	// Upstream documents declare UTF-8; pass other labels through untouched.
	dec.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	return dec.Decode(v)
}
