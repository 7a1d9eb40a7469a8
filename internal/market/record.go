package market

import "marketdepth/internal/common"

// RecordKind tags the three shapes Market.Apply accepts, standing in for
// the upstream decoder's SymbolMappingMsg / MBOMsg / SystemMsg union.
type RecordKind int

const (
	RecordMBO RecordKind = iota
	RecordSymbolMapping
	RecordSystem
)

// Record is anything Market.Apply can dispatch on.
type Record interface {
	Kind() RecordKind
}

// MBORecord carries one decoded MBO message: an Add/Cancel/Modify/Clear/
// Trade/Fill/None action against a specific (publisher, instrument) book.
type MBORecord struct {
	common.Message
}

func (MBORecord) Kind() RecordKind { return RecordMBO }

// SymbolMappingRecord announces the display symbol for an instrument id.
// It never mutates a book.
type SymbolMappingRecord struct {
	InstrumentID uint32
	Symbol       string
}

func (SymbolMappingRecord) Kind() RecordKind { return RecordSymbolMapping }

// SystemRecord is a heartbeat/administrative record; Market.Apply skips it.
type SystemRecord struct{}

func (SystemRecord) Kind() RecordKind { return RecordSystem }
