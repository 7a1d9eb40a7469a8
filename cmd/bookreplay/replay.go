package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"marketdepth/internal/common"
	"marketdepth/internal/market"
)

// wireRecord is the demo CLI's own tiny JSON-lines shape for -file
// input: one decoded record per line. A real deployment's decoder
// would produce market.Record values directly; this is a stand-in
// just so the CLI has something other than synthetic data to replay.
type wireRecord struct {
	Kind         string  `json:"kind"` // "mbo", "symbol_mapping", or "system"
	Action       string  `json:"action"`
	Side         string  `json:"side"`
	OrderID      uint64  `json:"order_id"`
	PriceRaw     int64   `json:"price_raw"`
	Size         uint32  `json:"size"`
	PublisherID  uint16  `json:"publisher_id"`
	InstrumentID uint32  `json:"instrument_id"`
	TsEvent      int64   `json:"ts_event"`
	TsRecv       int64   `json:"ts_recv"`
	Flags        uint8   `json:"flags"`
	Symbol       *string `json:"symbol,omitempty"`
}

func loadFile(path string) ([]market.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open replay file: %w", err)
	}
	defer f.Close()

	var records []market.Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var wr wireRecord
		if err := json.Unmarshal(line, &wr); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}

		rec, err := wr.toRecord()
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read replay file: %w", err)
	}

	return records, nil
}

func (wr wireRecord) toRecord() (market.Record, error) {
	switch wr.Kind {
	case "symbol_mapping":
		symbol := ""
		if wr.Symbol != nil {
			symbol = *wr.Symbol
		}
		return market.SymbolMappingRecord{InstrumentID: wr.InstrumentID, Symbol: symbol}, nil

	case "system":
		return market.SystemRecord{}, nil

	case "mbo", "":
		var side common.Side
		if wr.Side != "" {
			side = common.Side(wr.Side[0])
		} else {
			side = common.SideNone
		}
		var action common.Action
		if wr.Action != "" {
			action = common.Action(wr.Action[0])
		}
		return market.MBORecord{Message: common.Message{
			Action:       action,
			Side:         side,
			OrderID:      wr.OrderID,
			Price:        common.PriceFromRaw(wr.PriceRaw),
			Size:         wr.Size,
			PublisherID:  wr.PublisherID,
			InstrumentID: wr.InstrumentID,
			TsEvent:      wr.TsEvent,
			TsRecv:       wr.TsRecv,
			Flags:        common.Flags(wr.Flags),
		}}, nil

	default:
		return nil, fmt.Errorf("%w: unknown record kind %q", common.ErrUnsupportedRecord, wr.Kind)
	}
}
