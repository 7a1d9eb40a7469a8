// Package fixtures generates synthetic MBO feeds for the demo CLI and
// benchmarks. Nothing in here is exercised by the core engine itself —
// order ids here are minted locally the way a test harness would,
// whereas production ids are exchange-assigned and arrive on the wire.
package fixtures

import (
	"encoding/binary"
	"math/rand/v2"

	"github.com/google/uuid"

	"marketdepth/internal/common"
	"marketdepth/internal/market"
)

// Config parameterizes a synthetic full-depth book burst.
type Config struct {
	PublisherID    uint16
	InstrumentID   uint32
	Levels         int    // distinct price levels per side
	OrdersPerLevel int    // resting orders per level
	TickSize       int64  // raw fixed-point distance between adjacent levels
	MidPrice       int64  // raw fixed-point price the first bid/offer straddle
	BaseSize       uint32 // minimum per-order size; each order adds a random 0..BaseSize-1
}

// DefaultConfig returns a small, readable book: 5 levels/side, 3 orders
// per level, a one-cent tick, straddling a $100.00 mid.
func DefaultConfig() Config {
	return Config{
		PublisherID:    1,
		InstrumentID:   100,
		Levels:         5,
		OrdersPerLevel: 3,
		TickSize:       1 * common.FixedPriceScale / 100,
		MidPrice:       100 * common.FixedPriceScale,
		BaseSize:       100,
	}
}

// NewOrderID mints a reproducible-looking but unique 64-bit order id
// from a fresh UUID.
func NewOrderID() uint64 {
	id := uuid.New()
	return binary.BigEndian.Uint64(id[:8])
}

// GenerateAddBurst builds the Add records that populate a full-depth
// book from cfg: Levels price levels on each side, OrdersPerLevel
// resting orders per level, every order a unique synthetic id. The
// final record carries F_LAST.
func GenerateAddBurst(cfg Config, tsStart int64) []market.Record {
	var records []market.Record
	ts := tsStart

	appendSide := func(side common.Side, firstLevelPrice int64, tickDirection int64) {
		price := firstLevelPrice
		for level := 0; level < cfg.Levels; level++ {
			for order := 0; order < cfg.OrdersPerLevel; order++ {
				size := cfg.BaseSize + uint32(rand.IntN(int(cfg.BaseSize)))
				records = append(records, market.MBORecord{Message: common.Message{
					Action:       common.ActionAdd,
					Side:         side,
					OrderID:      NewOrderID(),
					Price:        common.PriceFromRaw(price),
					Size:         size,
					PublisherID:  cfg.PublisherID,
					InstrumentID: cfg.InstrumentID,
					TsEvent:      ts,
					TsRecv:       ts,
				}})
				ts++
			}
			price += tickDirection * cfg.TickSize
		}
	}

	appendSide(common.SideBid, cfg.MidPrice-cfg.TickSize, -1)
	appendSide(common.SideAsk, cfg.MidPrice+cfg.TickSize, 1)

	if len(records) > 0 {
		last := records[len(records)-1].(market.MBORecord)
		last.Flags |= common.FlagLast
		records[len(records)-1] = last
	}

	return records
}

// GenerateCancelAll builds Cancel records that fully unwind every Add in
// burst, in reverse arrival order, preserving nothing but exercising
// the remove path.
func GenerateCancelAll(burst []market.Record, tsStart int64) []market.Record {
	var records []market.Record
	ts := tsStart
	for i := len(burst) - 1; i >= 0; i-- {
		add, ok := burst[i].(market.MBORecord)
		if !ok || add.Action != common.ActionAdd {
			continue
		}
		records = append(records, market.MBORecord{Message: common.Message{
			Action:       common.ActionCancel,
			Side:         add.Side,
			OrderID:      add.OrderID,
			Price:        add.Price,
			Size:         add.Size,
			PublisherID:  add.PublisherID,
			InstrumentID: add.InstrumentID,
			TsEvent:      ts,
			TsRecv:       ts,
			Flags:        common.FlagLast,
		}})
		ts++
	}
	return records
}
