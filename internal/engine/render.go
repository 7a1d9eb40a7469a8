package engine

import (
	"fmt"
	"strings"
	"time"

	"marketdepth/internal/common"
)

// easternLocation is resolved once; falling back to a fixed -5h offset
// (the original Python's behaviour) only if the tzdata database is
// unavailable in the runtime environment.
var easternLocation = loadEastern()

func loadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		return time.FixedZone("EST", -5*60*60)
	}
	return loc
}

// depthLine is one renderable "price x aggregate_depth" row.
type depthLine struct {
	price common.Price
	size  uint64
}

// renderBook builds a human-readable depth dump: offers highest-to-
// lowest above bids highest-to-lowest, each line "price x
// aggregate_depth", with a two-line header and the last-update time in
// UTC and US/Eastern.
func renderBook(instrument string, publisherID uint16, tsLastUpdate int64, offersAscending, bidsDescending []depthLine) string {
	var sb strings.Builder

	utc := time.Unix(0, tsLastUpdate).UTC()
	est := utc.In(easternLocation)

	fmt.Fprintf(&sb, "---------------------------- %s ----------------------------\n", instrument)
	fmt.Fprintf(&sb, "---------------------------- Exchange: %d ----------------------------\n", publisherID)
	fmt.Fprintf(&sb, "Last update (UTC): %s\n", utc.Format("2006-01-02 15:04:05.000000000"))
	fmt.Fprintf(&sb, "Last update (EST): %s\n", est.Format("2006-01-02 15:04:05.000000000"))

	for i := len(offersAscending) - 1; i >= 0; i-- {
		line := offersAscending[i]
		fmt.Fprintf(&sb, "\t\t%s x %d\n", line.price.Decimal().String(), line.size)
	}
	for _, line := range bidsDescending {
		fmt.Fprintf(&sb, "%s x %d\n", line.price.Decimal().String(), line.size)
	}

	return sb.String()
}
