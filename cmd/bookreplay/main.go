// Command bookreplay feeds a synthetic (or, with -file, externally
// decoded) MBO message stream through a Market and prints book
// snapshots.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"marketdepth/internal/fixtures"
	"marketdepth/internal/market"
)

func main() {
	levels := flag.Int("levels", 5, "price levels per side in the synthetic book")
	ordersPerLevel := flag.Int("orders-per-level", 3, "resting orders per price level")
	publisherID := flag.Uint("publisher", 1, "synthetic publisher id")
	instrumentID := flag.Uint("instrument", 100, "synthetic instrument id")
	file := flag.String("file", "", "replay a JSON-lines file of decoded records instead of generating synthetic data")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	cfg := fixtures.DefaultConfig()
	cfg.Levels = *levels
	cfg.OrdersPerLevel = *ordersPerLevel
	cfg.PublisherID = uint16(*publisherID)
	cfg.InstrumentID = uint32(*instrumentID)

	var records []market.Record
	if *file != "" {
		loaded, err := loadFile(*file)
		if err != nil {
			log.Fatal().Err(err).Str("file", *file).Msg("failed to load replay file")
		}
		records = loaded
	} else {
		records = fixtures.GenerateAddBurst(cfg, 1)
	}

	m := market.New()
	for _, rec := range records {
		if err := m.Apply(rec); err != nil {
			log.Error().Err(err).Msg("failed to apply record")
		}
	}

	book := m.GetOrderBook(cfg.PublisherID, cfg.InstrumentID)
	fmt.Println(book)

	bestBid, bestOffer := m.BBO(cfg.PublisherID, cfg.InstrumentID)
	fmt.Printf("BBO: bid=%+v offer=%+v\n", bestBid, bestOffer)
}
