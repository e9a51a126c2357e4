// Command limitbookd runs a single limitbook engine and demonstrates
// posting, matching, and snapshotting against it. It talks to nothing
// over the network — there is no wire protocol in this repo — it
// exists to exercise the engine end to end.
package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"limitbook/domain"
	"limitbook/engine"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	eng := engine.New("BTCUSD", engine.WithLogger(logger))
	defer eng.Close()

	go reportFills(eng)

	ctx := context.Background()

	sellID, _ := eng.Post(ctx, domain.Order{Side: domain.Ask, Price: domain.NewPriceFromInt(50000), Quantity: 1})
	fmt.Printf("posted ask id=%s price=50000 qty=1\n", sellID)

	buyID, _ := eng.Post(ctx, domain.Order{Side: domain.Bid, Price: domain.NewPriceFromInt(50000), Quantity: 1})
	fmt.Printf("posted bid id=%s price=50000 qty=1\n", buyID)

	if err := eng.Drain(ctx); err != nil {
		logger.Error("drain failed", zap.Error(err))
	}

	snap, err := eng.GetSnapshot(ctx)
	if err != nil {
		logger.Error("snapshot failed", zap.Error(err))
		return
	}
	fmt.Printf("final book: %d asks, %d bids\n", len(snap.Asks), len(snap.Bids))
}

func reportFills(eng *engine.Engine) {
	for f := range eng.Fills() {
		fmt.Printf("fill maker=%s taker=%s price=%s qty=%d at=%s\n",
			f.MakerID, f.TakerID, f.Price, f.Quantity, f.Timestamp.Format(time.RFC3339Nano))
		f.Release()
	}
}
