// Command limitbookctl drives a single in-process limitbook engine
// from a script of orders, printing fills and the resulting snapshot.
// There is no client/server split — the core has no wire protocol —
// this is a scriptable harness for exercising one engine instance.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"limitbook/domain"
	"limitbook/engine"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "limitbookctl",
		Short: "Drive a limitbook engine from a script of orders",
	}
	root.AddCommand(newReplayCommand())
	return root
}

func newReplayCommand() *cobra.Command {
	var symbol string
	var file string

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Post a sequence of orders and print the resulting snapshot",
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			return runReplay(cmd.Context(), cmd.OutOrStdout(), in, symbol)
		},
	}

	cmd.Flags().StringVar(&symbol, "symbol", "BTCUSD", "instrument symbol")
	cmd.Flags().StringVar(&file, "file", "", "path to an order script; defaults to stdin")
	return cmd
}

// runID prefixes every line one replay prints; it has no bearing on
// order identity, which is always the engine's own monotonic domain.ID.
func runReplay(ctx context.Context, out io.Writer, in io.Reader, symbol string) error {
	runID := uuid.New()
	logger := zap.NewNop()

	eng := engine.New(symbol, engine.WithLogger(logger))
	defer eng.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for f := range eng.Fills() {
			fmt.Fprintf(out, "[%s] fill maker=%s taker=%s price=%s qty=%d\n",
				runID, f.MakerID, f.TakerID, f.Price, f.Quantity)
			f.Release()
		}
	}()

	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		order, err := parseOrderLine(line)
		if err != nil {
			return fmt.Errorf("run %s: %w", runID, err)
		}
		id, err := eng.Post(ctx, order)
		if err != nil {
			return fmt.Errorf("run %s: post: %w", runID, err)
		}
		fmt.Fprintf(out, "[%s] posted id=%s side=%s price=%s qty=%d\n",
			runID, id, order.Side, order.Price, order.Quantity)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if err := eng.Drain(ctx); err != nil {
		return fmt.Errorf("run %s: drain: %w", runID, err)
	}

	snap, err := eng.GetSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("run %s: snapshot: %w", runID, err)
	}
	fmt.Fprintf(out, "[%s] snapshot asks=%d bids=%d\n", runID, len(snap.Asks), len(snap.Bids))
	for _, od := range snap.Asks {
		fmt.Fprintf(out, "[%s]   ask id=%s price=%s qty=%d\n", runID, od.ID, od.Order.Price, od.Order.Quantity)
	}
	for _, od := range snap.Bids {
		fmt.Fprintf(out, "[%s]   bid id=%s price=%s qty=%d\n", runID, od.ID, od.Order.Price, od.Order.Quantity)
	}

	eng.Close()
	<-done
	return nil
}

// parseOrderLine parses "<ask|bid> <price> <quantity>".
func parseOrderLine(line string) (domain.Order, error) {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return domain.Order{}, fmt.Errorf("malformed order line %q: want \"<ask|bid> <price> <quantity>\"", line)
	}

	var side domain.Side
	switch strings.ToLower(fields[0]) {
	case "ask":
		side = domain.Ask
	case "bid":
		side = domain.Bid
	default:
		return domain.Order{}, fmt.Errorf("unknown side %q", fields[0])
	}

	price, err := domain.NewPriceFromString(fields[1])
	if err != nil {
		return domain.Order{}, fmt.Errorf("invalid price %q: %w", fields[1], err)
	}

	quantity, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return domain.Order{}, fmt.Errorf("invalid quantity %q: %w", fields[2], err)
	}

	return domain.Order{Side: side, Price: price, Quantity: quantity}, nil
}
