package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"market-simulator/src/models"

	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Small smoke client for the streaming surface. Connects to /ws, prints one
// line per event, closes cleanly on Ctrl-C.
// -----------------------------------------------------------------------------

func main() {
	addr := flag.String("addr", "127.0.0.1:8000", "server host:port")
	raw := flag.Bool("raw", false, "print raw frames instead of summaries")
	flag.Parse()

	url := fmt.Sprintf("ws://%s/ws", *addr)

	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.Dial(url, http.Header{})
	if err != nil {
		fmt.Printf("Dial failed: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close()

	fmt.Printf("Connected to %s\n", url)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				fmt.Printf("Read error: %v\n", err)
				return
			}
			if *raw {
				fmt.Println(string(msg))
				continue
			}
			fmt.Println(summarize(msg))
		}
	}()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	select {
	case <-done:
	case <-interrupt:
		fmt.Println("Closing...")
		// Ask the server to close, then give the read loop a moment to drain
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

// -----------------------------------------------------------------------------

// summarize renders one broadcast frame as a single log-style line
func summarize(msg []byte) string {
	var event models.MEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		return fmt.Sprintf("bad frame: %v", err)
	}

	switch event.Type {
	case models.EventConnected:
		return fmt.Sprintf("[connected] symbols=%v", event.Symbols)
	case models.EventSnapshot:
		if event.Data != nil {
			return fmt.Sprintf("[snapshot] %s price=%.2f bid=%.2f ask=%.2f volume=%d",
				event.Symbol, event.Data.Price, event.Data.Bid, event.Data.Ask, event.Data.Volume)
		}
	case models.EventTrade:
		if event.Trade != nil {
			return fmt.Sprintf("[trade] %s price=%.2f qty=%d ts=%d",
				event.Symbol, event.Trade.Price, event.Trade.Quantity, event.Trade.Timestamp)
		}
	case models.EventSimulationStarted:
		return fmt.Sprintf("[simulation_started] %s", event.SimulationID)
	case models.EventSimulationStopped:
		return fmt.Sprintf("[simulation_stopped] %s", event.SimulationID)
	case models.EventSimulationCompleted:
		if event.Results != nil {
			return fmt.Sprintf("[simulation_completed] %s trades=%d steps=%d",
				event.SimulationID, event.Results.TotalTrades, event.Results.Steps)
		}
		return fmt.Sprintf("[simulation_completed] %s", event.SimulationID)
	}

	return fmt.Sprintf("[%s]", event.Type)
}
