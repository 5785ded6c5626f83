package main

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/teslashibe/go-nao/internal/log"
	"github.com/teslashibe/go-nao/pkg/hub"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream choreography events from a running gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("gateway")
		raw, _ := cmd.Flags().GetBool("raw")

		u := url.URL{Scheme: "ws", Host: addr, Path: "/ws/events"}
		dialer := websocket.Dialer{HandshakeTimeout: 5 * time.Second}
		conn, _, err := dialer.DialContext(cmd.Context(), u.String(), nil)
		if err != nil {
			return fmt.Errorf("watch: dial %s: %w", u.String(), err)
		}
		defer conn.Close()
		log.Info("watching gateway events", "url", u.String())

		go func() {
			<-cmd.Context().Done()
			conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(time.Second))
			conn.Close()
		}()

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if cmd.Context().Err() != nil ||
					websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
					return nil
				}
				return fmt.Errorf("watch: %w", err)
			}
			if raw {
				fmt.Println(string(data))
				continue
			}
			printEvent(data)
		}
	},
}

// printEvent renders one hub event on a line.
func printEvent(data []byte) {
	var ev struct {
		Type string          `json:"type"`
		At   time.Time       `json:"at"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &ev); err != nil {
		fmt.Println(string(data))
		return
	}

	ts := ev.At.Local().Format("15:04:05.000")
	switch ev.Type {
	case hub.EventTransition:
		var t struct {
			RunID string `json:"run_id"`
			From  string `json:"from"`
			To    string `json:"to"`
			Err   string `json:"error"`
		}
		if json.Unmarshal(ev.Data, &t) == nil {
			line := fmt.Sprintf("%s  %.8s  %-26s -> %s", ts, t.RunID, t.From, t.To)
			if t.Err != "" {
				line += "  (" + t.Err + ")"
			}
			fmt.Println(line)
			return
		}
	case hub.EventRun:
		var r struct {
			ID      string `json:"id"`
			Routine string `json:"routine"`
			Outcome string `json:"outcome"`
			Partial bool   `json:"partial"`
		}
		if json.Unmarshal(ev.Data, &r) == nil {
			fmt.Printf("%s  %.8s  %s %s (partial=%v)\n", ts, r.ID, r.Routine, r.Outcome, r.Partial)
			return
		}
	}
	fmt.Printf("%s  %s %s\n", ts, ev.Type, string(ev.Data))
}

func init() {
	watchCmd.PreRun = signalContext
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().StringP("gateway", "g", "localhost:5000", "Gateway host:port")
	watchCmd.Flags().Bool("raw", false, "Print events as raw JSON")
}
