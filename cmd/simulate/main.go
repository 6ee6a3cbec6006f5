// Command simulate exercises a running relay server with synthetic game
// traffic. It opens one or more host/joiner pairs, runs the full HOST/JOIN
// handshake, then pumps MOVE messages from the host and measures how long
// each takes to come back from the joiner's echo. Useful for smoke testing
// a deployment and for eyeballing relay latency under load.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

type envelope struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode,omitempty"`
	ScreenW  int    `json:"screenW,omitempty"`
	ScreenH  int    `json:"screenH,omitempty"`
	GameW    int    `json:"gameW,omitempty"`
	GameH    int    `json:"gameH,omitempty"`
	Reason   string `json:"reason,omitempty"`
	Seq      int    `json:"seq,omitempty"`
	SentAt   int64  `json:"sentAt,omitempty"`
}

type pairResult struct {
	pair     int
	code     string
	gameW    int
	gameH    int
	messages int
	totalRTT time.Duration
	maxRTT   time.Duration
	err      error
}

func main() {
	serverURL := flag.String("url", "ws://localhost:8080/ws", "Relay server websocket URL")
	pairs := flag.Int("pairs", 1, "Number of host/joiner pairs to run")
	messages := flag.Int("messages", 50, "MOVE messages per pair")
	delayMs := flag.Int("delay", 20, "Delay between moves in milliseconds")
	flag.Parse()

	log.Printf("Simulating %d pair(s) against %s", *pairs, *serverURL)

	var wg sync.WaitGroup
	results := make([]pairResult, *pairs)

	for i := 0; i < *pairs; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			results[n] = runPair(n, *serverURL, *messages, time.Duration(*delayMs)*time.Millisecond)
		}(i)
	}
	wg.Wait()

	fmt.Println("\n=== Results ===")
	failed := 0
	for _, r := range results {
		if r.err != nil {
			failed++
			fmt.Printf("pair %d: FAILED: %v\n", r.pair, r.err)
			continue
		}
		avg := time.Duration(0)
		if r.messages > 0 {
			avg = r.totalRTT / time.Duration(r.messages)
		}
		fmt.Printf("pair %d: room=%s game=%dx%d echoed=%d avg_rtt=%s max_rtt=%s\n",
			r.pair, r.code, r.gameW, r.gameH, r.messages, avg, r.maxRTT)
	}
	if failed > 0 {
		fmt.Printf("%d/%d pairs failed\n", failed, len(results))
	}
}

// runPair drives one complete host/joiner scenario.
func runPair(n int, url string, messages int, delay time.Duration) pairResult {
	result := pairResult{pair: n}

	host, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		result.err = fmt.Errorf("host dial: %w", err)
		return result
	}
	defer host.Close()

	// Host opens a room.
	if err := host.WriteJSON(envelope{Type: "HOST", ScreenW: 1920, ScreenH: 1080}); err != nil {
		result.err = fmt.Errorf("send HOST: %w", err)
		return result
	}
	hosted, err := readType(host, "HOSTED")
	if err != nil {
		result.err = err
		return result
	}
	result.code = hosted.RoomCode

	// Joiner matches into it.
	joiner, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		result.err = fmt.Errorf("joiner dial: %w", err)
		return result
	}
	defer joiner.Close()

	if err := joiner.WriteJSON(envelope{Type: "JOIN", RoomCode: hosted.RoomCode, ScreenW: 1280, ScreenH: 800}); err != nil {
		result.err = fmt.Errorf("send JOIN: %w", err)
		return result
	}
	size, err := readType(joiner, "SCREEN_SIZE")
	if err != nil {
		result.err = err
		return result
	}
	result.gameW, result.gameH = size.GameW, size.GameH
	if _, err := readType(joiner, "JOINED"); err != nil {
		result.err = err
		return result
	}
	if _, err := readType(host, "CLIENT_JOINED"); err != nil {
		result.err = err
		return result
	}

	// Joiner echoes every MOVE straight back.
	go func() {
		for {
			var msg envelope
			if err := joiner.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Type == "MOVE" {
				if err := joiner.WriteJSON(msg); err != nil {
					return
				}
			}
		}
	}()

	// Host pumps moves and measures the round trip through the relay.
	for seq := 1; seq <= messages; seq++ {
		move := envelope{Type: "MOVE", Seq: seq, SentAt: time.Now().UnixNano()}
		if err := host.WriteJSON(move); err != nil {
			result.err = fmt.Errorf("send MOVE %d: %w", seq, err)
			return result
		}

		echo, err := readType(host, "MOVE")
		if err != nil {
			result.err = fmt.Errorf("echo %d: %w", seq, err)
			return result
		}

		rtt := time.Since(time.Unix(0, echo.SentAt))
		result.messages++
		result.totalRTT += rtt
		if rtt > result.maxRTT {
			result.maxRTT = rtt
		}

		time.Sleep(delay)
	}

	return result
}

// readType reads frames until one of the wanted type arrives, skipping
// unrelated relay traffic. A REJECT is always an error.
func readType(conn *websocket.Conn, want string) (*envelope, error) {
	conn.SetReadDeadline(time.Now().Add(10 * time.Second))
	defer conn.SetReadDeadline(time.Time{})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return nil, fmt.Errorf("waiting for %s: %w", want, err)
		}
		var msg envelope
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}
		if msg.Type == "REJECT" {
			return nil, fmt.Errorf("rejected: %s", msg.Reason)
		}
		if strings.EqualFold(msg.Type, want) {
			return &msg, nil
		}
	}
}
