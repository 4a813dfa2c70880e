// Command interviewclient is a minimal text-mode client for exercising a
// running service: it starts a session over REST, connects the interview
// WebSocket, and prints everything the server streams back. Typed lines are
// sent as text_input messages.
package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

func main() {
	host := flag.String("host", "localhost:8080", "service host:port")
	name := flag.String("name", "Test Candidate", "candidate name")
	company := flag.String("company", "Generic Tech", "target company")
	position := flag.String("position", "Software Engineer", "target position")
	count := flag.Int("questions", 3, "question count")
	flag.Parse()

	body, _ := json.Marshal(map[string]any{
		"candidate_name": *name,
		"company":        *company,
		"position":       *position,
		"question_count": *count,
	})
	resp, err := http.Post("http://"+*host+"/api/v1/interviews/start", "application/json", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("start request failed: %v", err)
	}
	defer resp.Body.Close()

	var started struct {
		SessionID string `json:"session_id"`
		WSURL     string `json:"ws_url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&started); err != nil {
		log.Fatalf("bad start response: %v", err)
	}
	log.Printf("Session %s created", started.SessionID)

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+*host+started.WSURL, nil)
	if err != nil {
		log.Fatalf("websocket dial failed: %v", err)
	}
	defer conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			messageType, data, err := conn.ReadMessage()
			if err != nil {
				log.Printf("connection closed: %v", err)
				return
			}
			if messageType == websocket.BinaryMessage {
				fmt.Printf("[audio %d bytes]\n", len(data))
				continue
			}
			var msg map[string]any
			if err := json.Unmarshal(data, &msg); err != nil {
				continue
			}
			switch msg["type"] {
			case "transcript":
				final := ""
				if msg["is_final"] == true {
					final = " (final)"
				}
				fmt.Printf("%s%s: %s\n", msg["role"], final, msg["text"])
			case "phase":
				fmt.Printf("--- phase: %s ---\n", msg["phase"])
			case "interview_complete":
				fmt.Println("--- interview complete ---")
				return
			default:
				fmt.Printf("%s\n", data)
			}
		}
	}()

	// Stdin lines become typed answers.
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			payload, _ := json.Marshal(map[string]string{"type": "text_input", "text": line})
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				log.Printf("write failed: %v", err)
				return
			}
		}
	}()

	select {
	case <-done:
	case <-time.After(30 * time.Minute):
		log.Println("client timeout")
	}
}
