// Command chat is a terminal client for the helpline's text chat endpoint.
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	serverURL := flag.String("url", "http://localhost:8080/chat", "chat endpoint")
	timeout := flag.Duration("timeout", 30*time.Second, "request timeout")
	flag.Parse()

	client := &chatClient{
		url:  *serverURL,
		http: &http.Client{Timeout: *timeout},
	}
	if _, err := tea.NewProgram(newModel(client), tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(fmt.Errorf("chat failed: %w", err))
	}
}
