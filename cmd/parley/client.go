package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/avercier/parley/internal/config"
	"github.com/avercier/parley/internal/session"
)

func showStatus() error {
	cfg, err := config.Load()
	if err != nil {
		printError("config error: %v", err)
		return nil
	}

	serverURL := fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port)
	client := &http.Client{Timeout: 2 * time.Second}

	resp, err := client.Get(serverURL + "/health")
	running := err == nil && resp.StatusCode == http.StatusOK
	if err != nil {
		printStatus("Server", "stopped")
	} else {
		resp.Body.Close()
		if running {
			printStatus("Server", "running on port %d", cfg.Server.Port)
		} else {
			printStatus("Server", "error (HTTP %d)", resp.StatusCode)
		}
	}

	printStatus("Gemini model", "%s", cfg.Gemini.Model)

	if running {
		if stats, err := fetchStats(client, serverURL); err == nil {
			printStatus("Active sessions", "%d", stats.TotalActiveSessions)
			printStatus("Completed", "%d", stats.CompletedSessions)
			printStatus("In progress", "%d", stats.InProgressSessions)
		}
	}

	printStatus("Data dir", "%s", cfg.Storage.DataDir)
	return nil
}

func fetchStats(client *http.Client, serverURL string) (session.Stats, error) {
	resp, err := client.Get(serverURL + "/api/interview/sessions/stats")
	if err != nil {
		return session.Stats{}, err
	}
	defer resp.Body.Close()

	var stats session.Stats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return session.Stats{}, err
	}
	return stats, nil
}
