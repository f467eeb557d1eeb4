package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"chat-relay/internal/logger"
	"chat-relay/config"
	"chat-relay/conversation"
	"chat-relay/models"
	"chat-relay/relayclient"
	"chat-relay/session"
	"chat-relay/usagegate"
)

// 터미널 프런트엔드. 렌더링은 최소한으로 유지하고
// 대화 흐름은 전부 session.Controller 에 맡긴다.
func main() {
	config.InitApp()
	logger.InitFromEnv("LOG_LEVEL")
	cfg := config.GetConfig()

	relayURL := os.Getenv("CHAT_RELAY_URL")
	if relayURL == "" {
		relayURL = "http://localhost:8080"
	}

	store := usagegate.NewFileStore(os.Getenv("CHAT_USAGE_FILE"))
	gate := usagegate.New(store, cfg.UsageGate.DailyLimit)
	client := relayclient.New(relayURL)
	ctrl := session.New(gate, client, cfg.DefaultModel())

	fmt.Println("chat-relay client. Type a message, or /models, /model <id>, /quota, /quit.")

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024)

	for {
		fmt.Printf("[%s] > ", ctrl.Model().ID)
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit":
			return
		case line == "/models":
			for _, m := range cfg.Models {
				marker := " "
				if m.ID == ctrl.Model().ID {
					marker = "*"
				}
				fmt.Printf(" %s %-16s %s\n", marker, m.ID, m.Description)
			}
			continue
		case strings.HasPrefix(line, "/model "):
			id := strings.TrimSpace(strings.TrimPrefix(line, "/model "))
			ctrl.SelectModel(cfg.ResolveModel(id))
			fmt.Printf("model set to %s\n", ctrl.Model().ID)
			continue
		case line == "/quota":
			fmt.Printf("%d of %d prompts remaining today\n", gate.Remaining(), gate.Limit())
			continue
		}

		reply, err := ctrl.SendUserMessage(context.Background(), line)
		switch {
		case errors.Is(err, session.ErrLimitReached):
			fmt.Printf("Daily limit of %d prompts reached. Input is disabled until tomorrow.\n", gate.Limit())
			continue
		case errors.Is(err, conversation.ErrEmptyMessage):
			continue
		case err != nil:
			fmt.Printf("error: %v\n", err)
			continue
		}

		printReply(reply)
		if remaining := gate.Remaining(); remaining <= 5 {
			fmt.Printf("(%d prompts remaining today)\n", remaining)
		}
	}
}

func printReply(m models.Message) {
	if m.IsError {
		fmt.Printf("! %s\n", m.Content)
		return
	}
	fmt.Printf("assistant> %s\n", m.Content)
}
