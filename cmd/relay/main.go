package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"chat-relay/internal/logger"
	"chat-relay/cmd/relay/clients/geminiclient"
	"chat-relay/cmd/relay/clients/openaiclient"
	"chat-relay/cmd/relay/quota"
	"chat-relay/cmd/relay/router"
	"chat-relay/cmd/relay/services"
	"chat-relay/config"
	"chat-relay/db"
	_ "chat-relay/docs" // swag will generate this package
	"chat-relay/eventbus"
	"chat-relay/repositories"
)

// @title           Chat Relay API
// @version         1.0
// @description     Conversation relay between the chat client and the upstream completion provider
// @BasePath        /api
func main() {
	config.InitApp()
	cfg := config.GetConfig()

	// LOG_LEVEL 환경변수가 있으면 설정 파일보다 우선한다.
	if os.Getenv("LOG_LEVEL") != "" {
		logger.InitFromEnv("LOG_LEVEL")
	} else {
		logger.Init(cfg.Logging.Level)
	}

	// 자격 증명이 설정된 provider 만 클라이언트를 구성한다.
	// 키가 없는 provider 로 향하는 요청은 업스트림 호출 없이 500 으로 끝난다.
	clients := map[string]services.UpstreamClient{}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		clients["openai"] = openaiclient.New(cfg.Relay, apiKey)
	} else {
		logger.Log.Warn("OPENAI_API_KEY is not set; openai-provider models will fail with a configuration error")
	}
	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		clients["google"] = geminiclient.New(cfg.Relay, apiKey)
	}

	// Mongo 는 선택 사항이다. 미설정이거나 연결 실패 시 요청 로그 저장만 생략한다.
	var chatLogs *repositories.ChatLogRepository
	if db.Enabled() {
		if err := db.Init(context.Background()); err != nil {
			logger.Log.Warnf("failed to initialize MongoDB, chat logs disabled: %v", err)
		} else {
			chatLogs = repositories.NewChatLogRepository(db.Database())
		}
	}

	// Kafka 도 선택 사항이다. 브로커 미설정 시 이벤트 발행은 no-op 이다.
	var bus eventbus.EventBus = eventbus.NoopEventBus{}
	if brokers := eventbus.GetBrokers(); brokers != "" {
		kb, err := eventbus.NewKafkaEventBus(brokers)
		if err != nil {
			logger.Log.Warnf("failed to create kafka event bus, usage events disabled: %v", err)
		} else {
			bus = kb
		}
	}
	defer bus.Close()

	chatSvc := services.NewChatService(cfg, clients, quota.NewFromConfig(cfg), chatLogs, bus)

	r := router.New(cfg, chatSvc)

	port := cfg.Relay.Port
	if port <= 0 {
		port = 8080
	}
	logger.Log.Infof("starting chat relay on :%d", port)
	if err := r.Run(fmt.Sprintf(":%d", port)); err != nil && err != http.ErrServerClosed {
		logger.Log.Errorf("relay server exited: %v", err)
		os.Exit(1)
	}
}
