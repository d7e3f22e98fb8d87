package main

import (
	"context"
	"log"
	"os"
	"time"

	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"

	"github.com/example/chat-relay/modules/broadcast"
	"github.com/example/chat-relay/modules/gateway"
	"github.com/example/chat-relay/modules/relay"
)

const shutdownTimeout = 30 * time.Second

func main() {
	log.Println("=== chat-relay - room membership and message fan-out ===")

	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(shutdownTimeout),
		mono.WithLogLevel(mono.LogLevelInfo),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	relayModule := relay.NewModule(app.Logger())
	broadcastModule := broadcast.NewModule(app.Logger())
	gatewayModule := gateway.NewModule(relayModule, app.Logger())

	// Inject the hub into the gateway module
	// (done manually because the hub is not exposed via ServiceContainer)
	gatewayModule.SetHub(broadcastModule.GetHub())

	// Register modules with the framework.
	// Order: core first, then consumers, then the client-facing edge.
	app.Register(relayModule)     // registry + room directory + event emitter
	app.Register(broadcastModule) // WebSocket hub + event consumer
	app.Register(gatewayModule)   // Fiber HTTP/WebSocket server

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	printStartupInfo()

	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		shutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}

func printStartupInfo() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		natsURL = "nats://localhost:4222"
	}

	log.Println("")
	log.Println("Application started successfully!")
	log.Println("")
	log.Println("Architecture:")
	log.Println("  - HTTP Framework: Fiber with WebSocket support")
	log.Println("  - Event Bus: NATS JetStream (internal pubsub)")
	log.Printf("  - NATS URL: %s", natsURL)
	log.Println("")
	log.Printf("WebSocket endpoint: ws://localhost:%s/ws", port)
	log.Println("  Client events: authenticate, createRoom, joinRoom, leaveRoom, message, logout")
	log.Println("  Server events: authenticated, roomList, roomUsersCount, totalUsers, message, userJoined, userLeft")
	log.Println("")
	log.Printf("REST endpoints (http://localhost:%s):", port)
	log.Println("  GET /health        - Health check")
	log.Println("  GET /api/v1/rooms  - List rooms with member counts")
	log.Println("")
	log.Println("Press Ctrl+C to shutdown gracefully")
}
