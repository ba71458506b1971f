package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/tuanvm/geminichat/pkg/chatclient"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	server := flag.String("server", "http://localhost:3000", "chat service base URL")
	model := flag.String("model", "", "model name (server default when empty)")
	flag.Parse()

	ctx := context.Background()

	client := chatclient.New(*server, chatclient.WithModel(*model))

	if err := client.LoadHistory(ctx); err != nil {
		slog.Warn("could not load history", "error", err)
	}
	for _, line := range client.Render() {
		fmt.Println(line)
	}

	fmt.Printf("session %s — /file <path>, /export, /reset, /quit\n", client.SessionID())

	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "/quit":
			return
		case line == "/reset":
			client.Reset()
			fmt.Println("conversation cleared")
			continue
		case line == "/export":
			name := fmt.Sprintf("chat-%s.txt", client.SessionID())
			if err := os.WriteFile(name, []byte(client.ExportText()+"\n"), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
				continue
			}
			fmt.Println("saved", name)
			continue
		case strings.HasPrefix(line, "/file "):
			path := strings.TrimSpace(strings.TrimPrefix(line, "/file "))
			if err := client.AttachFile(path); err != nil {
				fmt.Fprintf(os.Stderr, "attach failed: %v\n", err)
				continue
			}
			fmt.Println("attached", path)
			continue
		}

		reply, err := client.Send(ctx, line)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println("Bot:", reply)
	}
}
