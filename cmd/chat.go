package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/agent"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/chatclient"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/domain"
	"github.com/aspro45/OpenGradient-AI-NFT-Launchpad/internal/protocol"
)

var (
	chatRemote  string
	chatMessage string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Chat with the launchpad agent",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatRemote, "remote", "", "WebSocket URL of a running server, e.g. ws://localhost:5000/ws/chat")
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
}

var exitCommands = map[string]bool{
	"exit": true,
	"quit": true,
}

// sender runs one turn, printing it as it streams, and returns the updated
// history.
type sender func(ctx context.Context, line string, history []domain.Message) ([]domain.Message, error)

func runChat(_ *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var send sender
	if chatRemote != "" {
		client, err := chatclient.Dial(ctx, chatRemote)
		if err != nil {
			return err
		}
		defer client.Close()
		send = remoteSender(client)
	} else {
		a, err := buildApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()
		send = localSender(a.loop)
	}

	if chatMessage != "" {
		_, err := send(ctx, chatMessage, nil)
		fmt.Println()
		return err
	}
	return repl(ctx, send)
}

func repl(ctx context.Context, send sender) error {
	fmt.Println("=========================================")
	fmt.Printf("%s Welcome to the AI NFT Launchpad %s\n", logo, logo)
	fmt.Println("Type 'exit' or 'quit' to leave.")
	fmt.Println("=========================================")

	var history []domain.Message
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			fmt.Println("\nLaunchpad Agent: Goodbye! 👋")
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if exitCommands[strings.ToLower(line)] {
			fmt.Println("\nLaunchpad Agent: Goodbye! See you next mint! 👋")
			return nil
		}

		fmt.Print("\nLaunchpad Agent: ")
		updated, err := send(ctx, line, history)
		fmt.Println()
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "[Error]: %v\n", err)
			continue
		}
		history = updated
	}
}

func localSender(loop *agent.Loop) sender {
	return func(ctx context.Context, line string, history []domain.Message) ([]domain.Message, error) {
		turn := loop.Run(ctx, line, history)
		for text := range turn.Text() {
			fmt.Print(text)
		}
		if turn.State() != agent.StateDone {
			// the error chunk has already been printed
			return history, nil
		}
		return turn.Messages(), nil
	}
}

func remoteSender(client *chatclient.Client) sender {
	return func(ctx context.Context, line string, history []domain.Message) ([]domain.Message, error) {
		updated, err := client.Chat(ctx, line, history, func(f protocol.Frame) {
			if f.Type == protocol.TypeDone || f.Type == protocol.TypeRunStarted {
				return
			}
			fmt.Print(frameChunk(f).Render())
		})
		if errors.Is(err, chatclient.ErrTurnFailed) {
			// printed from the error frame
			return history, nil
		}
		return updated, err
	}
}

// frameChunk maps a server frame back to the chunk it was sent for.
func frameChunk(f protocol.Frame) agent.Chunk {
	kind := agent.ChunkText
	switch f.Type {
	case protocol.TypeProgress:
		kind = agent.ChunkProgress
	case protocol.TypeNotice:
		kind = agent.ChunkNotice
	case protocol.TypeError:
		kind = agent.ChunkError
	}
	return agent.Chunk{Kind: kind, Text: f.Text}
}
