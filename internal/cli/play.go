package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

func newPlayCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "play",
		Short: "Connect to the game and play interactively",
		Long: `Open a game session. Each line you type is sent as a command; type
"help" once connected for the command list.

A saved token resumes your last login. Press Ctrl+C or Ctrl+D to leave.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return play(ctx, cfg.SocketURL(), cfg.Token, os.Stdin, NewOutput(cfg.Output), cfg)
		},
	}
}

func play(ctx context.Context, url, token string, in io.Reader, out *Output, tokens TokenStore) error {
	sock, welcome, err := Dial(ctx, url)
	if err != nil {
		return err
	}
	out.Print(welcome)

	received := make(chan error, 1)
	go func() {
		received <- readLoop(sock, out, tokens)
	}()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	if token != "" {
		err = sock.Resume(token)
	}

loop:
	for err == nil {
		select {
		case <-ctx.Done():
			break loop
		case readErr := <-received:
			_ = sock.Close()
			return closeError(readErr)
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			if line = strings.TrimSpace(line); line != "" {
				err = sock.Command(line)
			}
		}
	}

	// Closing ends the reader; wait so nothing prints after we return
	_ = sock.Close()
	<-received
	return err
}

func readLoop(sock *Socket, out *Output, tokens TokenStore) error {
	for {
		msg, err := sock.Next(0)
		if err != nil {
			return err
		}
		if err := remember(tokens, msg); err != nil {
			out.PrintError(err)
		}
		out.Print(msg)
	}
}

func newSendCmd() *cobra.Command {
	var wait time.Duration

	cmd := &cobra.Command{
		Use:   "send <command...>",
		Short: "Send a single command and print the replies",
		Example: `  wordcraft send register alice secret1
  wordcraft send look
  wordcraft send --wait 2s yell hello everyone`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return sendOnce(cmd.Context(), cfg.SocketURL(), cfg.Token, strings.Join(args, " "), wait, NewOutput(cfg.Output), cfg)
		},
	}

	cmd.Flags().DurationVar(&wait, "wait", 500*time.Millisecond, "How long to wait for further replies")

	return cmd
}

// sendOnce resumes the saved login if any, sends one line and prints
// replies until the server goes quiet for the wait duration
func sendOnce(ctx context.Context, url, token, line string, wait time.Duration, out *Output, tokens TokenStore) error {
	sock, _, err := Dial(ctx, url)
	if err != nil {
		return err
	}
	defer func() { _ = sock.Close() }()

	if token != "" {
		if err := sock.Resume(token); err != nil {
			return err
		}
		reply, err := sock.Next(10 * time.Second)
		if err != nil {
			return closeError(err)
		}
		if reply.Type == "error" {
			_ = tokens.ClearToken()
			return errors.New(reply.Message)
		}
		if err := remember(tokens, reply); err != nil {
			return err
		}
	}

	if err := sock.Command(line); err != nil {
		return err
	}
	for {
		msg, err := sock.Next(wait)
		if errors.Is(err, ErrQuiet) {
			return nil
		}
		if err != nil {
			return closeError(err)
		}
		if err := remember(tokens, msg); err != nil {
			return err
		}
		out.Print(msg)
	}
}
