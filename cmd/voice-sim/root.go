package main

import (
	jwtPkg "MediVoice/pkg/jwt"
	websocketPkg "MediVoice/pkg/websocket"
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

type options struct {
	url      string
	token    string
	locale   string
	route    string
	deviceID string
	userID   string
}

func newRootCmd() *cobra.Command {
	var opts options

	cmd := &cobra.Command{
		Use:   "voice-sim",
		Short: "Drive a voice session from the terminal as if it were a device",
		Long: `Connect to the voice websocket and act as the device side of a session.

Every line typed is sent as a final transcript. Lines starting with ':' are
device events instead:

  :route /scan        report a page change
  :locale es          switch the session language
  :announce <text>    ask the butler to speak and then listen
  :stop               stop auto listening
  :quit               close the session

Speech is printed and acknowledged immediately, navigation is followed.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.url, "url", "ws://localhost:3000/api/v1/voice/ws", "Voice websocket URL")
	cmd.Flags().StringVar(&opts.token, "token", "", "Device access token (minted from JWT_ACCESS_TOKEN_SECRET when empty)")
	cmd.Flags().StringVar(&opts.locale, "locale", "en", "Session locale")
	cmd.Flags().StringVar(&opts.route, "route", "/dashboard", "Starting route")
	cmd.Flags().StringVar(&opts.deviceID, "device", "voice-sim", "Device ID used when minting a token")
	cmd.Flags().StringVar(&opts.userID, "user", "voice-sim-user", "User ID used when minting a token")

	return cmd
}

func run(parent context.Context, opts options) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	token := opts.token
	if token == "" && os.Getenv("JWT_ACCESS_TOKEN_SECRET") != "" {
		minted, _, err := jwtPkg.Sign(map[string]interface{}{
			"id":      opts.deviceID,
			"user_id": opts.userID,
			"name":    "voice-sim",
		}, time.Hour)
		if err != nil {
			return fmt.Errorf("mint token: %w", err)
		}
		token = minted
	}

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	peer, err := websocketPkg.Dial(dialCtx, opts.url, token)
	if err != nil {
		return fmt.Errorf("dial %s: %w", opts.url, err)
	}
	defer peer.Close()

	sim := newSimulator(peer, os.Stdout, opts.route)
	if err := sim.hello(opts.locale); err != nil {
		return err
	}
	fmt.Println(color.CyanString("connected to %s as %s", opts.url, opts.route))

	done := make(chan error, 1)
	go func() { done <- sim.listen() }()

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-done:
			return err
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit, err := sim.input(line)
			if err != nil {
				fmt.Println(color.RedString("send failed: %v", err))
			}
			if quit {
				return nil
			}
		}
	}
}
