package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/parleychat/parley-server/internal/auth"
	"github.com/parleychat/parley-server/internal/client"
	"github.com/parleychat/parley-server/internal/log"
	"github.com/parleychat/parley-server/internal/proto"
	"github.com/parleychat/parley-server/internal/room"
)

func chatCmd() *cobra.Command {
	var (
		server   string
		username string
		password string
		roomID   string
		create   bool
		logLevel string
	)

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Connect to a server and chat from the terminal",
		Long: `Connect to a parley server and chat from the terminal.

Without --user the client connects as a guest. Lines typed on stdin
are sent as messages; lines starting with / are commands:

  /create        open a new room
  /join <id>     join a room by id
  /leave         leave the current room
  /quit          disconnect and exit

Examples:
  parley chat
  parley chat --server http://localhost:8080 --join 3f2a...
  parley chat --user alice --pass secret --create`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(server, username, password, roomID, create, logLevel)
		},
	}

	cmd.Flags().StringVarP(&server, "server", "s", "http://localhost:8080", "server base URL")
	cmd.Flags().StringVarP(&username, "user", "u", "", "username (guest access when empty)")
	cmd.Flags().StringVarP(&password, "pass", "p", "", "password")
	cmd.Flags().StringVarP(&roomID, "join", "j", "", "room id to join on connect")
	cmd.Flags().BoolVar(&create, "create", false, "create a new room on connect")
	cmd.Flags().StringVar(&logLevel, "log-level", "warn", "log level")

	return cmd
}

func runChat(server, username, password, roomID string, create bool, logLevel string) error {
	logger := log.New(logLevel)

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	token, err := fetchToken(ctx, server, username, password)
	if err != nil {
		return err
	}
	userID, name, err := identityFromToken(token)
	if err != nil {
		return err
	}

	session := client.NewSession(userID, logger)
	session.OnRoomChange(func(id string) {
		if id == "" {
			fmt.Println("* left room")
			return
		}
		fmt.Printf("* now in room %s (share this id to invite others)\n", id)
	})
	session.OnMessage(func(m room.ChatMessage) {
		fmt.Printf("[%s] %s\n", m.UserID, m.Body)
	})

	wsURL := strings.Replace(server, "http", "ws", 1) + "/ws"
	conn, err := client.Dial(ctx, wsURL, token, session, logger)
	if err != nil {
		return err
	}
	defer conn.Close()
	conn.OnServerError = func(e proto.Error) {
		fmt.Printf("! %s: %s\n", e.Code, e.Msg)
	}

	fmt.Printf("Connected to %s as %s\n", server, name)

	go func() {
		defer cancel()
		if err := conn.Listen(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Debug().Err(err).Msg("listen stopped")
		}
	}()

	if create {
		if err := conn.CreateRoom(ctx); err != nil {
			return err
		}
	} else if roomID != "" {
		if err := conn.JoinRoom(ctx, roomID); err != nil {
			return err
		}
	}

	inputLoop(ctx, cancel, conn, session)
	return nil
}

func inputLoop(ctx context.Context, cancel context.CancelFunc, conn *client.Conn, session *client.Session) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if strings.HasPrefix(text, "/") {
				if !handleCommand(ctx, cancel, conn, session, text) {
					return
				}
				continue
			}
			if err := conn.SendMessage(ctx, text); err != nil {
				if errors.Is(err, client.ErrNotInRoom) {
					fmt.Println("! join a room first (/create or /join <id>)")
					continue
				}
				fmt.Printf("! send failed: %v\n", err)
				return
			}
		}
	}
}

// handleCommand runs a slash command; reports false when the loop
// should exit.
func handleCommand(ctx context.Context, cancel context.CancelFunc, conn *client.Conn, session *client.Session, text string) bool {
	cmd, arg, _ := strings.Cut(text, " ")
	switch cmd {
	case "/create":
		if err := conn.CreateRoom(ctx); err != nil {
			fmt.Printf("! create failed: %v\n", err)
		}
	case "/join":
		arg = strings.TrimSpace(arg)
		if arg == "" {
			fmt.Println("! usage: /join <room id>")
			return true
		}
		if err := conn.JoinRoom(ctx, arg); err != nil {
			fmt.Printf("! join failed: %v\n", err)
		}
	case "/leave":
		id := session.RoomID()
		if id == "" {
			fmt.Println("! not in a room")
			return true
		}
		if err := conn.LeaveRoom(ctx, id); err != nil {
			fmt.Printf("! leave failed: %v\n", err)
		}
	case "/quit":
		cancel()
		return false
	default:
		fmt.Printf("! unknown command %s\n", cmd)
	}
	return true
}

// fetchToken logs in over the REST API, or takes a guest token when no
// username is given.
func fetchToken(ctx context.Context, server, username, password string) (string, error) {
	var (
		endpoint string
		body     io.Reader
	)
	if username == "" {
		endpoint = server + "/api/guest"
	} else {
		endpoint = server + "/api/login"
		payload, err := json.Marshal(map[string]string{"username": username, "password": password})
		if err != nil {
			return "", err
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("auth failed: %s", resp.Status)
	}

	var authResp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&authResp); err != nil {
		return "", fmt.Errorf("decode auth response: %w", err)
	}
	return authResp.Token, nil
}

// identityFromToken reads the user id and display name out of the JWT
// without verifying it; the server is the authority, the client only
// needs them for labelling.
func identityFromToken(token string) (userID, name string, err error) {
	claims := &auth.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return "", "", fmt.Errorf("parse token: %w", err)
	}
	return claims.UserID, claims.Username, nil
}
