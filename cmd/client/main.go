// Command client is an interactive terminal client over the real-time channel.
// Type "receiver: text" to send; incoming messages are printed as they arrive.
package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"messenger/infrastructure/rest"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/gookit/color"
	"github.com/gorilla/websocket"
	"github.com/mama165/sdk-go/logs"
	"golang.org/x/term"
)

// Exit codes for the client application.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerAddress string `env:"MESSENGER_HTTP_ADDR,default=http://localhost:8080"`
	Email         string `env:"MESSENGER_EMAIL,required=true"`
	Password      string `env:"MESSENGER_PASSWORD"`
	LogLevel      string `env:"LOG_LEVEL,default=WARN"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	// 1. Load configuration from environment variables.
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)
	if config.Password == "" {
		password, err := promptPassword(config.Email)
		if err != nil {
			return exitConfig, err
		}
		config.Password = password
	}

	// 2. Setup context to handle termination signals (Ctrl+C).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Obtain a token, then open the channel with it.
	token, err := login(ctx, config)
	if err != nil {
		return exitRuntime, err
	}
	conn, err := dial(ctx, config.ServerAddress, token)
	if err != nil {
		return exitRuntime, err
	}
	defer func() {
		log.Info("Closing connection...")
		_ = conn.Close()
	}()

	fmt.Println(color.New(color.FgGreen).Render(
		fmt.Sprintf(">>> Connected to %s as %s (Ctrl+C to quit)", config.ServerAddress, config.Email)))

	// 4. Frames are printed by a dedicated reader; stdin drives the writes.
	readErr := make(chan error, 1)
	go func() { readErr <- printFrames(conn) }()
	go sendLines(conn, log)

	select {
	case <-ctx.Done():
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		return exitOK, nil
	case err = <-readErr:
		if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
			return exitOK, nil
		}
		return exitRuntime, fmt.Errorf("channel error: %w", err)
	}
}

func login(ctx context.Context, config Config) (string, error) {
	body, err := json.Marshal(map[string]string{"email": config.Email, "password": config.Password})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, config.ServerAddress+"/login", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	res, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer res.Body.Close()

	var payload struct {
		Token   string `json:"token"`
		Message string `json:"message"`
	}
	if err = json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("login response unreadable: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login rejected (%d): %s", res.StatusCode, payload.Message)
	}
	return payload.Token, nil
}

// promptPassword reads the password without echoing it.
func promptPassword(email string) (string, error) {
	fmt.Printf("Password for %s: ", email)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("could not read password: %w", err)
	}
	return string(password), nil
}

func dial(ctx context.Context, address, token string) (*websocket.Conn, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, err
	}
	u.Scheme = strings.Replace(u.Scheme, "http", "ws", 1)
	u.Path = "/ws"

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), header)
	if err != nil {
		return nil, fmt.Errorf("could not open channel at %s: %w", u, err)
	}
	return conn, nil
}

func printFrames(conn *websocket.Conn) error {
	for {
		var env rest.Envelope
		if err := conn.ReadJSON(&env); err != nil {
			return err
		}
		switch env.Type {
		case rest.TypeReceiveMessage:
			var m rest.MessagePayload
			if json.Unmarshal(env.Payload, &m) == nil {
				fmt.Printf("%s %s: %s\n",
					color.New(color.FgGray).Render("["+m.Timestamp.Local().Format(time.TimeOnly)+"]"),
					color.New(color.FgCyan).Render(m.Sender),
					m.Text)
			}
		case rest.TypeMessageSent:
			var ack rest.MessageSentPayload
			if json.Unmarshal(env.Payload, &ack) == nil {
				fmt.Println(color.New(color.FgGray).Render("sent " + ack.Ref))
			}
		case rest.TypeError, rest.TypeAuthError:
			var e rest.ErrorPayload
			if json.Unmarshal(env.Payload, &e) == nil {
				fmt.Println(color.New(color.FgRed).Render(fmt.Sprintf("%s: %s", e.Code, e.Message)))
			}
		}
	}
}

// sendLines turns every "receiver: text" line of stdin into a send_message frame.
func sendLines(conn *websocket.Conn, log *slog.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for n := 1; scanner.Scan(); n++ {
		receiver, text, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			fmt.Println(color.New(color.FgYellow).Render("usage: receiver: text"))
			continue
		}
		env, err := rest.NewEnvelope(rest.TypeSendMessage, rest.SendMessagePayload{
			Receiver: strings.TrimSpace(receiver),
			Text:     strings.TrimSpace(text),
			Ref:      fmt.Sprintf("#%d", n),
		})
		if err != nil {
			log.Error("Frame encoding failed", "error", err)
			continue
		}
		// Only this goroutine writes data frames
		if err = conn.WriteJSON(env); err != nil {
			log.Warn("Send failed", "error", err)
			return
		}
	}
}
