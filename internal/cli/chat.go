package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newChatCmd() *cobra.Command {
	var receiverID int64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "chat <room>",
		Short: "Join a chat room over a live websocket",
		Long: `Connect to a chat room and exchange messages in real-time.

Each line typed on stdin is sent to the receiver given with --to. Incoming
frames are either accepted messages broadcast to the room or error frames
explaining why a send was refused.

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.ParticipantID == 0 {
				return fmt.Errorf("acting participant required: set --as or TLCHAT_PARTICIPANT")
			}
			if receiverID == 0 {
				return fmt.Errorf("receiver required: set --to")
			}
			return runChat(args[0], receiverID, jsonOutput)
		},
	}

	cmd.Flags().Int64Var(&receiverID, "to", 0, "Receiver participant id")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output frames as JSON lines")

	return cmd
}

// chatFrame covers both frame shapes the server sends on a chat socket
type chatFrame struct {
	Type       string `json:"type"`
	Message    string `json:"message"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
	Timestamp  string `json:"timestamp"`
	Error      string `json:"error"`
}

// chatEnvelope is the frame sent for each typed line
type chatEnvelope struct {
	Message    string `json:"message"`
	SenderID   int64  `json:"sender_id"`
	ReceiverID int64  `json:"receiver_id"`
}

func runChat(room string, receiverID int64, jsonOutput bool) error {
	wsURL, err := chatSocketURL(cfg.ServerURL, room)
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	defer func() { _ = conn.Close() }()

	if !jsonOutput {
		fmt.Printf("Connected to room %s as participant %d. Type to send, Ctrl+C to quit.\n", room, cfg.ParticipantID)
	}

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	readErr := make(chan error, 1)
	go func() {
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				readErr <- err
				return
			}
			printFrame(data, jsonOutput)
		}
	}()

	// Stdin lines become envelopes
	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line != "" {
				lines <- line
			}
		}
		close(lines)
	}()

	for {
		select {
		case <-sigCh:
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return nil
		case err := <-readErr:
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("connection closed: %w", err)
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			env := chatEnvelope{
				Message:    line,
				SenderID:   cfg.ParticipantID,
				ReceiverID: receiverID,
			}
			if err := conn.WriteJSON(env); err != nil {
				return fmt.Errorf("send failed: %w", err)
			}
		}
	}
}

func chatSocketURL(serverURL, room string) (string, error) {
	u, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/ws/chat/" + room
	return u.String(), nil
}

func printFrame(data []byte, jsonOutput bool) {
	if jsonOutput {
		fmt.Println(string(data))
		return
	}

	var frame chatFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		fmt.Println(string(data))
		return
	}

	if frame.Error != "" {
		fmt.Printf("! %s\n", frame.Error)
		return
	}
	fmt.Printf("[%s] %d -> %d: %s\n", frame.Timestamp, frame.SenderID, frame.ReceiverID, frame.Message)
}
