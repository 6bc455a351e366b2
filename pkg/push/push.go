package push

import (
	"context"
	"fmt"
	"log"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"google.golang.org/api/option"
)

// Client wraps Firebase Cloud Messaging functionality
type Client struct {
	messagingClient *messaging.Client
}

// NewClient creates a new push client using the provided credentials file
func NewClient(credentialsFile string) (*Client, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	app, err := firebase.NewApp(ctx, nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	messagingClient, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	log.Println("[Push] Client initialized successfully")
	return &Client{
		messagingClient: messagingClient,
	}, nil
}

// Notification contains the data to send in a push notification
type Notification struct {
	Title    string
	Body     string
	ImageURL string            // Optional notification image
	Data     map[string]string // Custom data payload

	// HighPriority requests immediate delivery with a full-screen intent on
	// Android. Used for incoming-call alerts.
	HighPriority bool
}

// SendToDevice sends a push notification to a specific device token
func (c *Client) SendToDevice(ctx context.Context, token string, n Notification) error {
	message := &messaging.Message{
		Token: token,
		Data:  n.Data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: n.Title,
				Body:  n.Body,
				Icon:  "/icon-192.svg",
			},
		},
	}
	if n.Title != "" || n.Body != "" {
		message.Notification = &messaging.Notification{
			Title:    n.Title,
			Body:     n.Body,
			ImageURL: n.ImageURL,
		}
	}
	if n.HighPriority {
		message.Android = &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				Title:      n.Title,
				Body:       n.Body,
				ChannelID:  "calls",
				Visibility: messaging.VisibilityPublic,
			},
		}
		message.APNS = &messaging.APNSConfig{
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
					CustomData: map[string]interface{}{
						"interruption-level": "time-sensitive",
					},
				},
			},
		}
	}

	response, err := c.messagingClient.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send push message: %w", err)
	}

	log.Printf("[Push] Message sent successfully: %s", response)
	return nil
}

// SendToDevices sends a push notification to multiple device tokens
// Returns a list of tokens that failed to receive the notification
func (c *Client) SendToDevices(ctx context.Context, tokens []string, n Notification) ([]string, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	message := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title:    n.Title,
			Body:     n.Body,
			ImageURL: n.ImageURL,
		},
		Data: n.Data,
		Webpush: &messaging.WebpushConfig{
			Notification: &messaging.WebpushNotification{
				Title: n.Title,
				Body:  n.Body,
				Icon:  "/icon-192.svg",
			},
		},
	}

	response, err := c.messagingClient.SendEachForMulticast(ctx, message)
	if err != nil {
		return nil, fmt.Errorf("failed to send push multicast message: %w", err)
	}

	log.Printf("[Push] Multicast sent: %d success, %d failures", response.SuccessCount, response.FailureCount)

	// Collect failed tokens
	var failedTokens []string
	for i, resp := range response.Responses {
		if !resp.Success {
			failedTokens = append(failedTokens, tokens[i])
			log.Printf("[Push] Failed to send to token %s: %v", tokens[i][:min(20, len(tokens[i]))]+"...", resp.Error)
		}
	}

	return failedTokens, nil
}
