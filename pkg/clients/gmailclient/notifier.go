package gmailclient

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"google.golang.org/api/gmail/v1"

	"github.com/mkleiva/dugnadsplan/pkg/db"
	"github.com/mkleiva/dugnadsplan/pkg/notify"
)

const emailInterval = 3 * time.Second

// FamilyContacts resolves a family to its notification address
type FamilyContacts interface {
	GetFamily(ctx context.Context, familyID string) (*db.Family, error)
}

// Notifier delivers core notifications as email via Gmail. It implements
// notify.Notifier; delivery failures are returned to the caller, which
// treats them as warnings per the fire-and-forget contract.
type Notifier struct {
	Client   *Client
	Contacts FamilyContacts
}

func (n *Notifier) Notify(ctx context.Context, notification notify.Notification) error {
	family, err := n.Contacts.GetFamily(ctx, notification.FamilyID)
	if err != nil {
		return fmt.Errorf("failed to resolve family contact: %w", err)
	}
	if family == nil || family.ContactEmail == "" {
		return fmt.Errorf("family %s has no contact email", notification.FamilyID)
	}

	return n.Client.SendEmail(family.ContactEmail, notification.Title, notification.Body)
}

// SendEmail sends an email with the specified subject and body.
// Throttles requests to respect Gmail API rate limits.
func (c *Client) SendEmail(to, subject, body string) error {
	c.sendMutex.Lock()
	defer c.sendMutex.Unlock()

	if !c.lastSendTime.IsZero() {
		elapsed := time.Since(c.lastSendTime)
		if elapsed < emailInterval {
			time.Sleep(emailInterval - elapsed)
		}
	}

	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", c.sender, to, subject, body)
	encodedMessage := base64.URLEncoding.EncodeToString([]byte(message))

	gmailMessage := &gmail.Message{
		Raw: encodedMessage,
	}

	_, err := c.service.Users.Messages.Send("me", gmailMessage).Do()
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	c.lastSendTime = time.Now()

	return nil
}
