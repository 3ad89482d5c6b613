// Package mailbox fetches email over IMAP. Harvest runs pull starred and
// recent mail to build the labeled training corpus; update runs pull a
// recent window for classification. All fetches are read-only, the mailbox
// is never mutated.
package mailbox

import (
	"crypto/tls"
	"fmt"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"go.uber.org/zap"

	"github.com/hquach/intern-tracker/internal/types"
)

// Config holds IMAP connection settings.
type Config struct {
	Host        string // host:port, e.g. imap.gmail.com:993
	Email       string
	Password    string // app password; ignored when AccessToken is set
	AccessToken string // OAuth2 bearer token, sent via XOAUTH2
	Folder      string // mailbox to read, usually INBOX
}

// Client fetches mail from one mailbox. Each fetch dials, authenticates,
// selects the folder read-only and logs out; connections are not reused
// across runs of a batch command.
type Client struct {
	cfg    Config
	logger *zap.Logger
}

// New builds a mailbox client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.Folder == "" {
		cfg.Folder = "INBOX"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{cfg: cfg, logger: logger}
}

// FetchStarred returns every flagged email in the folder. Starred mail is
// the positive (Submitted) side of the training corpus.
func (c *Client) FetchStarred() ([]types.RawEmail, error) {
	criteria := imap.NewSearchCriteria()
	criteria.WithFlags = []string{imap.FlaggedFlag}
	return c.fetch(criteria, 0)
}

// FetchRecent returns up to limit recent emails that are not flagged; the
// starred ones are harvested separately so the two label sets stay disjoint.
func (c *Client) FetchRecent(limit int) ([]types.RawEmail, error) {
	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.FlaggedFlag}
	return c.fetch(criteria, limit)
}

// FetchSince returns emails received on or after since, up to max.
func (c *Client) FetchSince(since time.Time, max int) ([]types.RawEmail, error) {
	criteria := imap.NewSearchCriteria()
	criteria.Since = since
	return c.fetch(criteria, max)
}

// connect dials the server and authenticates, preferring XOAUTH2 when an
// access token is available.
func (c *Client) connect() (*client.Client, error) {
	conn, err := client.DialTLS(c.cfg.Host, &tls.Config{})
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", c.cfg.Host, err)
	}

	if c.cfg.AccessToken != "" {
		if err := conn.Authenticate(newXOAuth2Client(c.cfg.Email, c.cfg.AccessToken)); err != nil {
			conn.Logout()
			return nil, fmt.Errorf("xoauth2 authenticate: %w", err)
		}
	} else if err := conn.Login(c.cfg.Email, c.cfg.Password); err != nil {
		conn.Logout()
		return nil, fmt.Errorf("login %s: %w", c.cfg.Email, err)
	}

	return conn, nil
}

func (c *Client) fetch(criteria *imap.SearchCriteria, limit int) ([]types.RawEmail, error) {
	conn, err := c.connect()
	if err != nil {
		return nil, err
	}
	defer conn.Logout()

	mbox, err := conn.Select(c.cfg.Folder, true)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", c.cfg.Folder, err)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	seqNums, err := conn.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}
	if limit > 0 && len(seqNums) > limit {
		// Sequence numbers ascend with age, so the tail is the newest mail.
		seqNums = seqNums[len(seqNums)-limit:]
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(seqNums...)

	// Peek keeps the fetch from marking everything as read.
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, len(seqNums))
	done := make(chan error, 1)
	go func() {
		done <- conn.Fetch(seqset, items, messages)
	}()

	var emails []types.RawEmail
	for msg := range messages {
		email, err := rawEmailFrom(msg, mbox.UidValidity, section)
		if err != nil {
			c.logger.Warn("skipping unreadable message",
				zap.Uint32("uid", msg.Uid), zap.Error(err))
			continue
		}
		emails = append(emails, email)
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("fetch messages: %w", err)
	}

	c.logger.Info("fetched mailbox window",
		zap.String("folder", c.cfg.Folder),
		zap.Int("messages", len(emails)))
	return emails, nil
}

// rawEmailFrom flattens one IMAP message. The id pairs the folder's
// UIDVALIDITY with the message UID, which stays stable across runs for as
// long as the server keeps the folder epoch.
func rawEmailFrom(msg *imap.Message, uidValidity uint32, section *imap.BodySectionName) (types.RawEmail, error) {
	email := types.RawEmail{
		ID: fmt.Sprintf("%d-%d", uidValidity, msg.Uid),
	}
	if env := msg.Envelope; env != nil {
		email.Subject = env.Subject
		if !env.Date.IsZero() {
			email.Date = env.Date.Format(time.RFC1123Z)
		}
		if len(env.From) > 0 {
			email.Sender = formatAddress(env.From[0])
		}
	}

	r := msg.GetBody(section)
	if r == nil {
		return email, fmt.Errorf("message %s has no body section", email.ID)
	}
	body, err := readBody(r)
	if err != nil {
		return email, fmt.Errorf("message %s: %w", email.ID, err)
	}
	email.Body = body
	return email, nil
}

// formatAddress renders a From header the way mail clients display it.
func formatAddress(addr *imap.Address) string {
	if addr.PersonalName != "" {
		return fmt.Sprintf("%s <%s>", addr.PersonalName, addr.Address())
	}
	return addr.Address()
}
