package inquiry

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// MaxMessageLength is the maximum length of an inquiry message.
const MaxMessageLength = 4000

// Inquiry is a shopper question about a product, sent from the item page.
// PRE: Name, Email and Message are set; ProductID may be empty for general questions.
// INVARIANT: Email is stored lower-cased in its bare address form.
type Inquiry struct {
	ID        string
	ProductID string
	Name      string
	Email     string
	Message   string
	VisitorID string
	CreatedAt time.Time
}

// Validate checks required fields and normalises the email address.
// PRE: none
// POST: returns error describing the first violation; Email is normalised on success
func (i *Inquiry) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return errors.New("name is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(i.Email))
	if err != nil {
		return errors.New("a valid email is required")
	}
	i.Email = strings.ToLower(addr.Address)
	if strings.TrimSpace(i.Message) == "" {
		return errors.New("message is required")
	}
	if len(i.Message) > MaxMessageLength {
		return errors.New("message exceeds maximum length")
	}
	return nil
}
