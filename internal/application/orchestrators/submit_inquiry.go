package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"html"
	"log/slog"
	"time"

	"storefront/internal/adapters/email"
	inquiryStore "storefront/internal/adapters/storage/inquiry"
	productStore "storefront/internal/adapters/storage/product"
	domain "storefront/internal/domain/inquiry"
)

// ErrUnknownProduct is returned when a command names a product that does not exist.
var ErrUnknownProduct = errors.New("unknown product")

// ErrInvalidInquiry wraps inquiry field validation failures.
var ErrInvalidInquiry = errors.New("invalid inquiry")

// SubmitInquiryCommand holds a shopper question from the item page.
// PRE: Name, Email and Message are set; ProductID is optional.
type SubmitInquiryCommand struct {
	ProductID string
	Name      string
	Email     string
	Message   string
	VisitorID string
}

// SubmitInquiryResult holds the outcome of a submission.
type SubmitInquiryResult struct {
	ID      string
	Emailed bool
}

// SubmitInquiryDeps are the external dependencies for this orchestrator.
type SubmitInquiryDeps struct {
	InquiryStore inquiryStore.Store
	ProductStore productStore.Store
	Sender       email.Sender
	NotifyTo     string // empty disables the notification email
	GenerateID   func() string
	Now          func() time.Time
}

// ExecuteSubmitInquiry validates and persists an inquiry, then emails the shop.
// PRE: deps.InquiryStore, deps.ProductStore and deps.GenerateID are set
// POST: the inquiry is saved; a failed email is logged and reported as Emailed=false
func ExecuteSubmitInquiry(ctx context.Context, cmd SubmitInquiryCommand, deps SubmitInquiryDeps) (SubmitInquiryResult, error) {
	now := time.Now
	if deps.Now != nil {
		now = deps.Now
	}
	inq := domain.Inquiry{
		ID:        deps.GenerateID(),
		ProductID: cmd.ProductID,
		Name:      cmd.Name,
		Email:     cmd.Email,
		Message:   cmd.Message,
		VisitorID: cmd.VisitorID,
		CreatedAt: now().UTC(),
	}
	if err := inq.Validate(); err != nil {
		return SubmitInquiryResult{}, fmt.Errorf("%w: %w", ErrInvalidInquiry, err)
	}

	productName := "general question"
	if inq.ProductID != "" {
		p, err := deps.ProductStore.GetByID(ctx, inq.ProductID)
		if errors.Is(err, productStore.ErrNotFound) {
			return SubmitInquiryResult{}, ErrUnknownProduct
		}
		if err != nil {
			return SubmitInquiryResult{}, err
		}
		productName = p.Name
	}

	if err := deps.InquiryStore.Save(ctx, inq); err != nil {
		return SubmitInquiryResult{}, err
	}
	result := SubmitInquiryResult{ID: inq.ID}

	if deps.Sender == nil || deps.NotifyTo == "" {
		return result, nil
	}
	msg := email.Message{
		To:      []string{deps.NotifyTo},
		Subject: "Inquiry: " + productName,
		ReplyTo: inq.Email,
		Text:    fmt.Sprintf("%s <%s> asked about %s:\n\n%s", inq.Name, inq.Email, productName, inq.Message),
		HTML: fmt.Sprintf("<p><strong>%s</strong> &lt;%s&gt; asked about %s:</p><p>%s</p>",
			html.EscapeString(inq.Name), html.EscapeString(inq.Email), html.EscapeString(productName), html.EscapeString(inq.Message)),
	}
	if _, err := deps.Sender.Send(ctx, msg); err != nil {
		slog.Warn("inquiry_email_failed", "inquiry_id", inq.ID, "error", err)
		return result, nil
	}
	result.Emailed = true
	return result, nil
}
