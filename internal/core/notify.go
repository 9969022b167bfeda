package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/minitex/ipregister/internal/model"
)

// Subject and preamble of every registrar notification. The wording is part
// of the agreement with participating vendors; do not reword casually.
const (
	notificationSubject  = "IP address changes from Minitex participants"
	notificationPreamble = "This email is official notification of changes to the IP address for the institution listed. This form is generated by Minitex as a convenience to its participants. All correspondence should be with the contact person listed below."
)

const sectionRule = "-------------------------------------"

// Mailer is the outbound mail transport. The SMTP implementation lives in
// internal/mail; tests substitute stubs.
type Mailer interface {
	Send(ctx context.Context, to string, bcc []string, subject, body string) error
}

// Message is a fully composed notification ready for the transport.
type Message struct {
	To      string   `json:"to"`
	BCC     []string `json:"bcc"`
	Subject string   `json:"subject"`
	Body    string   `json:"body"`
}

// Compose builds the deterministic plain-text notification for a change:
// a contact header block, an optional comment block, and one block each for
// confirmed, added, and removed ranges (emitted only when non-empty). The
// recipient list is resolved from the change's registrar selection, with
// the operator address appended.
func (s *ChangeService) Compose(ctx context.Context, change *model.IpChange) (*Message, error) {
	org, err := s.orgs.GetByID(ctx, change.OrganizationID)
	if err != nil {
		return nil, err
	}

	var body strings.Builder
	body.WriteString(notificationPreamble)
	body.WriteString("\n\n")
	body.WriteString(sectionRule + "\n")
	fmt.Fprintf(&body, "Library Name / Institution: %s\n", org.Label)
	fmt.Fprintf(&body, "Contact Name: %s %s\n", change.ContactGiven, change.ContactFamily)
	fmt.Fprintf(&body, "Contact Email: %s\n", change.ContactEmail)
	fmt.Fprintf(&body, "Contact Phone: %s\n", change.ContactPhone)

	if change.Comment != "" {
		body.WriteString(sectionRule + "\n")
		body.WriteString("Additional Comments:\n")
		body.WriteString(sectionRule + "\n")
		fmt.Fprintf(&body, "  %s\n", change.Comment)
	}

	// Pre-existing ranges being reaffirmed: the confirm set minus anything
	// the change itself created.
	var confirmIDs []string
	for _, id := range change.ConfirmRangeIDs {
		if !slices.Contains(change.NewRangeIDs, id) {
			confirmIDs = append(confirmIDs, id)
		}
	}

	sections := []struct {
		heading string
		verb    string
		ids     []string
	}{
		{"Confirm IP Ranges:", "Confirm range", confirmIDs},
		{"Add IP Ranges:", "Add range", change.NewRangeIDs},
		{"Remove IP Ranges:", "Remove range", change.RemoveRangeIDs},
	}
	for _, section := range sections {
		// Resolve before emitting the heading: a range deleted since the
		// draft was saved is omitted, and a section left empty by omissions
		// disappears entirely.
		var titles []string
		for _, rangeID := range section.ids {
			r, err := s.ranges.GetByID(ctx, rangeID)
			if errors.Is(err, ErrNotFound) {
				zerolog.Ctx(ctx).Warn().Str("ip_change", change.ID).Str("ip_range", rangeID).
					Msg("referenced ip range no longer exists, omitting from notification")
				continue
			}
			if err != nil {
				return nil, err
			}
			titles = append(titles, r.Title)
		}
		if len(titles) == 0 {
			continue
		}
		body.WriteString(sectionRule + "\n")
		body.WriteString(section.heading + "\n")
		body.WriteString(sectionRule + "\n")
		for _, title := range titles {
			fmt.Fprintf(&body, "  %s: %s (%s)\n", section.verb, title, org.Label)
		}
	}

	bcc, err := s.recipients(ctx, change)
	if err != nil {
		return nil, err
	}

	return &Message{
		To:      change.ContactEmail,
		BCC:     bcc,
		Subject: notificationSubject,
		Body:    body.String(),
	}, nil
}

// Send dispatches the notification for the change. A suppressed change
// succeeds without touching the transport. A completed change is refused so
// repeated submissions can never notify vendors twice.
func (s *ChangeService) Send(ctx context.Context, change *model.IpChange) error {
	if change.Completed {
		return fmt.Errorf("ip change %s: %w", change.ID, ErrAlreadyCompleted)
	}
	if change.SuppressNotification {
		return nil
	}

	msg, err := s.Compose(ctx, change)
	if err != nil {
		return err
	}
	if err := s.mailer.Send(ctx, msg.To, msg.BCC, msg.Subject, msg.Body); err != nil {
		return fmt.Errorf("%w: %v", ErrDispatchFailed, err)
	}
	return nil
}

// recipients resolves the BCC list from the selected registrars, collapsed
// by registrar id (two registrars sharing a mailbox are both listed), with
// the operator address appended when configured. A registrar deleted since
// the draft was saved is dropped from the list.
func (s *ChangeService) recipients(ctx context.Context, change *model.IpChange) ([]string, error) {
	var bcc []string
	for _, registrarID := range dedup(change.RegistrarIDs) {
		registrar, err := s.registrars.GetByID(ctx, registrarID)
		if errors.Is(err, ErrNotFound) {
			zerolog.Ctx(ctx).Warn().Str("ip_change", change.ID).Str("ip_registrar", registrarID).
				Msg("selected registrar no longer exists, omitting from recipients")
			continue
		}
		if err != nil {
			return nil, err
		}
		bcc = append(bcc, registrar.Email)
	}
	if s.operatorBCC != "" {
		bcc = append(bcc, s.operatorBCC)
	}
	return bcc, nil
}
