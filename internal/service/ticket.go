// Package service implements the ticket engine: authenticated creation,
// fetch, and update of tickets over the Trac-compatible schema, with
// field-level history recorded in the append-only change log and grouped
// into comments on read.
package service

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/frackdev/frack/internal/db"
	ferrors "github.com/frackdev/frack/internal/errors"
	"github.com/frackdev/frack/internal/events"
	"github.com/frackdev/frack/internal/models"
)

// TicketService orchestrates ticket operations. Every mutation runs
// inside a single database transaction; any failure rolls the whole
// operation back.
//
// The clock is a field so tests can pin timestamps, including forcing
// two updates onto the same integer second to exercise the documented
// comment-grouping collapse.
type TicketService struct {
	db       *sql.DB
	exchange *events.Exchange
	now      func() time.Time
}

// NewTicketService creates a TicketService. The exchange may be nil, in
// which case no events are emitted.
func NewTicketService(database *sql.DB, exchange *events.Exchange) *TicketService {
	return &TicketService{
		db:       database,
		exchange: exchange,
		now:      time.Now,
	}
}

// TicketEvent is the payload emitted for ticket.created and
// ticket.updated events.
type TicketEvent struct {
	Ticket int64  `json:"ticket"`
	Author string `json:"author"`
}

// AttachmentMeta carries caller-supplied attachment metadata.
type AttachmentMeta struct {
	Filename    string
	Size        int64
	Description string
	IP          string
}

// Create creates a ticket from a field map and returns the assigned id.
//
// The acting user becomes the reporter and must be non-empty. Status
// cannot be supplied; new tickets are always "new". Summary is required.
// Keys outside the normal-field set are stored as custom fields; if any
// custom-field insert fails the ticket row is rolled back with it.
func (s *TicketService) Create(ctx context.Context, author string, fields map[string]string) (int64, error) {
	if author == "" {
		return 0, ferrors.Unauthorized("you must be logged in to create tickets")
	}
	if fields["status"] != "" {
		return 0, ferrors.Validation("status must be new")
	}
	if fields["summary"] == "" {
		return 0, ferrors.Validation("summary is required")
	}

	now := s.now().Unix()
	t := &models.Ticket{
		Reporter:   author,
		Time:       now,
		Changetime: now,
		Status:     models.StatusNew,
	}
	custom := make(map[string]string)
	for name, value := range fields {
		if name == "status" {
			continue
		}
		if models.IsEditableField(name) {
			t.SetField(name, value)
		} else {
			custom[name] = value
		}
	}

	var id int64
	err := db.InTx(ctx, s.db, func(tx *sql.Tx) error {
		tickets := db.NewTicketRepo(tx)
		var err error
		if id, err = tickets.Insert(ctx, t); err != nil {
			return err
		}
		for name, value := range custom {
			if err := tickets.InsertCustom(ctx, id, name, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return 0, internalUnless(err, "failed to create ticket")
	}

	s.emit(events.TicketCreated, TicketEvent{Ticket: id, Author: author})
	return id, nil
}

// Fetch assembles the composite read view of a ticket: normal columns,
// custom fields, attachments, and the change log grouped into comments.
//
// The four reads are independent and run concurrently. They are not
// snapshot-isolated against each other; a concurrent writer can produce
// slight skew between them, which callers tolerate.
func (s *TicketService) Fetch(ctx context.Context, id int64) (*models.TicketDetail, error) {
	var (
		ticket      *models.Ticket
		custom      map[string]string
		changes     []models.ChangeRecord
		attachments []models.Attachment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := db.NewTicketRepo(s.db).Get(gctx, id)
		if err != nil {
			return err
		}
		if t == nil {
			return ferrors.NotFound("no such ticket: %d", id)
		}
		ticket = t
		return nil
	})
	g.Go(func() error {
		var err error
		custom, err = db.NewTicketRepo(s.db).GetCustom(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		changes, err = db.NewChangeLogRepo(s.db).ListByTicket(gctx, id)
		return err
	})
	g.Go(func() error {
		var err error
		attachments, err = db.NewAttachmentRepo(s.db).ListByTicket(gctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, internalUnless(err, "failed to fetch ticket %d", id)
	}

	if attachments == nil {
		attachments = []models.Attachment{}
	}
	return &models.TicketDetail{
		Ticket:      *ticket,
		Custom:      custom,
		Attachments: attachments,
		Comments:    GroupComments(id, changes),
	}, nil
}

// Update applies field changes to a ticket and records its history in
// one atomic transaction.
//
// Fields equal to their current value produce no change records. A
// comment change record is always appended, even with empty text and
// zero field diffs, and changetime always advances. If replyTo is
// non-empty the new comment is stored as a reply to that comment number.
func (s *TicketService) Update(ctx context.Context, author string, id int64, fields map[string]string, comment, replyTo string) error {
	if author == "" {
		return ferrors.Unauthorized("you must be logged in to update tickets")
	}

	now := s.now().Unix()
	err := db.InTx(ctx, s.db, func(tx *sql.Tx) error {
		tickets := db.NewTicketRepo(tx)
		changelog := db.NewChangeLogRepo(tx)

		current, err := tickets.Get(ctx, id)
		if err != nil {
			return err
		}
		if current == nil {
			return ferrors.NotFound("no such ticket: %d", id)
		}
		currentCustom, err := tickets.GetCustom(ctx, id)
		if err != nil {
			return err
		}

		// Normal fields: record a change per field that actually
		// differs, write every supplied value, and always advance
		// changetime.
		set := make(map[string]string)
		for _, name := range models.EditableFields {
			newValue, ok := fields[name]
			if !ok {
				continue
			}
			set[name] = newValue
			if oldValue := current.Field(name); oldValue != newValue {
				rec := &models.ChangeRecord{
					Ticket: id, Time: now, Author: author,
					Field: name, OldValue: oldValue, NewValue: newValue,
				}
				if err := changelog.Append(ctx, rec); err != nil {
					return err
				}
			}
		}
		if err := tickets.UpdateFields(ctx, id, set, now); err != nil {
			return err
		}

		// Custom fields: upsert, recording a change only when the value
		// differs from the prior one (absent counts as empty).
		for name, newValue := range fields {
			if models.IsEditableField(name) {
				continue
			}
			if err := tickets.UpsertCustom(ctx, id, name, newValue); err != nil {
				return err
			}
			if oldValue := currentCustom[name]; oldValue != newValue {
				rec := &models.ChangeRecord{
					Ticket: id, Time: now, Author: author,
					Field: name, OldValue: oldValue, NewValue: newValue,
				}
				if err := changelog.Append(ctx, rec); err != nil {
					return err
				}
			}
		}

		// The comment entry, appended even when the text is empty so
		// every update surfaces as a commentable unit. The number comes
		// from scanning existing numbers for the max numeric tail; the
		// transaction's writer serialization is what keeps two updates
		// from computing the same number.
		numbers, err := changelog.CommentNumbers(ctx, id)
		if err != nil {
			return err
		}
		number := strconv.Itoa(NextCommentNumber(numbers))
		if replyTo != "" {
			number = replyTo + "." + number
		}
		return changelog.Append(ctx, &models.ChangeRecord{
			Ticket: id, Time: now, Author: author,
			Field: models.FieldComment, OldValue: number, NewValue: comment,
		})
	})
	if err != nil {
		return internalUnless(err, "failed to update ticket %d", id)
	}

	s.emit(events.TicketUpdated, TicketEvent{Ticket: id, Author: author})
	return nil
}

// Comments retrieves a ticket's change log grouped into comments. A
// ticket with no recorded changes yields an empty list.
func (s *TicketService) Comments(ctx context.Context, id int64) ([]models.Comment, error) {
	changes, err := db.NewChangeLogRepo(s.db).ListByTicket(ctx, id)
	if err != nil {
		return nil, ferrors.WrapInternal(err, "failed to fetch comments for ticket %d", id)
	}
	return GroupComments(id, changes), nil
}

// AddAttachment records attachment metadata for a ticket. The file bytes
// are the caller's concern (see the files package); a duplicate filename
// on the same ticket is a Collision.
func (s *TicketService) AddAttachment(ctx context.Context, author string, ticketID int64, meta AttachmentMeta) (*models.Attachment, error) {
	if author == "" {
		return nil, ferrors.Unauthorized("you must be logged in to attach files")
	}
	if meta.Filename == "" {
		return nil, ferrors.Validation("filename is required")
	}

	a := &models.Attachment{
		Ticket:      ticketID,
		Filename:    meta.Filename,
		Size:        meta.Size,
		Time:        s.now().Unix(),
		Description: meta.Description,
		Author:      author,
		IP:          meta.IP,
		IPNR:        meta.IP,
	}
	if err := db.NewAttachmentRepo(s.db).Insert(ctx, a); err != nil {
		return nil, internalUnless(err, "failed to add attachment to ticket %d", ticketID)
	}

	s.emit(events.AttachmentAdded, TicketEvent{Ticket: ticketID, Author: author})
	return a, nil
}

// Attachments retrieves a ticket's attachment metadata rows in order.
func (s *TicketService) Attachments(ctx context.Context, ticketID int64) ([]models.Attachment, error) {
	attachments, err := db.NewAttachmentRepo(s.db).ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, ferrors.WrapInternal(err, "failed to list attachments for ticket %d", ticketID)
	}
	if attachments == nil {
		attachments = []models.Attachment{}
	}
	return attachments, nil
}

// Components retrieves the component reference list.
func (s *TicketService) Components(ctx context.Context) ([]models.Component, error) {
	components, err := db.NewLookupRepo(s.db).Components(ctx)
	if err != nil {
		return nil, ferrors.WrapInternal(err, "failed to list components")
	}
	return components, nil
}

// Milestones retrieves the milestone reference list.
func (s *TicketService) Milestones(ctx context.Context) ([]models.Milestone, error) {
	milestones, err := db.NewLookupRepo(s.db).Milestones(ctx)
	if err != nil {
		return nil, ferrors.WrapInternal(err, "failed to list milestones")
	}
	return milestones, nil
}

// Enum retrieves the key-value pairs of one enum type.
func (s *TicketService) Enum(ctx context.Context, enumType string) ([]models.EnumValue, error) {
	values, err := db.NewLookupRepo(s.db).Enum(ctx, enumType)
	if err != nil {
		return nil, ferrors.WrapInternal(err, "failed to list enum %s", enumType)
	}
	return values, nil
}

func (s *TicketService) emit(name string, payload interface{}) {
	if s.exchange != nil {
		s.exchange.Emit(name, payload)
	}
}

// internalUnless passes domain errors through untouched and wraps
// anything else as an internal error.
func internalUnless(err error, format string, args ...interface{}) error {
	var derr *ferrors.Error
	if errors.As(err, &derr) {
		return derr
	}
	return ferrors.WrapInternal(err, format, args...)
}
