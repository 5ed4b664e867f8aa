package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/frackdev/frack/internal/db"
	ferrors "github.com/frackdev/frack/internal/errors"
	"github.com/frackdev/frack/internal/files"
	"github.com/frackdev/frack/internal/models"
	"github.com/frackdev/frack/internal/service"
)

// Ticket command flags
var (
	ticketFields      []string
	ticketComment     string
	ticketReplyTo     string
	ticketDescription string
)

func init() {
	ticketCreateCmd.Flags().StringArrayVarP(&ticketFields, "field", "f", nil, "Ticket field as key=value (repeatable)")
	ticketUpdateCmd.Flags().StringArrayVarP(&ticketFields, "field", "f", nil, "Ticket field as key=value (repeatable)")
	ticketUpdateCmd.Flags().StringVarP(&ticketComment, "comment", "m", "", "Comment text")
	ticketUpdateCmd.Flags().StringVar(&ticketReplyTo, "reply-to", "", "Comment number this comment replies to")
	ticketAttachCmd.Flags().StringVarP(&ticketDescription, "description", "d", "", "Attachment description")

	ticketCmd.AddCommand(ticketCreateCmd)
	ticketCmd.AddCommand(ticketShowCmd)
	ticketCmd.AddCommand(ticketUpdateCmd)
	ticketCmd.AddCommand(ticketCommentsCmd)
	ticketCmd.AddCommand(ticketAttachCmd)
	rootCmd.AddCommand(ticketCmd)
}

var ticketCmd = &cobra.Command{
	Use:   "ticket",
	Short: "Manage tickets",
}

var ticketCreateCmd = &cobra.Command{
	Use:   "create <summary>",
	Short: "Create a new ticket",
	Long: `Create a new ticket with the given summary.

Additional fields are set with repeated --field flags. Field names
outside the normal ticket columns are stored as custom fields.

Examples:
  frack ticket create "Frobnicator is broken"
  frack ticket create "Frobnicator is broken" -f type=defect -f component=core
  frack ticket create "Needs branch work" -f branch=my-feature-branch`,
	Args: cobra.ExactArgs(1),
	RunE: runTicketCreate,
}

var ticketShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a ticket with its comments and attachments",
	Args:  cobra.ExactArgs(1),
	RunE:  runTicketShow,
}

var ticketUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update ticket fields and add a comment",
	Long: `Update a ticket. Field changes and the comment are applied atomically
and recorded in the ticket's change log.

Examples:
  frack ticket update 12 -f status=accepted -f owner=alice -m "taking this"
  frack ticket update 12 -m "agreed" --reply-to 3`,
	Args: cobra.ExactArgs(1),
	RunE: runTicketUpdate,
}

var ticketCommentsCmd = &cobra.Command{
	Use:   "comments <id>",
	Short: "Show a ticket's comment history",
	Args:  cobra.ExactArgs(1),
	RunE:  runTicketComments,
}

var ticketAttachCmd = &cobra.Command{
	Use:   "attach <id> <file>",
	Short: "Attach a file to a ticket",
	Args:  cobra.ExactArgs(2),
	RunE:  runTicketAttach,
}

// openTicketService opens the database and builds the ticket service.
// The caller must Close the returned DB.
func openTicketService() (*service.TicketService, *db.DB, error) {
	database, err := db.Open(GetDBPath())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	return service.NewTicketService(database.DB, nil), database, nil
}

// parseFields converts repeated key=value flags into a field map.
func parseFields(pairs []string) (map[string]string, error) {
	fields := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, ferrors.Validation("invalid field %q, expected key=value", pair)
		}
		fields[key] = value
	}
	return fields, nil
}

func parseTicketArg(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, ferrors.Validation("invalid ticket id %q", arg)
	}
	return id, nil
}

func runTicketCreate(cmd *cobra.Command, args []string) error {
	fields, err := parseFields(ticketFields)
	if err != nil {
		return err
	}
	fields["summary"] = args[0]

	svc, database, err := openTicketService()
	if err != nil {
		return err
	}
	defer database.Close()

	id, err := svc.Create(context.Background(), GetUser(), fields)
	if err != nil {
		return err
	}

	if IsJSON() {
		data, _ := json.MarshalIndent(map[string]int64{"id": id}, "", "  ")
		fmt.Println(string(data))
		return nil
	}
	OutputLine("Created ticket %d", id)
	return nil
}

func runTicketShow(cmd *cobra.Command, args []string) error {
	id, err := parseTicketArg(args[0])
	if err != nil {
		return err
	}

	svc, database, err := openTicketService()
	if err != nil {
		return err
	}
	defer database.Close()

	detail, err := svc.Fetch(context.Background(), id)
	if err != nil {
		return err
	}

	if IsJSON() {
		data, err := json.MarshalIndent(detail, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal ticket: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	printTicket(detail)
	return nil
}

func runTicketUpdate(cmd *cobra.Command, args []string) error {
	id, err := parseTicketArg(args[0])
	if err != nil {
		return err
	}
	fields, err := parseFields(ticketFields)
	if err != nil {
		return err
	}

	svc, database, err := openTicketService()
	if err != nil {
		return err
	}
	defer database.Close()

	err = svc.Update(context.Background(), GetUser(), id, fields, ticketComment, ticketReplyTo)
	if err != nil {
		return err
	}

	OutputLine("Updated ticket %d", id)
	return nil
}

func runTicketComments(cmd *cobra.Command, args []string) error {
	id, err := parseTicketArg(args[0])
	if err != nil {
		return err
	}

	svc, database, err := openTicketService()
	if err != nil {
		return err
	}
	defer database.Close()

	comments, err := svc.Comments(context.Background(), id)
	if err != nil {
		return err
	}

	if IsJSON() {
		data, err := json.MarshalIndent(comments, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal comments: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, c := range comments {
		printComment(&c)
	}
	return nil
}

func runTicketAttach(cmd *cobra.Command, args []string) error {
	id, err := parseTicketArg(args[0])
	if err != nil {
		return err
	}
	path := args[1]

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	svc, database, err := openTicketService()
	if err != nil {
		return err
	}
	defer database.Close()

	store := files.NewDiskStore(GetConfig().GetFileRoot())
	filename := filepath.Base(path)
	key := strconv.FormatInt(id, 10)

	size, err := store.Put(files.KindTicket, key, filename, f)
	if err != nil {
		return err
	}

	_, err = svc.AddAttachment(context.Background(), GetUser(), id, service.AttachmentMeta{
		Filename:    filename,
		Size:        size,
		Description: ticketDescription,
	})
	if err != nil {
		store.Remove(files.KindTicket, key, filename)
		return err
	}

	OutputLine("Attached %s (%d bytes) to ticket %d", filename, size, id)
	return nil
}

// printTicket writes a human-readable rendering of a ticket.
func printTicket(detail *models.TicketDetail) {
	OutputLine("Ticket #%d: %s", detail.ID, detail.Summary)
	OutputLine("  Status:    %s", detail.Status)
	OutputLine("  Reporter:  %s", detail.Reporter)
	if detail.Owner != "" {
		OutputLine("  Owner:     %s", detail.Owner)
	}
	if detail.Type != "" {
		OutputLine("  Type:      %s", detail.Type)
	}
	if detail.Component != "" {
		OutputLine("  Component: %s", detail.Component)
	}
	if detail.Milestone != "" {
		OutputLine("  Milestone: %s", detail.Milestone)
	}
	OutputLine("  Created:   %s", formatTime(detail.Time))
	OutputLine("  Changed:   %s", formatTime(detail.Changetime))

	if len(detail.Custom) > 0 {
		names := make([]string, 0, len(detail.Custom))
		for name := range detail.Custom {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			OutputLine("  %s: %s", name, detail.Custom[name])
		}
	}

	if detail.Description != "" {
		OutputLine("")
		OutputLine("%s", detail.Description)
	}

	for _, a := range detail.Attachments {
		OutputLine("")
		OutputLine("Attachment: %s (%d bytes) by %s, %s", a.Filename, a.Size, a.Author, formatTime(a.Time))
	}

	for _, c := range detail.Comments {
		OutputLine("")
		printComment(&c)
	}
}

func printComment(c *models.Comment) {
	header := fmt.Sprintf("Comment %s by %s, %s", c.Number, c.Author, formatTime(c.Time))
	if c.ReplyTo != "" {
		header += fmt.Sprintf(" (in reply to %s)", c.ReplyTo)
	}
	OutputLine("%s", header)

	fields := make([]string, 0, len(c.Changes))
	for name := range c.Changes {
		fields = append(fields, name)
	}
	sort.Strings(fields)
	for _, name := range fields {
		ch := c.Changes[name]
		OutputLine("  %s: %q -> %q", name, ch.Old, ch.New)
	}

	if c.Text != "" {
		OutputLine("  %s", c.Text)
	}
}

func formatTime(unix int64) string {
	return time.Unix(unix, 0).UTC().Format("2006-01-02 15:04:05")
}
