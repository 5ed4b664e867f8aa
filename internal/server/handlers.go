package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"

	ferrors "github.com/frackdev/frack/internal/errors"
	"github.com/frackdev/frack/internal/files"
	"github.com/frackdev/frack/internal/service"
)

// authCookieName is the cookie carrying the auth token. The name is the
// one Trac uses, so existing clients keep working.
const authCookieName = "trac_auth"

// API request/response types

// CreateTicketRequest is the body of POST /api/tickets.
type CreateTicketRequest struct {
	Fields map[string]string `json:"fields"`
}

// CreateTicketResponse is the reply to a successful ticket creation.
type CreateTicketResponse struct {
	ID  int64  `json:"id"`
	URL string `json:"url,omitempty"`
}

// UpdateTicketRequest is the body of POST /api/tickets/{id}.
type UpdateTicketRequest struct {
	Fields  map[string]string `json:"fields"`
	Comment string            `json:"comment"`
	ReplyTo string            `json:"replyto"`
}

// CreateUserRequest is the body of POST /api/users.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email string `json:"email"`
}

// UserResponse carries a resolved username.
type UserResponse struct {
	Username string `json:"username"`
}

// AttachmentResponse is the reply to a successful attachment upload.
type AttachmentResponse struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Ticket handlers

func (s *Server) handleCreateTicket(w http.ResponseWriter, r *http.Request) {
	var req CreateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ferrors.Validation("invalid request body"))
		return
	}

	id, err := s.tickets.Create(r.Context(), s.currentUser(r), req.Fields)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := CreateTicketResponse{ID: id}
	if s.config.BaseURL != "" {
		resp.URL = fmt.Sprintf("%s/ticket/%d", s.config.BaseURL, id)
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (s *Server) handleGetTicket(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := s.tickets.Fetch(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleUpdateTicket(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ferrors.Validation("invalid request body"))
		return
	}

	err = s.tickets.Update(r.Context(), s.currentUser(r), id, req.Fields, req.Comment, req.ReplyTo)
	if err != nil {
		writeError(w, err)
		return
	}

	detail, err := s.tickets.Fetch(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	comments, err := s.tickets.Comments(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// Attachment handlers

func (s *Server) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	attachments, err := s.tickets.Attachments(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attachments)
}

// handleAddAttachment stores the uploaded bytes on disk first, then
// records the metadata row. If the metadata insert fails the stored
// file is removed again so disk and database stay in step.
func (s *Server) handleAddAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	author := s.currentUser(r)
	if author == "" {
		writeError(w, ferrors.Unauthorized("you must be logged in to attach files"))
		return
	}

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, ferrors.Validation("invalid multipart form"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, ferrors.Validation("missing file field"))
		return
	}
	defer file.Close()

	key := strconv.FormatInt(id, 10)
	size, err := s.store.Put(files.KindTicket, key, header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	_, err = s.tickets.AddAttachment(r.Context(), author, id, service.AttachmentMeta{
		Filename:    header.Filename,
		Size:        size,
		Description: r.FormValue("description"),
		IP:          clientIP(r),
	})
	if err != nil {
		if rmErr := s.store.Remove(files.KindTicket, key, header.Filename); rmErr != nil {
			s.logger.Warn("failed to remove orphaned attachment file",
				"ticket", id,
				"filename", header.Filename,
				"error", rmErr,
			)
		}
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, AttachmentResponse{
		Filename: header.Filename,
		Size:     size,
	})
}

func (s *Server) handleGetAttachment(w http.ResponseWriter, r *http.Request) {
	id, err := ticketID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	f, err := s.store.Open(files.KindTicket, strconv.FormatInt(id, 10), r.PathValue("filename"))
	if err != nil {
		writeError(w, err)
		return
	}
	defer f.Close()

	filename := r.PathValue("filename")
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if info, err := f.Stat(); err == nil {
		w.Header().Set("Content-Length", strconv.FormatInt(info.Size(), 10))
	}
	if _, err := io.Copy(w, f); err != nil {
		s.logger.Warn("failed to stream attachment",
			"ticket", id,
			"filename", filename,
			"error", err,
		)
	}
}

// Reference-data handlers

func (s *Server) handleListComponents(w http.ResponseWriter, r *http.Request) {
	components, err := s.tickets.Components(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, components)
}

func (s *Server) handleListMilestones(w http.ResponseWriter, r *http.Request) {
	milestones, err := s.tickets.Milestones(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, milestones)
}

func (s *Server) handleListEnum(w http.ResponseWriter, r *http.Request) {
	values, err := s.tickets.Enum(r.Context(), r.PathValue("type"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, values)
}

// Account handlers

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ferrors.Validation("invalid request body"))
		return
	}

	username, err := s.auth.CreateUser(r.Context(), req.Email, req.Username)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, UserResponse{Username: username})
}

func (s *Server) handleLookupUser(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeError(w, ferrors.Validation("email query parameter is required"))
		return
	}

	username, err := s.auth.UsernameFromEmail(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{Username: username})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, ferrors.Validation("invalid request body"))
		return
	}

	username, cookie, err := s.auth.Login(r.Context(), req.Email)
	if err != nil {
		writeError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    cookie,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	writeJSON(w, http.StatusOK, UserResponse{Username: username})
}

func (s *Server) handleWhoami(w http.ResponseWriter, r *http.Request) {
	username := s.currentUser(r)
	if username == "" {
		writeError(w, ferrors.Unauthorized("not logged in"))
		return
	}
	writeJSON(w, http.StatusOK, UserResponse{Username: username})
}

// Helpers

// currentUser resolves the request's auth cookie to a username. An
// absent or unknown cookie resolves to "", the anonymous user.
func (s *Server) currentUser(r *http.Request) string {
	cookie, err := r.Cookie(authCookieName)
	if err != nil {
		return ""
	}
	username, err := s.auth.UsernameFromCookie(r.Context(), cookie.Value)
	if err != nil {
		s.logger.Warn("failed to resolve auth cookie", "error", err)
		return ""
	}
	return username
}

// ticketID parses the {id} path segment.
func ticketID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, ferrors.Validation("invalid ticket id %q", r.PathValue("id"))
	}
	return id, nil
}

// clientIP extracts the remote address without the port.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response, mapping domain error kinds to
// HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	status := ferrors.GetHTTPStatus(err)
	message := err.Error()
	var derr *ferrors.Error
	if errors.As(err, &derr) {
		message = derr.Message
	}
	writeJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Code:    status,
		Message: message,
	})
}
