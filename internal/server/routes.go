package server

import (
	"net/http"
)

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("POST /api/tickets", s.handleCreateTicket)
	s.router.HandleFunc("GET /api/tickets/{id}", s.handleGetTicket)
	s.router.HandleFunc("POST /api/tickets/{id}", s.handleUpdateTicket)
	s.router.HandleFunc("GET /api/tickets/{id}/comments", s.handleListComments)
	s.router.HandleFunc("GET /api/tickets/{id}/attachments", s.handleListAttachments)
	s.router.HandleFunc("POST /api/tickets/{id}/attachments", s.handleAddAttachment)
	s.router.HandleFunc("GET /api/tickets/{id}/attachments/{filename}", s.handleGetAttachment)

	s.router.HandleFunc("GET /api/components", s.handleListComponents)
	s.router.HandleFunc("GET /api/milestones", s.handleListMilestones)
	s.router.HandleFunc("GET /api/enums/{type}", s.handleListEnum)

	s.router.HandleFunc("POST /api/users", s.handleCreateUser)
	s.router.HandleFunc("GET /api/users/lookup", s.handleLookupUser)
	s.router.HandleFunc("POST /api/auth/login", s.handleLogin)
	s.router.HandleFunc("GET /api/auth/whoami", s.handleWhoami)

	// Health check
	s.router.HandleFunc("GET /api/health", s.handleHealth)
}

// handleHealth returns a simple health check response.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
