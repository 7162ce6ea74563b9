package platform

import (
	"encoding/json"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"termfolio/internal/messages"
	"termfolio/internal/shell"
	"termfolio/ui"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"
)

// Health returns 200 OK.
func Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

type terminalRequest struct {
	Cmd  string `json:"cmd"`
	Path string `json:"path"`
}

// TerminalCommandHandler publishes the submitted line to
// terminal.session.<sid>.command. Accepts a form or JSON body with cmd and
// path fields.
func TerminalCommandHandler(js messages.JetStreamPublisher) http.HandlerFunc {
	publisher := messages.NewPublisher(js)

	return func(w http.ResponseWriter, r *http.Request) {
		sid := SessionID(r)
		if sid == "" {
			http.Error(w, "missing session ID", http.StatusBadRequest)
			return
		}

		var req terminalRequest
		ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		switch ct {
		case "application/json":
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "bad body", http.StatusBadRequest)
				return
			}
		case "multipart/form-data":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				http.Error(w, "invalid multipart form data", http.StatusBadRequest)
				return
			}
			req.Cmd, req.Path = r.FormValue("cmd"), r.FormValue("path")
		default:
			if err := r.ParseForm(); err != nil {
				http.Error(w, "invalid form data", http.StatusBadRequest)
				return
			}
			req.Cmd, req.Path = r.FormValue("cmd"), r.FormValue("path")
		}

		if strings.TrimSpace(req.Cmd) == "" {
			http.Error(w, "missing cmd", http.StatusBadRequest)
			return
		}
		if req.Path == "" {
			req.Path = "/"
		}

		cmd, err := messages.BuildCommand(messages.TerminalCommandType, map[string]any{
			"session_id": sid,
			"cmd":        req.Cmd,
			"path":       req.Path,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := publisher.PublishCommand(r.Context(), cmd); err != nil {
			slog.Warn("terminal: publish command", "sid", sid, "err", err)
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

// PageHandler serves the terminal page. For /{page} the page segment is
// queued after the welcome banner, so it runs as a url-triggered command.
func PageHandler(title string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		init := []string{shell.InitPrefix + shell.WelcomeCommand}
		if page := chi.URLParam(r, "page"); page != "" {
			init = append(init, page)
		}
		templ.Handler(ui.Index(title, r.URL.Path, init)).ServeHTTP(w, r)
	}
}
