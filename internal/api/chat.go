package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/starford/ansuz/internal/apperr"
	"github.com/starford/ansuz/internal/store"
)

const chatHelp = `Available commands:
/add <title> | <content> - Quick add idea
/search <keyword> - Search ideas
/recent [n] - Show recent ideas
/category [name] - List categories or filter by category
/help - Show this help`

// Chat handles POST /api/chat: slash commands run against the store,
// anything else is echoed back.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	if strings.HasPrefix(message, "/") {
		h.chatCommand(w, r, message)
		return
	}

	writeOK(w, map[string]any{
		"response": "Received: " + message,
		"type":     "text",
	})
}

func (h *Handler) chatCommand(w http.ResponseWriter, r *http.Request, message string) {
	command, args, _ := strings.Cut(message, " ")
	command = strings.ToLower(command)
	args = strings.TrimSpace(args)

	switch command {
	case "/add":
		if args == "" {
			writeError(w, http.StatusBadRequest, "usage: /add <title> | <content>")
			return
		}
		title, content, found := strings.Cut(args, "|")
		if found {
			title = strings.TrimSpace(title)
			content = strings.TrimSpace(content)
		} else {
			title = truncate(args, 50)
			content = args
		}
		res, err := h.svc.Create(r.Context(), store.CreateIdea{Title: title, Content: content, Source: "chat"})
		if err != nil {
			if errors.Is(err, apperr.ErrValidation) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeOK(w, map[string]any{
			"response": fmt.Sprintf("Added idea #%d: %s", res.ID, title),
			"type":     "action",
			"action":   "add",
			"idea_id":  res.ID,
		})

	case "/search":
		if args == "" {
			writeError(w, http.StatusBadRequest, "usage: /search <keyword>")
			return
		}
		ideas, err := h.svc.Search(r.Context(), store.SearchFilter{Keyword: args, Limit: 10})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeOK(w, map[string]any{
			"response": fmt.Sprintf("Found %d ideas", len(ideas)),
			"type":     "search",
			"data":     ideas,
		})

	case "/recent":
		limit := 5
		if n, err := strconv.Atoi(args); err == nil && n > 0 {
			limit = n
		}
		ideas, err := h.svc.Recent(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeOK(w, map[string]any{
			"response": fmt.Sprintf("Recent %d ideas", len(ideas)),
			"type":     "list",
			"data":     ideas,
		})

	case "/category":
		if args == "" {
			cats, err := h.svc.Categories(r.Context())
			if err != nil {
				writeError(w, http.StatusInternalServerError, err.Error())
				return
			}
			writeOK(w, map[string]any{
				"response": "Categories",
				"type":     "categories",
				"data":     cats,
			})
			return
		}
		ideas, err := h.svc.Search(r.Context(), store.SearchFilter{Category: args, Limit: 20})
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeOK(w, map[string]any{
			"response": fmt.Sprintf("Ideas in %q", args),
			"type":     "list",
			"data":     ideas,
		})

	case "/help":
		writeOK(w, map[string]any{"response": chatHelp, "type": "help"})

	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown command: %s. Try /help", command))
	}
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
