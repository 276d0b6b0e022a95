package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"sweetyshop/internal/httpx"
	"sweetyshop/internal/menu"
	"sweetyshop/internal/menusync"
	"sweetyshop/internal/store"
)

type syncResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Action  string `json:"action"`
	Applied int    `json:"applied"`
	Total   int    `json:"total"`
	SyncID  string `json:"syncId"`
}

func (s *Server) handleMenuGet(w http.ResponseWriter, r *http.Request) {
	doc, err := s.sync.Current(r.Context())
	if err != nil {
		log.Printf("[menu] read failed: %v", err)
		writeStorageError(w, err, "Failed to read menu data")
		return
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		log.Printf("[menu] encode failed: %v", err)
		httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, "Failed to read menu data")
		return
	}

	// Storefront pages poll this; let them revalidate instead of refetching.
	w.Header().Set("Cache-Control", "no-cache")
	etag := `"` + md5Hex(payload) + `"`
	w.Header().Set("ETag", etag)
	if etagMatches(r.Header.Get("If-None-Match"), etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(payload)
}

func (s *Server) handleMenuSync(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.SyncMaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			httpx.WriteError(w, http.StatusRequestEntityTooLarge, httpx.CodeBadRequest, "Request body too large")
			return
		}
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeBadRequest, "Failed to read request body")
		return
	}

	doc, err := menusync.ParseBody(body)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, httpx.CodeBadRequest, err.Error())
		return
	}

	action := r.URL.Query().Get("action")
	if action == "" {
		action = r.Header.Get("X-Sync-Action")
	}
	logSyncReceived(doc, action)

	res, err := s.sync.Apply(r.Context(), menusync.Request{Action: action, Body: doc})
	if err != nil {
		if errors.Is(err, menusync.ErrBadRequest) {
			httpx.WriteError(w, http.StatusBadRequest, httpx.CodeBadRequest, err.Error())
			return
		}
		log.Printf("[sync %s] failed: %v", res.SyncID, err)
		writeStorageError(w, err, "Failed to update menu")
		return
	}

	log.Printf("[sync %s] %s applied=%d total=%d attempts=%d", res.SyncID, res.Mode, res.Applied, res.Total, res.Attempts)
	httpx.WriteJSON(w, http.StatusOK, syncResponse{
		Success: true,
		Message: syncMessage(res),
		Action:  res.Mode.String(),
		Applied: res.Applied,
		Total:   res.Total,
		SyncID:  res.SyncID,
	})
}

func syncMessage(res menusync.Result) string {
	if res.Mode == menu.Replace {
		return "Menu updated successfully: replaced with " + strconv.Itoa(res.Total) + " items"
	}
	return "Menu updated successfully: " + strconv.Itoa(res.Applied) + " items applied, " + strconv.Itoa(res.Total) + " total"
}

func logSyncReceived(doc menu.Document, action string) {
	if action == "" {
		action = "-"
	}
	hasImage := false
	if len(doc.Items) > 0 {
		hasImage = doc.Items[0].ImageURL() != ""
	}
	log.Printf("[sync] received items=%d action=%s firstHasImage=%t", len(doc.Items), action, hasImage)
}

func writeStorageError(w http.ResponseWriter, err error, message string) {
	if errors.Is(err, store.ErrNotConfigured) {
		httpx.WriteError(w, http.StatusServiceUnavailable, httpx.CodeStorageNotConfigured, "Storage not configured")
		return
	}
	httpx.WriteError(w, http.StatusInternalServerError, httpx.CodeInternal, message)
}
