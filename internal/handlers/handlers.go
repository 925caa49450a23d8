// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers implements the HTTP handlers: the public portfolio and
// blog pages, the sign-in flow, and the JSON admin API the owner edits the
// site through.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"devfolio/internal/store"
)

// maxJSONBody bounds admin API request bodies.
const maxJSONBody = 1 << 20

// Stores bundles the record stores the handlers read and write.
type Stores struct {
	Profile    *store.ProfileStore
	Skills     *store.SkillStore // home page grid
	PageSkills *store.SkillStore // dedicated skills page
	Posts      *store.PostStore
	Comments   *store.CommentStore
}

// syncStatus reports where a write landed.
type syncStatus struct {
	Local         bool   `json:"local"`
	Remote        bool   `json:"remote"`
	RemoteSkipped bool   `json:"remoteSkipped"`
	RemoteError   string `json:"remoteError,omitempty"`
}

func newSyncStatus(res store.SaveResult) syncStatus {
	return syncStatus{
		Local:         res.Local,
		Remote:        res.Remote,
		RemoteSkipped: res.RemoteSkipped,
		RemoteError:   res.RemoteError(),
	}
}

// writeResponse is the body of every admin write.
type writeResponse struct {
	Data         any        `json:"data"`
	Sync         syncStatus `json:"sync"`
	ImageDropped bool       `json:"imageDropped,omitempty"`
	Notice       string     `json:"notice,omitempty"`
}

// readResponse is the body of every admin read.
type readResponse struct {
	Data   any          `json:"data"`
	Source store.Source `json:"source"`
}

// writeJSON sends a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("write json response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeStoreError maps a store error to a status code. Validation messages
// are safe to show; anything else is logged and hidden.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrValidation):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found.")
	default:
		slog.Error("store write failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Internal server error.")
	}
}

// writeSaved sends the outcome of a write. A write that reached neither
// store is a server error even though the stores report it as a result.
func writeSaved(w http.ResponseWriter, data any, res store.SaveResult) {
	writeSavedWith(w, writeResponse{Data: data}, res)
}

func writeSavedWith(w http.ResponseWriter, body writeResponse, res store.SaveResult) {
	body.Sync = newSyncStatus(res)
	status := http.StatusOK
	if res.LocalErr != nil && !res.Remote {
		slog.Error("write reached no store", "error", res.LocalErr, "remote_error", res.RemoteError())
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, body)
}

// decodeJSON reads a bounded JSON body into dest.
func decodeJSON(w http.ResponseWriter, r *http.Request, dest any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dest); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return errors.New("decode request body: trailing data")
	}
	return nil
}
