package control

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"voice-form/internal/application"
	"voice-form/internal/domain"
)

// Form is the part of the assistant the control API drives.
type Form interface {
	Status() application.Status
	Templates() []string
	SelectTemplate(name string) error
	HandleUtterance(ctx context.Context, text string)
	Finalize(ctx context.Context) (application.Finalized, error)
	Save(name string) error
	Load(name string) error
	Delete(name string) error
	Entries() ([]string, error)
}

type Handler struct {
	form   Form
	logger *slog.Logger
}

func NewHandler(form Form, logger *slog.Logger) *Handler {
	return &Handler{form: form, logger: logger}
}

// Register hands every control route to mount, e.g. (*http.ServeMux).Handle
// or the HTTP audio source's Mount.
func (h *Handler) Register(mount func(pattern string, handler http.Handler)) {
	mount("GET /form", http.HandlerFunc(h.handleStatus))
	mount("GET /templates", http.HandlerFunc(h.handleTemplates))
	mount("PUT /form/template", http.HandlerFunc(h.handleSelectTemplate))
	mount("POST /form/utterance", http.HandlerFunc(h.handleUtterance))
	mount("POST /form/finalize", http.HandlerFunc(h.handleFinalize))
	mount("GET /entries", http.HandlerFunc(h.handleEntries))
	mount("PUT /entries/{name}", http.HandlerFunc(h.handleSave))
	mount("POST /entries/{name}/load", http.HandlerFunc(h.handleLoad))
	mount("DELETE /entries/{name}", http.HandlerFunc(h.handleDelete))
}

// ListenAndServe serves the control API on its own address until ctx is done.
func (h *Handler) ListenAndServe(ctx context.Context, addr, authToken string) error {
	mux := http.NewServeMux()
	h.Register(func(pattern string, handler http.Handler) {
		mux.Handle(pattern, requireToken(authToken, handler))
	})

	server := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		h.logger.Info("control API starting", "addr", addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("control server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func requireToken(token string, next http.Handler) http.Handler {
	if token == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := r.Header.Get("X-Auth-Token")
		if got == "" {
			got = r.URL.Query().Get("token")
		}
		if got != token {
			writeError(w, http.StatusUnauthorized, errors.New("unauthorized"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

type templateRequest struct {
	Name string `json:"name"`
}

type utteranceRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.form.Status())
}

func (h *Handler) handleTemplates(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": h.form.Templates()})
}

func (h *Handler) handleSelectTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := h.form.SelectTemplate(req.Name); err != nil {
		h.fail(w, "selecting template", err)
		return
	}
	writeJSON(w, http.StatusOK, h.form.Status())
}

func (h *Handler) handleUtterance(w http.ResponseWriter, r *http.Request) {
	var req utteranceRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	h.form.HandleUtterance(r.Context(), req.Text)
	writeJSON(w, http.StatusOK, h.form.Status())
}

func (h *Handler) handleFinalize(w http.ResponseWriter, r *http.Request) {
	result, err := h.form.Finalize(r.Context())
	if err != nil {
		h.fail(w, "finalizing", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleEntries(w http.ResponseWriter, _ *http.Request) {
	names, err := h.form.Entries()
	if err != nil {
		h.fail(w, "listing entries", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": names})
}

func (h *Handler) handleSave(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := h.form.Save(name); err != nil {
		h.fail(w, "saving entry", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "saved", "name": name})
}

func (h *Handler) handleLoad(w http.ResponseWriter, r *http.Request) {
	if err := h.form.Load(r.PathValue("name")); err != nil {
		h.fail(w, "loading entry", err)
		return
	}
	writeJSON(w, http.StatusOK, h.form.Status())
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.form.Delete(r.PathValue("name")); err != nil {
		h.fail(w, "deleting entry", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(op, "error", err)
	} else {
		h.logger.Warn(op, "error", err)
	}
	writeError(w, status, err)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, application.ErrTemplateNotFound), errors.Is(err, application.ErrEntryNotFound):
		return http.StatusNotFound
	case errors.Is(err, application.ErrEntryNameRequired), errors.Is(err, domain.ErrMalformedTemplate):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrNoTemplate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(v); err != nil {
		return fmt.Errorf("decoding request: %w", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
