// Package api exposes the octofit REST endpoints.
package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"example.com/octofit/internal/domain"
	"example.com/octofit/internal/leaderboard"
	"example.com/octofit/internal/logging"
)

const (
	defaultLimit = 20
	maxLimit     = 100
	maxBodyBytes = 1 << 20
)

// Rebuilder triggers a leaderboard rebuild without waiting for a running one.
type Rebuilder interface {
	TryRebuild(ctx context.Context) (leaderboard.Result, error)
}

// Handler coordinates HTTP requests with the domain service.
type Handler struct {
	service   *domain.Service
	rebuilder Rebuilder
}

// NewHandler builds a Handler.
func NewHandler(service *domain.Service, rebuilder Rebuilder) *Handler {
	return &Handler{service: service, rebuilder: rebuilder}
}

// RegisterRoutes wires the resource endpoints under /api.
func (h *Handler) RegisterRoutes(r chi.Router) {
	s := h.service
	r.Route("/api", func(r chi.Router) {
		r.Get("/", apiRoot)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", listHandler(domain.UserFields, s.ListUsers, toUserView))
			r.Post("/", createHandler(s.CreateUser, toUserView))
			r.Get("/{id}", getHandler(s.GetUser, toUserView))
			r.Delete("/{id}", deleteHandler(s.DeleteUser))
		})
		r.Route("/teams", func(r chi.Router) {
			r.Get("/", listHandler(domain.TeamFields, s.ListTeams, toTeamView))
			r.Post("/", createHandler(s.CreateTeam, toTeamView))
			r.Get("/{id}", getHandler(s.GetTeam, toTeamView))
			r.Delete("/{id}", deleteHandler(s.DeleteTeam))
		})
		r.Route("/activities", func(r chi.Router) {
			r.Get("/", listHandler(domain.ActivityFields, s.ListActivities, toActivityView))
			r.Post("/", createHandler(s.CreateActivity, toActivityView))
			r.Get("/{id}", getHandler(s.GetActivity, toActivityView))
			r.Delete("/{id}", deleteHandler(s.DeleteActivity))
		})
		r.Route("/leaderboard", func(r chi.Router) {
			r.Get("/", listHandler(domain.LeaderboardFields, s.ListLeaderboard, toLeaderboardEntryView))
			r.Post("/", createHandler(s.CreateLeaderboardEntry, toLeaderboardEntryView))
			r.Post("/rebuild", h.rebuildLeaderboard)
			r.Get("/{id}", getHandler(s.GetLeaderboardEntry, toLeaderboardEntryView))
			r.Delete("/{id}", deleteHandler(s.DeleteLeaderboardEntry))
		})
		r.Route("/workouts", func(r chi.Router) {
			r.Get("/", listHandler(domain.WorkoutFields, s.ListWorkouts, toWorkoutView))
			r.Post("/", createHandler(s.CreateWorkout, toWorkoutView))
			r.Get("/{id}", getHandler(s.GetWorkout, toWorkoutView))
			r.Delete("/{id}", deleteHandler(s.DeleteWorkout))
		})
	})
}

// apiRoot lists the resource endpoints relative to the request host.
func apiRoot(w http.ResponseWriter, r *http.Request) {
	base := origin(r) + "/api/"
	writeJSON(w, http.StatusOK, map[string]string{
		"users":       base + "users/",
		"teams":       base + "teams/",
		"activities":  base + "activities/",
		"leaderboard": base + "leaderboard/",
		"workouts":    base + "workouts/",
	})
}

func (h *Handler) rebuildLeaderboard(w http.ResponseWriter, r *http.Request) {
	result, err := h.rebuilder.TryRebuild(r.Context())
	if err != nil {
		writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RebuildResponse{RunID: result.RunID, EntriesWritten: result.EntriesWritten})
}

func listHandler[T, V any](fields []string, list func(context.Context, domain.Query) (domain.Page[T], error), view func(T) V) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q, err := parseQuery(r, fields)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		page, err := list(r.Context(), q)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		resp := ListResponse[V]{Count: page.Total, Results: make([]V, 0, len(page.Items))}
		resp.Next, resp.Previous = pageLinks(r, q, page.Total)
		for _, item := range page.Items {
			resp.Results = append(resp.Results, view(item))
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func createHandler[In, T, V any](create func(context.Context, In) (T, error), view func(T) V) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in In
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err := dec.Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
			return
		}
		record, err := create(r.Context(), in)
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, view(record))
	}
}

func getHandler[T, V any](get func(context.Context, string) (T, error), view func(T) V) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		record, err := get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeDomainError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, view(record))
	}
}

func deleteHandler(del func(context.Context, string) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := del(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeDomainError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// parseQuery reads limit, offset and at most one equality filter among fields.
func parseQuery(r *http.Request, fields []string) (domain.Query, error) {
	values := r.URL.Query()
	q := domain.Query{Limit: defaultLimit}

	if raw := values.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 {
			return domain.Query{}, &domain.ValidationError{Fields: []domain.FieldError{{Field: "limit", Message: "must be a positive integer"}}}
		}
		q.Limit = min(limit, maxLimit)
	}
	if raw := values.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			return domain.Query{}, &domain.ValidationError{Fields: []domain.FieldError{{Field: "offset", Message: "must be a non-negative integer"}}}
		}
		q.Offset = offset
	}

	for _, field := range fields {
		if !values.Has(field) {
			continue
		}
		if q.Field != "" {
			return domain.Query{}, &domain.ValidationError{Fields: []domain.FieldError{{Field: field, Message: "only one filter may be applied"}}}
		}
		q.Field = field
		q.Value = values.Get(field)
	}
	return q, nil
}

// pageLinks builds the next and previous page URLs for a limit/offset query,
// keeping any filter parameter. The first page link omits offset.
func pageLinks(r *http.Request, q domain.Query, total int) (next, previous *string) {
	link := func(offset int) *string {
		values := r.URL.Query()
		values.Set("limit", strconv.Itoa(q.Limit))
		if offset > 0 {
			values.Set("offset", strconv.Itoa(offset))
		} else {
			values.Del("offset")
		}
		u := url.URL{Path: r.URL.Path, RawQuery: values.Encode()}
		s := origin(r) + u.String()
		return &s
	}
	if q.Offset+q.Limit < total {
		next = link(q.Offset + q.Limit)
	}
	if q.Offset > 0 {
		previous = link(max(q.Offset-q.Limit, 0))
	}
	return next, previous
}

func origin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

type errorResponse struct {
	Type   string              `json:"type"`
	Detail string              `json:"detail"`
	Errors []domain.FieldError `json:"errors,omitempty"`
}

// writeDomainError maps service and rebuild errors onto HTTP statuses.
func writeDomainError(w http.ResponseWriter, r *http.Request, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Type: "validation_failed", Detail: err.Error(), Errors: validation.Fields})
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "record not found")
	case errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, leaderboard.ErrRunInProgress):
		writeError(w, http.StatusConflict, "rebuild_in_progress", err.Error())
	case errors.Is(err, leaderboard.ErrSourceRead):
		writeError(w, http.StatusServiceUnavailable, "source_read_failed", err.Error())
	case errors.Is(err, leaderboard.ErrStoreWrite):
		writeError(w, http.StatusServiceUnavailable, "store_write_failed", err.Error())
	default:
		logging.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, errorResponse{Type: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warn().Err(err).Msg("encode response")
	}
}
