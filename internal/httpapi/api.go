// Package httpapi is the HTTP surface of the service: park catalog and
// ratings, the authenticated /v1/me resources, and the pairing endpoint.
package httpapi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"pawpark.app/internal/identity"
	"pawpark.app/internal/obs"
	"pawpark.app/internal/social"
)

// ReadyProbe checks backing-store readiness (ping the DB when one is wired).
type ReadyProbe struct {
	DB *sql.DB
}

func (rp ReadyProbe) Check(ctx context.Context) error {
	if rp.DB == nil {
		return nil
	}
	return rp.DB.PingContext(ctx)
}

// Services bundles the domain services the API exposes.
type Services struct {
	Profiles    *social.Profiles
	Connections *social.Connections
	Favorites   *social.Favorites
	Dogs        *social.Dogs
	Ratings     *social.Ratings
	Parks       *social.Parks
}

// API is the HTTP layer.
type API struct {
	readyProbe ReadyProbe
	version    string
	verifier   *identity.Verifier
	notifier   *identity.Notifier
	svc        Services

	mu   sync.Mutex
	seen map[identity.UserID]struct{}
}

func New(rp ReadyProbe, version string, verifier *identity.Verifier, notifier *identity.Notifier, svc Services) *API {
	return &API{
		readyProbe: rp,
		version:    version,
		verifier:   verifier,
		notifier:   notifier,
		svc:        svc,
		seen:       make(map[identity.UserID]struct{}),
	}
}

// Handler builds the router and wraps it with metrics instrumentation.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	r.Use(a.withAuth)

	r.Get("/healthz", a.Healthz)
	r.Get("/readyz", a.Ready)
	r.Get("/v1/info", a.Info)
	r.Handle("/metrics", obs.Handler())

	r.Route("/v1/parks", func(r chi.Router) {
		r.Get("/", a.listParks)
		r.Route("/{parkID}", func(r chi.Router) {
			r.Get("/", a.getPark)
			r.Get("/ratings", a.listRatings)
			r.Post("/ratings", a.createRating)
		})
	})

	r.Route("/v1/me", func(r chi.Router) {
		r.Use(a.requireUser)
		r.Get("/", a.getProfile)
		r.Patch("/", a.updateProfile)
		r.Get("/favorites", a.listFavorites)
		r.Post("/favorites/{parkID}/toggle", a.toggleFavorite)
		r.Get("/dogs", a.listDogs)
		r.Put("/dogs", a.replaceDogs)
		r.Get("/connections", a.listConnections)
		r.Post("/connections", a.createConnection)
	})

	return obs.Instrument(r)
}

// --- Handlers ---

func (a *API) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "pawpark-api",
		"version": a.version,
	})
}

func (a *API) Ready(w http.ResponseWriter, r *http.Request) {
	if err := a.readyProbe.Check(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status": "not_ready",
			"error":  err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ready",
	})
}

func (a *API) Info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "pawpark-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// --- helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, r *http.Request, code int, msg string) {
	payload := map[string]any{
		"error": msg,
	}
	if rid := RequestIDFromContext(r.Context()); rid != "" {
		payload["request_id"] = rid
	}
	writeJSON(w, code, payload)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	reader := http.MaxBytesReader(w, r.Body, 1<<20)
	defer reader.Close()
	dec := json.NewDecoder(reader)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON body")
		}
		return err
	}
	return nil
}
