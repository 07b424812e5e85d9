package httpapi

import (
	"errors"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"pawpark.app/internal/audit"
	"pawpark.app/internal/identity"
	"pawpark.app/internal/obs"
	"pawpark.app/internal/social"
)

type createRatingRequest struct {
	Stars   int    `json:"stars"`
	Comment string `json:"comment"`
}

type updateProfileRequest struct {
	DisplayName *string `json:"display_name"`
}

type replaceDogsRequest struct {
	Dogs []social.Dog `json:"dogs"`
}

type createConnectionRequest struct {
	PeerID string `json:"peer_id"`
}

// --- parks ---

func (a *API) listParks(w http.ResponseWriter, r *http.Request) {
	parks, err := a.svc.Parks.LoadParks(r.Context())
	if err != nil {
		handleSocialError(w, r, err)
		return
	}
	social.SortParksByArea(parks)
	writeJSON(w, http.StatusOK, map[string]any{"items": parks})
}

func (a *API) getPark(w http.ResponseWriter, r *http.Request) {
	parkID := chi.URLParam(r, "parkID")
	park, err := a.svc.Parks.GetPark(r.Context(), parkID)
	if err != nil {
		handleSocialError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, park)
}

// --- ratings ---

func (a *API) listRatings(w http.ResponseWriter, r *http.Request) {
	parkID := chi.URLParam(r, "parkID")
	ratings, err := a.svc.Ratings.FetchRatings(r.Context(), parkID)
	if err != nil {
		handleSocialError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": ratings})
}

func (a *API) createRating(w http.ResponseWriter, r *http.Request) {
	userID, ok := identity.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createRatingRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Comment) > 2000 {
		writeError(w, r, http.StatusBadRequest, "comment too long")
		return
	}

	rating, err := a.svc.Ratings.AddRating(r.Context(), social.Rating{
		ParkID:  chi.URLParam(r, "parkID"),
		UserID:  userID,
		Stars:   req.Stars,
		Comment: strings.TrimSpace(req.Comment),
	})
	if err != nil {
		handleSocialError(w, r, err)
		return
	}

	obs.ObserveRating()
	_ = audit.LogEvent(r.Context(), "social.rating.create", map[string]any{
		"park_id": rating.ParkID,
		"stars":   strconv.Itoa(rating.Stars),
	})

	w.Header().Set("Location", "/v1/parks/"+rating.ParkID+"/ratings")
	writeJSON(w, http.StatusCreated, rating)
}

// --- profile ---

// getProfile creates the document on first sight so a fresh sign-in never
// sees a 404 while the bootstrapper is still catching up.
func (a *API) getProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	profile, err := a.svc.Profiles.GetProfile(r.Context(), userID)
	if errors.Is(err, social.ErrNotFound) {
		isGuest := identity.IsGuestFromContext(r.Context())
		if err := a.svc.Profiles.EnsureProfile(r.Context(), userID, isGuest, ""); err != nil {
			handleSocialError(w, r, err)
			return
		}
		profile, err = a.svc.Profiles.GetProfile(r.Context(), userID)
	}
	if err != nil {
		handleSocialError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (a *API) updateProfile(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.DisplayName == nil {
		writeError(w, r, http.StatusBadRequest, "display_name is required")
		return
	}
	if len(*req.DisplayName) > 100 {
		writeError(w, r, http.StatusBadRequest, "display_name too long")
		return
	}

	if err := a.svc.Profiles.UpdateDisplayName(r.Context(), userID, *req.DisplayName); err != nil {
		handleSocialError(w, r, err)
		return
	}

	profile, err := a.svc.Profiles.GetProfile(r.Context(), userID)
	if err != nil {
		handleSocialError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// --- favorites ---

func (a *API) listFavorites(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	favs, err := a.svc.Favorites.LoadFavorites(r.Context(), userID)
	if err != nil {
		handleSocialError(w, r, err)
		return
	}
	ids := make([]string, 0, len(favs))
	for id := range favs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	writeJSON(w, http.StatusOK, map[string]any{"items": ids})
}

func (a *API) toggleFavorite(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())
	parkID := chi.URLParam(r, "parkID")

	favorite, err := a.svc.Favorites.ToggleFavorite(r.Context(), userID, parkID)
	if err != nil {
		handleSocialError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"park_id":  parkID,
		"favorite": favorite,
	})
}

// --- dogs ---

func (a *API) listDogs(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	dogs, err := a.svc.Dogs.LoadDogs(r.Context(), userID)
	if err != nil {
		handleSocialError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": dogs})
}

func (a *API) replaceDogs(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	var req replaceDogsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if len(req.Dogs) > 50 {
		writeError(w, r, http.StatusBadRequest, "too many dogs")
		return
	}

	dogs, err := a.svc.Dogs.SetDogs(r.Context(), userID, req.Dogs)
	if err != nil {
		handleSocialError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": dogs})
}

// --- connections ---

func (a *API) listConnections(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	conns, err := a.svc.Connections.LoadConnections(r.Context(), userID)
	if err != nil {
		handleSocialError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": conns})
}

func (a *API) createConnection(w http.ResponseWriter, r *http.Request) {
	userID, _ := identity.UserIDFromContext(r.Context())

	var req createConnectionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	peerID := strings.TrimSpace(req.PeerID)
	if err := a.svc.Connections.AddMutualConnection(r.Context(), userID, peerID); err != nil {
		obs.ObservePairing("error")
		handleSocialError(w, r, err)
		return
	}

	obs.ObservePairing("ok")
	_ = audit.LogEvent(r.Context(), "social.connection.pair", map[string]any{
		"peer_id": peerID,
	})

	writeJSON(w, http.StatusCreated, map[string]any{
		"user_id":   userID,
		"friend_id": peerID,
	})
}

// --- error mapping ---

func handleSocialError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, social.ErrInvalidInput),
		errors.Is(err, social.ErrInvalidStars),
		errors.Is(err, social.ErrEmptyPeer),
		errors.Is(err, social.ErrInvalidPeerID),
		errors.Is(err, social.ErrSelfPair):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, social.ErrUnauthenticated):
		writeError(w, r, http.StatusUnauthorized, err.Error())
	case errors.Is(err, social.ErrNotFound):
		writeError(w, r, http.StatusNotFound, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
