package admin

import (
	"net/http"
	"time"

	"coderoom/config"
	"coderoom/middleware"
	"coderoom/rooms"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/sirupsen/logrus"
)

// Languages is the configured allow-list consumed by room creation: the
// validity check plus the default language for requests that omit one.
type Languages interface {
	IsValid(language string) bool
	Languages() []string
}

type (
	loginRequest struct {
		Name     string `json:"name"`
		Password string `json:"password"`
	}

	createRoomRequest struct {
		Name     string `json:"name"`
		Language string `json:"language"`
	}
)

// HandleLogin verifies a name/password pair against the configured admin
// accounts and sets the session cookie.
func HandleLogin(cfg *config.Config, sessions *Sessions) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload loginRequest
		if err := render.DecodeJSON(r.Body, &payload); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid login payload"})
			return
		}

		admin, ok := cfg.Authenticate(payload.Name, payload.Password)
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "Invalid credentials"})
			return
		}

		token, err := sessions.Issue(admin)
		if err != nil {
			logrus.WithField("error", err).Error("Failed to issue admin session")
			render.Status(r, http.StatusInternalServerError)
			render.JSON(w, r, map[string]string{"error": "Failed to create session"})
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		render.JSON(w, r, admin)
	}
}

// HandleLogout clears the session cookie.
func HandleLogout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.SetCookie(w, &http.Cookie{
			Name:     CookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			Expires:  time.Unix(0, 0),
		})
		render.JSON(w, r, map[string]string{"status": "ok"})
	}
}

// HandleListRooms returns summaries of all rooms, sorted by name, scoped to
// the requesting admin's delete permission.
func HandleListRooms(manager *rooms.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, ok := middleware.AdminFrom(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "Admin session required"})
			return
		}

		views := manager.RoomsSnapshot(admin)
		if views == nil {
			views = []rooms.RoomView{}
		}
		render.JSON(w, r, views)
	}
}

// HandleCreateRoom creates a room owned by the requesting admin. The language
// defaults to the first configured one when omitted.
func HandleCreateRoom(manager *rooms.Manager, languages Languages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, ok := middleware.AdminFrom(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "Admin session required"})
			return
		}

		var payload createRoomRequest
		if err := render.DecodeJSON(r.Body, &payload); err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid room payload"})
			return
		}
		if payload.Name == "" {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Name is required"})
			return
		}

		language := payload.Language
		if language == "" {
			configured := languages.Languages()
			if len(configured) == 0 {
				render.Status(r, http.StatusInternalServerError)
				render.JSON(w, r, map[string]string{"error": "No languages configured"})
				return
			}
			language = configured[0]
		}
		if !languages.IsValid(language) {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": "Invalid language"})
			return
		}

		room, err := manager.CreateRoom(payload.Name, language, admin)
		if err != nil {
			render.Status(r, http.StatusBadRequest)
			render.JSON(w, r, map[string]string{"error": err.Error()})
			return
		}

		snapshot := room.Snapshot()
		render.JSON(w, r, map[string]any{
			"roomId":    snapshot.ID,
			"name":      snapshot.Name,
			"language":  snapshot.Language,
			"createdBy": snapshot.CreatedBy,
		})
	}
}

// HandleDeleteRoom deletes a room on behalf of the requesting admin.
func HandleDeleteRoom(manager *rooms.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		admin, ok := middleware.AdminFrom(r.Context())
		if !ok {
			render.Status(r, http.StatusUnauthorized)
			render.JSON(w, r, map[string]string{"error": "Admin session required"})
			return
		}

		roomID := chi.URLParam(r, "roomID")
		result, err := manager.DeleteRoom(r.Context(), roomID, admin)
		if err != nil {
			logrus.WithFields(logrus.Fields{"room_id": roomID, "error": err}).Warn("Room deletion aborted")
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, map[string]string{"error": "Deletion canceled"})
			return
		}

		switch result {
		case rooms.Deleted:
			render.JSON(w, r, map[string]string{"status": "ok"})
		case rooms.Forbidden:
			render.Status(r, http.StatusForbidden)
			render.JSON(w, r, map[string]string{"error": "Not allowed to delete this room"})
		default:
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Room not found"})
		}
	}
}

// HandleRoomProbe reports whether a room exists. Unknown and unparsable ids
// answer uniformly with 404 so nothing leaks about the id format.
func HandleRoomProbe(manager *rooms.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roomID := chi.URLParam(r, "roomID")
		if _, ok := manager.TryGetRoom(roomID); !ok {
			render.Status(r, http.StatusNotFound)
			render.JSON(w, r, map[string]string{"error": "Room not found"})
			return
		}
		render.JSON(w, r, map[string]string{"roomId": roomID})
	}
}
