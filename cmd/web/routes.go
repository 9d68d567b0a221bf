package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/AdamBeresnev/courtside/internal/httputil"
	"github.com/AdamBeresnev/courtside/internal/live"
	"github.com/AdamBeresnev/courtside/internal/score"
	"github.com/AdamBeresnev/courtside/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

type application struct {
	tournaments    *service.TournamentService
	matches        *service.MatchService
	hub            *live.Hub
	allowedOrigins []string
}

func newRouter(app *application) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: app.allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/tournaments", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var input service.TournamentInput
			if err := httputil.ReadJSON(w, r, &input); err != nil {
				httputil.BadRequest(w, "Invalid tournament", err)
				return
			}

			id, err := app.tournaments.CreateTournament(r.Context(), input)
			if err != nil {
				httputil.ServiceError(w, "Failed to create tournament", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, map[string]uuid.UUID{"id": id})
		})

		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}

			data, err := app.tournaments.GetTournament(r.Context(), id)
			if err != nil {
				httputil.ServiceError(w, "Failed to get tournament", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, data)
		})

		r.Post("/{id}/players", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}

			inputs, err := readPlayers(w, r)
			if err != nil {
				httputil.BadRequest(w, "Invalid player list", err)
				return
			}

			players, err := app.tournaments.RegisterPlayers(r.Context(), id, inputs)
			if err != nil {
				httputil.ServiceError(w, "Failed to register players", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, players)
		})

		r.Post("/{id}/bracket", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}

			result, err := app.tournaments.GenerateBracket(r.Context(), id)
			if err != nil {
				httputil.ServiceError(w, "Failed to generate bracket", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, result)
		})
	})

	r.Route("/nodes/{id}", func(r chi.Router) {
		r.Post("/advance", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}

			var body struct {
				WinnerID uuid.UUID `json:"winner_id"`
			}
			if err := httputil.ReadJSON(w, r, &body); err != nil || body.WinnerID == uuid.Nil {
				httputil.BadRequest(w, "winner_id is required", err)
				return
			}

			next, err := app.tournaments.AdvanceWinner(r.Context(), id, body.WinnerID)
			if err != nil {
				httputil.ServiceError(w, "Failed to advance winner", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, map[string]any{"next": next, "champion": next == nil})
		})

		r.Post("/match", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}

			matchID, err := app.tournaments.StartNodeMatch(r.Context(), id)
			if err != nil {
				httputil.ServiceError(w, "Failed to create node match", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, map[string]uuid.UUID{"id": matchID})
		})
	})

	r.Route("/matches", func(r chi.Router) {
		r.Post("/", func(w http.ResponseWriter, r *http.Request) {
			var input service.MatchInput
			if err := httputil.ReadJSON(w, r, &input); err != nil {
				httputil.BadRequest(w, "Invalid match", err)
				return
			}

			id, err := app.matches.CreateMatch(r.Context(), input)
			if err != nil {
				httputil.ServiceError(w, "Failed to create match", err)
				return
			}
			httputil.WriteJSON(w, http.StatusCreated, map[string]uuid.UUID{"id": id})
		})

		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}

			view, err := app.matches.GetMatch(r.Context(), id)
			if err != nil {
				httputil.ServiceError(w, "Failed to get match", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, view)
		})

		r.Get("/{id}/history", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}

			history, err := app.matches.History(r.Context(), id)
			if err != nil {
				httputil.ServiceError(w, "Failed to get match history", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, history)
		})

		r.Post("/{id}/start", app.scoreHandler(app.matches.StartMatch))
		r.Post("/{id}/undo", app.scoreHandler(app.matches.Undo))
		r.Post("/{id}/redo", app.scoreHandler(app.matches.Redo))

		// {player} is "home", "away" or a player's name
		r.Post("/{id}/point/{player}", func(w http.ResponseWriter, r *http.Request) {
			id, ok := pathID(w, r)
			if !ok {
				return
			}

			player, err := url.PathUnescape(chi.URLParam(r, "player"))
			if err != nil {
				httputil.BadRequest(w, "Invalid player", err)
				return
			}

			var summary score.Summary
			if side, sideErr := score.ParseSide(player); sideErr == nil {
				summary, err = app.matches.Point(r.Context(), id, side)
			} else {
				summary, err = app.matches.PointByName(r.Context(), id, player)
			}
			if err != nil {
				httputil.ServiceError(w, "Failed to score point", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, summary)
		})
	})

	r.Get("/ws/{room}", func(w http.ResponseWriter, r *http.Request) {
		room := chi.URLParam(r, "room")
		if _, err := uuid.Parse(room); err != nil {
			httputil.BadRequest(w, "Room must be a match or tournament id", err)
			return
		}
		app.hub.ServeWS(w, r, room)
	})

	return r
}

func (app *application) scoreHandler(op func(ctx context.Context, id uuid.UUID) (score.Summary, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := pathID(w, r)
		if !ok {
			return
		}

		summary, err := op(r.Context(), id)
		if err != nil {
			httputil.ServiceError(w, "Failed to update score", err)
			return
		}
		httputil.WriteJSON(w, http.StatusOK, summary)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "Invalid id", err)
		return uuid.Nil, false
	}
	return id, true
}

// readPlayers accepts either a JSON list of players or a plain text body
// with one player per line.
func readPlayers(w http.ResponseWriter, r *http.Request) ([]service.PlayerInput, error) {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "text/plain") {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
		if err != nil {
			return nil, err
		}
		return service.ParsePlayerList(string(body))
	}

	var body struct {
		Players []service.PlayerInput `json:"players"`
	}
	if err := httputil.ReadJSON(w, r, &body); err != nil {
		return nil, err
	}
	if len(body.Players) == 0 {
		return nil, errors.New("players list is empty")
	}
	return body.Players, nil
}
