package server

import (
	"net/http"
	"time"

	"consumerwise/internal/database"
	"consumerwise/internal/feed"
	"consumerwise/internal/model"
	"consumerwise/internal/projector"
)

func (s Server) notificationList() http.HandlerFunc {
	type response struct {
		Notifications []model.Message `json:"notifications"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		ms, err := s.DB.MessagesFindAll(r.Context())
		if err != nil {
			s.Logger.Errorf("notificationList: Error finding Messages, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		// Opening the list marks everything read, for every viewer. The
		// read flag is global, not tracked per viewer.
		modified, err := s.DB.MessagesMarkAllRead(r.Context())
		if err != nil {
			s.Logger.Errorf("notificationList: Error marking Messages read, err: %v", err)
		} else if modified > 0 {
			if err = s.Feed.Publish(r.Context(), database.CollectionMessages, ""); err != nil {
				s.Logger.Errorf("notificationList: Error publishing Message change, err: %v", err)
			}
		}

		s.writeJsonResponse(w, response{
			Notifications: projector.ProjectMessages(ms, messagePipelineFromQuery(r)),
		}, http.StatusOK)
	}
}

func (s Server) notificationWatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p := messagePipelineFromQuery(r)
		sub := feed.Subscribe(r.Context(), s.RDB, database.CollectionMessages, s.Logger)
		live := projector.NewLive(
			r.Context(),
			sub.C,
			sub.Close,
			s.DB.MessagesFindAll,
			func(ms []model.Message) []model.Message { return projector.ProjectMessages(ms, p) },
			nil,
			s.Logger,
		)
		defer func() {
			if err := live.Close(); err != nil {
				s.Logger.Errorf("notificationWatch: Error closing live projection, err: %v", err)
			}
		}()
		serveEventStream(s, w, r, live.C)
	}
}

func messagePipelineFromQuery(r *http.Request) projector.MessagePipeline {
	q := r.URL.Query()
	p := projector.MessagePipeline{Search: q.Get("search")}
	if from, err := time.Parse(time.RFC3339, q.Get("from")); err == nil {
		p.From = from
	}
	if to, err := time.Parse(time.RFC3339, q.Get("to")); err == nil {
		p.To = to
	}
	return p
}
