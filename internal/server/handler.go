package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

func (s Server) writeJsonResponse(w http.ResponseWriter, response any, statusCode int) {
	if resp, err := json.Marshal(response); err != nil {
		s.Logger.Errorf("Error encoding response: %+v, err: %v", response, err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	} else {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(statusCode)
		if _, err = w.Write(resp); err != nil {
			s.Logger.Errorf("Error writing JSON response: %s, err: %v", resp, err)
		}
	}
}

func (s Server) notFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.Logger.Debugf("notFoundHandler: Requested resource not found, TraceID: %s", getTraceContext(r.Context()).traceID)
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	}
}

// serveEventStream writes each view received on emit as one SSE data frame
// until the channel closes, which happens when the client disconnects.
func serveEventStream[T any](s Server, w http.ResponseWriter, r *http.Request, views <-chan []T) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.Logger.Errorf("serveEventStream: ResponseWriter does not support flushing, TraceID: %s",
			getTraceContext(r.Context()).traceID)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	for view := range views {
		b, err := json.Marshal(view)
		if err != nil {
			s.Logger.Errorf("serveEventStream: Error encoding view: %+v, err: %v", view, err)
			continue
		}
		if _, err = fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
			s.Logger.Debugf("serveEventStream: Error writing event, client likely gone, err: %v", err)
			return
		}
		flusher.Flush()
	}
}
