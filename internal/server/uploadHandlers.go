package server

import (
	"net/http"
)

func (s Server) upload() http.HandlerFunc {
	type response struct {
		URL string `json:"url"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			s.Logger.Debugf("upload: Error parsing multipart form, err: %v", err)
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
			return
		}
		file, _, err := r.FormFile("image")
		if err != nil {
			s.Logger.Debugf("upload: Error getting image from form, err: %v", err)
			http.Error(w, "image: image file is required", http.StatusBadRequest)
			return
		}
		defer func() {
			if err := file.Close(); err != nil {
				s.Logger.Errorf("upload: Error closing uploaded file, err: %v", err)
			}
		}()

		url, err := s.Client.ImageUpload(r.Context(), file)
		if err != nil {
			s.Logger.Errorf("upload: Error uploading image, err: %v", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		s.writeJsonResponse(w, response{URL: url}, http.StatusCreated)
	}
}
