package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"placehub/internal/app/places"
	"placehub/internal/models"
)

// maxImageSize caps multipart uploads at 8 MiB.
const maxImageSize = 8 << 20

type placeResponse struct {
	Place models.PlaceResponse `json:"place"`
}

type placesResponse struct {
	Places []models.PlaceResponse `json:"places"`
}

func (s *Server) handleListPlaces(w http.ResponseWriter, r *http.Request) {
	list, err := s.places.List(r.Context())
	if err != nil {
		writePlaceError(w, r, err)
		return
	}
	if len(list) == 0 {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "no places found"})
		return
	}
	writeJSON(w, http.StatusOK, placesResponse{Places: models.NewPlaceResponses(list)})
}

func (s *Server) handleGetPlace(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid place ID"})
		return
	}

	p, err := s.places.Get(r.Context(), id)
	if err != nil {
		writePlaceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placeResponse{Place: models.NewPlaceResponse(p)})
}

func (s *Server) handlePlacesByOwner(w http.ResponseWriter, r *http.Request) {
	ownerID, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid user ID"})
		return
	}

	list, err := s.places.ListByOwner(r.Context(), ownerID)
	if err != nil {
		writePlaceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placesResponse{Places: models.NewPlaceResponses(list)})
}

func (s *Server) handleCreatePlace(w http.ResponseWriter, r *http.Request, callerID int64) {
	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid multipart payload"})
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "image file is required"})
		return
	}
	defer file.Close()

	// Read one byte past the cap so an at-limit file and an over-limit file
	// are distinguishable; LimitReader alone would truncate silently.
	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "could not read image"})
		return
	}
	if len(data) > maxImageSize {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "image exceeds the 8 MiB limit"})
		return
	}

	created, err := s.places.Create(r.Context(), callerID, places.CreateInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Address:     r.FormValue("address"),
		Image:       data,
		ImageName:   header.Filename,
	})
	if err != nil {
		writePlaceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, placeResponse{Place: models.NewPlaceResponse(created)})
}

type updatePlaceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (s *Server) handleUpdatePlace(w http.ResponseWriter, r *http.Request, callerID int64) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid place ID"})
		return
	}

	var req updatePlaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: "invalid JSON payload"})
		return
	}

	updated, err := s.places.Update(r.Context(), callerID, id, req.Title, req.Description)
	if err != nil {
		writePlaceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, placeResponse{Place: models.NewPlaceResponse(updated)})
}

func (s *Server) handleDeletePlace(w http.ResponseWriter, r *http.Request, callerID int64) {
	id, err := parseID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid place ID"})
		return
	}

	if err := s.places.Delete(r.Context(), callerID, id); err != nil {
		writePlaceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Deleted place."})
}

func parseID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}
