package imgfsd

import (
	"io"
	"net/http"

	"github.com/epfl-sysnet/imgfs/internal/imgfs"
)

const maxInsertBodyBytes = 32 << 20 // generous cap on an uploaded image

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	body, err := s.engine.List(imgfs.ListJSON)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, body)
}

func (s *Server) handleRead(w http.ResponseWriter, r *http.Request) {
	imgID := r.URL.Query().Get("img_id")
	if imgID == "" {
		writeEngineError(w, imgfs.ErrInvalidArgument)
		return
	}

	res, err := imgfs.ParseResolution(r.URL.Query().Get("res"))
	if err != nil {
		writeEngineError(w, err)
		return
	}

	data, err := s.engine.Read(imgID, res)
	if err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	imgID := r.URL.Query().Get("img_id")
	if imgID == "" {
		writeEngineError(w, imgfs.ErrInvalidArgument)
		return
	}

	if err := s.engine.Delete(imgID); err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Location", "/index.html")
	w.WriteHeader(http.StatusFound)
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	imgID := r.URL.Query().Get("name")
	if imgID == "" {
		writeEngineError(w, imgfs.ErrInvalidArgument)
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxInsertBodyBytes+1))
	if err != nil {
		writeEngineError(w, imgfs.ErrIO)
		return
	}

	if len(body) > maxInsertBodyBytes {
		writeEngineError(w, imgfs.ErrInvalidArgument)
		return
	}

	if err := s.engine.Insert(body, imgID); err != nil {
		writeEngineError(w, err)
		return
	}

	w.Header().Set("Location", "/index.html")
	w.WriteHeader(http.StatusFound)
}
