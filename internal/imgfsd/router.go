package imgfsd

import (
	"io"
	"log"
	"net/http"

	"github.com/epfl-sysnet/imgfs/internal/imgfs"
)

// Server adapts [imgfs.Engine] operations to HTTP, per the routing table in
// spec.md §4.G.
type Server struct {
	engine   *imgfs.Engine
	baseFile string
	log      *log.Logger
}

// NewServer returns a [Server] bound to engine, serving cfg.BaseFile as the
// static root.
func NewServer(engine *imgfs.Engine, cfg Config, logOut io.Writer) *Server {
	return &Server{
		engine:   engine,
		baseFile: cfg.BaseFile,
		log:      log.New(logOut, "imgfsd: ", log.LstdFlags),
	}
}

// Handler builds the route table described in spec.md §4.G: exact URI
// prefix match after method check.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.withLog(s.handleIndex))
	mux.HandleFunc("/index.html", s.withLog(s.handleIndex))
	mux.HandleFunc("/imgfs/list", s.withLog(s.methodGuard(http.MethodGet, s.handleList)))
	mux.HandleFunc("/imgfs/read", s.withLog(s.methodGuard(http.MethodGet, s.handleRead)))
	mux.HandleFunc("/imgfs/delete", s.withLog(s.methodGuard(http.MethodGet, s.handleDelete)))
	mux.HandleFunc("/imgfs/insert", s.withLog(s.methodGuard(http.MethodPost, s.handleInsert)))

	return mux
}

// methodGuard maps a request with the wrong method to the spec's catch-all:
// 500 with an engine-style error message (spec.md §4.G "any other").
func (s *Server) methodGuard(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			writeEngineError(w, imgfs.ErrInvalidCommand)
			return
		}

		next(w, r)
	}
}

func (s *Server) withLog(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.log.Printf("%s %s", r.Method, r.URL.Path)
		next(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		writeEngineError(w, imgfs.ErrInvalidCommand)
		return
	}

	if r.Method != http.MethodGet {
		writeEngineError(w, imgfs.ErrInvalidCommand)
		return
	}

	http.ServeFile(w, r, s.baseFile)
}

// writeEngineError maps any engine error to 500 with its textual message,
// per spec.md §7 (no special mapping for ErrDuplicateID).
func writeEngineError(w http.ResponseWriter, err error) {
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
