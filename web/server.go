// Package web serves the viewer canvas to a browser and turns browser input into viewer events.
package web

import (
	"context"
	"encoding/json"
	"image"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"go.uber.org/atomic"
	"goji.io"
	"goji.io/pat"

	"go.viam.com/kinectviewer/calibration"
	"go.viam.com/kinectviewer/logging"
	"go.viam.com/kinectviewer/viewer"
)

// DefaultPreviewWidth is the width of /preview.jpg when none is asked for.
const DefaultPreviewWidth = 640

// ErrNoFrame is returned before the first frame has been presented.
var ErrNoFrame = errors.New("no frame presented yet")

// control is one adjustable value and its allowed range.
type control struct {
	value    atomic.Int64
	min, max int
}

// Server is a viewer Display backed by a browser page. It is safe to use from the render loop
// and HTTP handlers at once.
type Server struct {
	queue         *viewer.EventQueue
	logger        logging.Logger
	controls      map[string]*control
	names         []string
	followPointer bool

	mu     sync.RWMutex
	latest *image.NRGBA
	frames atomic.Int64
}

// NewServer returns a server that pushes browser input onto queue. trackbarMax bounds the min
// and range controls. Pointer movement is only forwarded when followPointer is set.
func NewServer(queue *viewer.EventQueue, trackbarMax int, followPointer bool, logger logging.Logger) *Server {
	return &Server{
		queue:         queue,
		logger:        logger,
		followPointer: followPointer,
		controls: map[string]*control{
			calibration.ControlMin:   {max: trackbarMax},
			calibration.ControlRange: {max: trackbarMax},
			calibration.ControlBlend: {max: 100},
		},
		names: viewer.Controls,
	}
}

// Present keeps a copy of img for browsers to fetch.
func (s *Server) Present(ctx context.Context, img image.Image) error {
	cp := imaging.Clone(img)
	s.mu.Lock()
	s.latest = cp
	s.mu.Unlock()
	s.frames.Inc()
	return nil
}

// Latest returns the last presented image.
func (s *Server) Latest() (*image.NRGBA, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoFrame
	}
	return s.latest, nil
}

// AdjustableValue returns a control value, zero for unknown names.
func (s *Server) AdjustableValue(name string) int {
	c, ok := s.controls[name]
	if !ok {
		return 0
	}
	return int(c.value.Load())
}

// SetAdjustableValue sets a control, limited to its range. Unknown names are ignored.
func (s *Server) SetAdjustableValue(name string, value int) {
	c, ok := s.controls[name]
	if !ok {
		return
	}
	c.value.Store(int64(min(max(value, c.min), c.max)))
}

// Handler returns the HTTP routes of the page.
func (s *Server) Handler() http.Handler {
	mux := goji.NewMux()
	mux.HandleFunc(pat.Get("/"), s.handleIndex)
	mux.HandleFunc(pat.Get("/canvas.png"), s.handleCanvas)
	mux.HandleFunc(pat.Get("/preview.jpg"), s.handlePreview)
	mux.HandleFunc(pat.Post("/click"), s.handleClick)
	mux.HandleFunc(pat.Post("/key"), s.handleKey)
	mux.HandleFunc(pat.Get("/controls"), s.handleGetControls)
	mux.HandleFunc(pat.Post("/controls"), s.handleSetControls)
	return cors.AllowAll().Handler(mux)
}

// Frames returns how many images were presented.
func (s *Server) Frames() int64 {
	return s.frames.Load()
}

// Serve listens on addr until ctx is done.
func (s *Server) Serve(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "cannot listen on %q", addr)
	}
	return s.ServeListener(ctx, listener)
}

// ServeListener serves on listener until ctx is done.
func (s *Server) ServeListener(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Infow("serving viewer", "url", "http://"+listener.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.Serve(listener)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Controls:      make([]pageControl, 0, len(s.names)),
		FollowPointer: s.followPointer,
	}
	for _, name := range s.names {
		c := s.controls[name]
		data.Controls = append(data.Controls, pageControl{
			Name:  name,
			Min:   c.min,
			Max:   c.max,
			Value: int(c.value.Load()),
		})
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Debugw("couldn't execute web page", "error", err)
	}
}

func (s *Server) writeImage(w http.ResponseWriter, img image.Image, format imaging.Format) {
	switch format {
	case imaging.JPEG:
		w.Header().Set("Content-Type", "image/jpeg")
	default:
		w.Header().Set("Content-Type", "image/png")
	}
	w.Header().Set("Cache-Control", "no-store")
	if err := imaging.Encode(w, img, format); err != nil {
		s.logger.Debugw("couldn't encode image", "error", err)
	}
}

func (s *Server) handleCanvas(w http.ResponseWriter, r *http.Request) {
	img, err := s.Latest()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	s.writeImage(w, img, imaging.PNG)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	img, err := s.Latest()
	if err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	width := DefaultPreviewWidth
	if q := r.URL.Query().Get("width"); q != "" {
		width, err = strconv.Atoi(q)
		if err != nil || width <= 0 {
			http.Error(w, "width must be a positive integer", http.StatusBadRequest)
			return
		}
	}
	if width < img.Bounds().Dx() {
		s.writeImage(w, resize.Resize(uint(width), 0, img, resize.Bilinear), imaging.JPEG)
		return
	}
	s.writeImage(w, img, imaging.JPEG)
}

type clickRequest struct {
	X     int  `json:"x"`
	Y     int  `json:"y"`
	Press bool `json:"press"`
}

type keyRequest struct {
	Key string `json:"key"`
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		http.Error(w, "bad request body: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) enqueue(w http.ResponseWriter, ev viewer.Event) {
	if !s.queue.Push(ev) {
		http.Error(w, "viewer is busy", http.StatusTooManyRequests)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (s *Server) handleClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if !req.Press && !s.followPointer {
		w.WriteHeader(http.StatusAccepted)
		return
	}
	s.enqueue(w, viewer.ClickEvent{X: req.X, Y: req.Y, Press: req.Press})
}

// keyCode converts a browser key name into a key code.
func keyCode(key string) (rune, bool) {
	if key == "Escape" || key == "Esc" {
		return viewer.KeyEscape, true
	}
	runes := []rune(key)
	if len(runes) != 1 {
		return 0, false
	}
	return runes[0], true
}

func (s *Server) handleKey(w http.ResponseWriter, r *http.Request) {
	var req keyRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	code, ok := keyCode(req.Key)
	if !ok {
		http.Error(w, "unsupported key "+strconv.Quote(req.Key), http.StatusBadRequest)
		return
	}
	s.enqueue(w, viewer.KeyEvent{Code: code})
}

func (s *Server) controlValues() map[string]int {
	out := make(map[string]int, len(s.controls))
	for name := range s.controls {
		out[name] = s.AdjustableValue(name)
	}
	return out
}

func (s *Server) writeControls(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(s.controlValues()); err != nil {
		s.logger.Debugw("couldn't encode controls", "error", err)
	}
}

func (s *Server) handleGetControls(w http.ResponseWriter, r *http.Request) {
	s.writeControls(w)
}

func (s *Server) handleSetControls(w http.ResponseWriter, r *http.Request) {
	var req map[string]int
	if !decodeJSON(w, r, &req) {
		return
	}
	for name := range req {
		if _, ok := s.controls[name]; !ok {
			http.Error(w, "unknown control "+strconv.Quote(name), http.StatusBadRequest)
			return
		}
	}
	for name, v := range req {
		s.SetAdjustableValue(name, v)
	}
	s.writeControls(w)
}
