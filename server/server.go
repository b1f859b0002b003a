package server

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"net/http"
	"sync"
	"time"

	"github.com/achilleasa/spheretrace/asset/scene"
	"github.com/achilleasa/spheretrace/log"
	"github.com/achilleasa/spheretrace/renderer"
	"github.com/achilleasa/spheretrace/tracer"
	"github.com/labstack/echo/v4"
)

// Header carrying the id of a rendered frame.
const FrameIdHeader = "X-Frame-Id"

// Upper bounds for render requests.
type Limits struct {
	MaxFrameW          uint32
	MaxFrameH          uint32
	MaxSamplesPerPixel uint32
	MaxBounces         uint32
}

// An HTTP service that renders previews of a compiled scene.
type Server struct {
	logger log.Logger
	echo   *echo.Echo

	scene    *scene.Scene
	defaults renderer.Options
	limits   Limits

	// Renders are serialized; each one already uses all cpu cores.
	renderMutex sync.Mutex
}

// Create a server for a scene. Request parameters that are not specified
// fall back to the values in defaults.
func New(sc *scene.Scene, defaults renderer.Options, limits Limits) *Server {
	s := &Server{
		logger:   log.New("server"),
		echo:     echo.New(),
		scene:    sc,
		defaults: defaults,
		limits:   limits,
	}

	s.echo.HideBanner = true
	s.echo.HidePort = true
	s.echo.Use(s.requestLogger)
	s.echo.GET("/render", s.render)
	s.echo.GET("/scene", s.sceneInfo)

	return s
}

// Get the http handler for the server routes.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Listen for requests on addr until Shutdown is called.
func (s *Server) Start(addr string) error {
	s.logger.Noticef("listening on %s", addr)
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Gracefully stop the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)
		if err != nil {
			c.Error(err)
		}
		s.logger.Infof("%s %s -> %d (%d ms)", c.Request().Method, c.Request().URL.String(), c.Response().Status, time.Since(start).Nanoseconds()/1e6)
		return nil
	}
}

// Render the scene and reply with a PNG image.
//
// Supported query parameters: width, height, spp, bounces, seed, normals.
func (s *Server) render(c echo.Context) error {
	opts := s.defaults
	err := echo.QueryParamsBinder(c).
		Uint32("width", &opts.FrameW).
		Uint32("height", &opts.FrameH).
		Uint32("spp", &opts.SamplesPerPixel).
		Uint32("bounces", &opts.NumBounces).
		Uint64("seed", &opts.Seed).
		Bool("normals", &opts.DebugNormals).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err = s.checkLimits(opts); err != nil {
		return err
	}

	s.renderMutex.Lock()
	defer s.renderMutex.Unlock()

	r, err := renderer.NewDefault(s.scene, tracer.PerfectScheduler(), opts)
	if err != nil {
		return toHTTPError(err)
	}
	defer r.Close()

	if err = r.Render(c.Request().Context()); err != nil {
		return toHTTPError(err)
	}

	var buf bytes.Buffer
	if err = png.Encode(&buf, r.Frame()); err != nil {
		return err
	}

	stats := r.Stats()
	s.logger.Debugf("frame statistics\n%s", stats.String())
	c.Response().Header().Set(FrameIdHeader, stats.FrameId)
	return c.Blob(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) checkLimits(opts renderer.Options) error {
	switch {
	case s.limits.MaxFrameW != 0 && opts.FrameW > s.limits.MaxFrameW,
		s.limits.MaxFrameH != 0 && opts.FrameH > s.limits.MaxFrameH:
		return echo.NewHTTPError(http.StatusBadRequest, "requested frame dimensions exceed server limits")
	case s.limits.MaxSamplesPerPixel != 0 && opts.SamplesPerPixel > s.limits.MaxSamplesPerPixel:
		return echo.NewHTTPError(http.StatusBadRequest, "requested samples per pixel exceed server limits")
	case s.limits.MaxBounces != 0 && opts.NumBounces > s.limits.MaxBounces:
		return echo.NewHTTPError(http.StatusBadRequest, "requested bounces exceed server limits")
	}
	return nil
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, renderer.ErrInvalidOptions):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, renderer.ErrInterrupted):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	return err
}

type cameraInfo struct {
	LookFrom  [3]float32 `json:"look_from"`
	LookAt    [3]float32 `json:"look_at"`
	Up        [3]float32 `json:"up"`
	FOV       float32    `json:"vfov"`
	Aperture  float32    `json:"aperture"`
	FocusDist float32    `json:"focus_distance"`
}

type sceneInfo struct {
	Spheres   int            `json:"spheres"`
	BvhNodes  int            `json:"bvh_nodes"`
	Materials map[string]int `json:"materials"`
	Camera    *cameraInfo    `json:"camera,omitempty"`
}

// Reply with a JSON summary of the scene.
func (s *Server) sceneInfo(c echo.Context) error {
	info := sceneInfo{
		Spheres:   len(s.scene.SphereList),
		BvhNodes:  len(s.scene.BvhNodeList),
		Materials: make(map[string]int),
	}
	for index := range s.scene.SphereList {
		info.Materials[s.scene.SphereList[index].Material.Kind.String()]++
	}
	if cam := s.scene.Camera; cam != nil {
		info.Camera = &cameraInfo{
			LookFrom:  cam.LookFrom,
			LookAt:    cam.LookAt,
			Up:        cam.Up,
			FOV:       cam.FOV,
			Aperture:  cam.Aperture,
			FocusDist: cam.FocusDist,
		}
	}
	return c.JSON(http.StatusOK, info)
}
