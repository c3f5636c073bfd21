package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"galaxy/artifact"
	"galaxy/config"
	"galaxy/diagram"
	"galaxy/export"
	"galaxy/importer"
	"galaxy/palette"
	"galaxy/render"
	"galaxy/widget"
)

// Errors reported to clients.
var (
	ErrFileNotFound = errors.New("file not found")
	ErrPathEscape   = errors.New("path escapes the notebook root")
)

// maxBodyBytes bounds request bodies of the analyze endpoint.
const maxBodyBytes = 1 << 20

type Handler struct {
	cfg       *config.Config
	registry  *importer.ImporterRegistry
	notebooks *importer.NotebookImporter
	cache     *svgCache
	store     artifact.Store
}

// NewHandler creates the API handler. store may be nil, which disables the
// export endpoint.
func NewHandler(cfg *config.Config, store artifact.Store) (*Handler, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	cache, err := newSVGCache(cfg.CacheSize)
	if err != nil {
		return nil, err
	}
	return &Handler{
		cfg:       cfg,
		registry:  importer.NewImporterRegistry(),
		notebooks: importer.NewNotebookImporter(),
		cache:     cache,
		store:     store,
	}, nil
}

// Routes returns the API mux wrapped in CORS.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/galaxy/final_file", h.HandleFinalFile)
	mux.HandleFunc("/galaxy/analyze", h.HandleAnalyze)
	mux.HandleFunc("/galaxy/sankey.svg", h.HandleSankeySVG)
	mux.HandleFunc("/galaxy/schema", h.HandleSchema)
	mux.HandleFunc("/galaxy/export", h.HandleExport)
	mux.HandleFunc("/galaxy/ws", h.HandleSessionWS)
	return CORS(mux)
}

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorBody{Error: err.Error()})
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", r.Method))
	return false
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrFileNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPathEscape),
		errors.Is(err, diagram.ErrMalformedPayload),
		errors.Is(err, importer.ErrNotNotebook),
		errors.Is(err, importer.ErrUnknownFormat),
		errors.Is(err, errBadParam):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// dataFileStatus is the status of a failed data file load. A broken data file
// is a server problem, not a bad request.
func dataFileStatus(err error) int {
	if errors.Is(err, ErrFileNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// loadDataFile reads the stored payload. The raw bytes are returned for cache
// keys.
func (h *Handler) loadDataFile() (*diagram.Payload, []byte, error) {
	data, err := os.ReadFile(h.cfg.DataFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("read data file: %w", err)
	}
	imp, ok := h.registry.ForPath(h.cfg.DataFile)
	if !ok {
		if imp, err = h.registry.DetectFormat(string(data)); err != nil {
			return nil, nil, err
		}
	}
	p, err := imp.Import(string(data))
	if err != nil {
		return nil, nil, err
	}
	return p, data, nil
}

// HandleFinalFile serves the stored analysis payload as JSON.
func (h *Handler) HandleFinalFile(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	p, _, err := h.loadDataFile()
	if err != nil {
		if !errors.Is(err, ErrFileNotFound) {
			log.Printf("final_file: %v", err)
		}
		writeError(w, dataFileStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

type analyzeRequest struct {
	Paths []string `json:"paths"`
}

// HandleAnalyze reads the requested notebooks under the notebook root and
// returns their payload, one column per path in request order.
func (h *Handler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req analyzeRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}

	contents := make([]string, len(req.Paths))
	for i, p := range req.Paths {
		full, err := h.resolve(p)
		if err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		data, err := os.ReadFile(full)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				err = fmt.Errorf("%s: %w", p, ErrFileNotFound)
			}
			writeError(w, statusFor(err), err)
			return
		}
		contents[i] = string(data)
	}

	p, err := h.notebooks.ImportNotebooks(req.Paths, contents)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	log.Printf("analyze: %d notebooks", len(p.Notebooks))
	writeJSON(w, http.StatusOK, p)
}

// resolve joins a client path to the notebook root and rejects paths that
// leave it.
func (h *Handler) resolve(p string) (string, error) {
	root, err := filepath.Abs(h.cfg.NotebookRoot)
	if err != nil {
		return "", fmt.Errorf("resolve notebook root: %w", err)
	}
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("%w: empty path", errBadParam)
	}
	full := filepath.Join(root, filepath.FromSlash(p))
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s: %w", p, ErrPathEscape)
	}
	return full, nil
}

var errBadParam = errors.New("invalid parameter")

// renderParams are the query parameters shared by the rendering endpoints.
type renderParams struct {
	Width   float64
	Order   string
	Palette string
	Links   render.LinkStyle
}

func (p renderParams) String() string {
	return fmt.Sprintf("w=%g|o=%s|p=%s|l=%d", p.Width, p.Order, p.Palette, p.Links)
}

func (h *Handler) parseParams(r *http.Request) (renderParams, error) {
	q := r.URL.Query()
	params := renderParams{
		Width:   h.cfg.Width,
		Order:   strings.ReplaceAll(q.Get("order"), " ", ""),
		Palette: strings.ToLower(firstNonEmpty(q.Get("palette"), h.cfg.Palette)),
	}
	if raw := q.Get("width"); raw != "" {
		w, err := strconv.ParseFloat(raw, 64)
		if err != nil || w < 0 {
			return params, fmt.Errorf("%w: width %q", errBadParam, raw)
		}
		params.Width = w
	}
	style, err := render.ParseLinkStyle(q.Get("links"))
	if err != nil {
		return params, fmt.Errorf("%w: %v", errBadParam, err)
	}
	params.Links = style
	if _, err := palette.ByName(params.Palette); err != nil {
		return params, fmt.Errorf("%w: %v", errBadParam, err)
	}
	return params, nil
}

// widgetOptions converts parameters into widget options for a payload.
func widgetOptions(p *diagram.Payload, params renderParams) ([]widget.Option, error) {
	pal, err := palette.ByName(params.Palette)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadParam, err)
	}
	order, err := diagram.ParseColumnOrder(params.Order, len(p.Notebooks))
	if err != nil {
		return nil, fmt.Errorf("%w: order: %v", errBadParam, err)
	}
	return []widget.Option{
		widget.WithPalette(pal),
		widget.WithLinkStyle(params.Links),
		widget.WithOrder(order),
	}, nil
}

// renderOnce draws a payload with a private widget and exports it.
func renderOnce(p *diagram.Payload, params renderParams, format export.Format) ([]byte, error) {
	opts, err := widgetOptions(p, params)
	if err != nil {
		return nil, err
	}
	c := widget.NewHeadless(params.Width, 0)
	wd, err := widget.RenderSankey(c, p, nil, opts...)
	if err != nil {
		return nil, err
	}
	exp, err := export.NewExporter(format, export.WithLinkStyle(params.Links))
	if err != nil {
		return nil, err
	}
	return exp.Export(wd.Frame())
}

// HandleSankeySVG renders the stored payload. Results are cached per payload
// content and parameters.
func (h *Handler) HandleSankeySVG(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	params, err := h.parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, raw, err := h.loadDataFile()
	if err != nil {
		writeError(w, dataFileStatus(err), err)
		return
	}

	key := cacheKey(raw, params)
	svg, hit := h.cache.get(key)
	if !hit {
		if svg, err = renderOnce(p, params, export.FormatSVG); err != nil {
			writeError(w, statusFor(err), err)
			return
		}
		h.cache.add(key, svg)
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	_, _ = w.Write(svg)
}

// HandleSchema serves the JSON schema of the analysis payload.
func (h *Handler) HandleSchema(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	data, err := importer.PayloadSchemaJSON()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.Header().Set("Content-Type", "application/schema+json")
	_, _ = w.Write(data)
}

type exportResponse struct {
	Key    string `json:"key"`
	URL    string `json:"url"`
	Format string `json:"format"`
	Size   int    `json:"size"`
}

// HandleExport renders the stored payload in the requested format and uploads
// it to the artifact store.
func (h *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	if h.store == nil {
		writeError(w, http.StatusServiceUnavailable, errors.New("artifact store is not configured"))
		return
	}
	format, err := export.ParseFormat(firstNonEmpty(r.URL.Query().Get("format"), string(export.FormatSVG)))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	params, err := h.parseParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, _, err := h.loadDataFile()
	if err != nil {
		writeError(w, dataFileStatus(err), err)
		return
	}
	data, err := renderOnce(p, params, format)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()
	exp, _ := export.NewExporter(format)
	key, url, err := artifact.Upload(ctx, h.store, "sankey"+exp.GetFileExtension(), data)
	if err != nil {
		log.Printf("export upload failed: %v", err)
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, exportResponse{Key: key, URL: url, Format: string(format), Size: len(data)})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
