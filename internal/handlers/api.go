package handlers

import (
	stderrors "errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"ecommerce-eda/internal/errors"
	"ecommerce-eda/internal/observability"
	"ecommerce-eda/internal/pipeline"
	"ecommerce-eda/internal/services"
)

const (
	cacheControl     = "public, max-age=300"
	maxLimit         = 1000
	uploadFormField  = "file"
	multipartMaxMem  = 1 << 20
	defaultUploadMax = 10 << 20
)

// Limits bounds what a single request may ask for.
type Limits struct {
	TopCustomers   int
	UploadMaxBytes int64
}

type APIHandlers struct {
	analytics *services.Analytics
	logger    *slog.Logger
	limits    Limits
	validate  *validator.Validate
}

func NewAPIHandlers(analytics *services.Analytics, logger *slog.Logger, limits Limits) *APIHandlers {
	if limits.TopCustomers <= 0 {
		limits.TopCustomers = pipeline.DefaultTopCustomers
	}
	if limits.UploadMaxBytes <= 0 {
		limits.UploadMaxBytes = defaultUploadMax
	}
	return &APIHandlers{
		analytics: analytics,
		logger:    logger,
		limits:    limits,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

type topCustomersQuery struct {
	Limit int `validate:"min=1,max=1000"`
}

type revenueKeyParam struct {
	Key string `validate:"required,oneof=customer_id category region payment_method"`
}

func (h *APIHandlers) HandleReport(w http.ResponseWriter, r *http.Request) {
	report := h.analytics.Report()
	if report == nil {
		h.writeError(w, r, services.ErrNoData)
		return
	}
	errors.WriteSuccessWithHeaders(w, report, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleTopCustomers(w http.ResponseWriter, r *http.Request) {
	q := topCustomersQuery{Limit: h.limits.TopCustomers}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			h.writeError(w, r, errors.BadRequestWrap(err, "limit must be an integer"))
			return
		}
		q.Limit = n
	}
	if err := h.validate.Struct(q); err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "limit must be between 1 and "+strconv.Itoa(maxLimit)))
		return
	}

	data, err := h.analytics.TopCustomers(q.Limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleRevenue(w http.ResponseWriter, r *http.Request) {
	p := revenueKeyParam{Key: r.PathValue("key")}
	if err := h.validate.Struct(p); err != nil {
		h.writeError(w, r, errors.BadRequestWrap(err, "unknown grouping key "+strconv.Quote(p.Key)))
		return
	}

	data, err := h.analytics.RevenueBy(pipeline.GroupKey(p.Key))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleRevenueTrend(w http.ResponseWriter, r *http.Request) {
	data, err := h.analytics.RevenueTrend()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleIndependence(w http.ResponseWriter, r *http.Request) {
	data, err := h.analytics.Independence()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleCorrelation(w http.ResponseWriter, r *http.Request) {
	data, err := h.analytics.Correlation()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

func (h *APIHandlers) HandleSummary(w http.ResponseWriter, r *http.Request) {
	data, err := h.analytics.Summary()
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, data, map[string]string{"Cache-Control": cacheControl})
}

// HandleAnalyze runs the pipeline over an uploaded CSV, sent either as the
// raw request body or as the "file" field of a multipart form. The served
// dataset is left untouched.
func (h *APIHandlers) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		h.writeError(w, r, errors.Validation("upload is empty"))
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, h.limits.UploadMaxBytes)

	body, closeBody, err := uploadBody(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	defer closeBody()

	report, err := h.analytics.Analyze(r.Context(), body)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	errors.WriteSuccessWithHeaders(w, report, map[string]string{"Cache-Control": "no-store"})
}

func uploadBody(r *http.Request) (io.Reader, func(), error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, func() {}, nil
	}

	if err := r.ParseMultipartForm(multipartMaxMem); err != nil {
		return nil, nil, err
	}
	file, _, err := r.FormFile(uploadFormField)
	if err != nil {
		return nil, nil, errors.BadRequestWrap(err, "multipart upload needs a \"file\" field")
	}
	return file, func() { file.Close() }, nil
}

func (h *APIHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	healthData := map[string]any{
		"status":      "healthy",
		"timestamp":   time.Now().Format(time.RFC3339),
		"version":     "1.0.0",
		"data_loaded": h.analytics.Report() != nil,
	}

	errors.WriteSuccess(w, healthData)
}

func (h *APIHandlers) HandleStats(w http.ResponseWriter, r *http.Request) {
	stats := h.analytics.Stats()

	errors.WriteSuccess(w, stats)
}

func (h *APIHandlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *errors.AppError
	switch {
	case stderrors.As(err, &appErr):
	case stderrors.Is(err, services.ErrNoData):
		err = errors.ServiceUnavailable("dataset not loaded")
	default:
		err = errors.FromPipeline(err)
	}
	errors.WriteError(w, h.logger, err, observability.GetRequestID(r.Context()))
}
