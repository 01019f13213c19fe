package stamper

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"signflow/internal/config"
	"signflow/internal/domain/entity"
	"signflow/internal/infrastructure/resilience"
)

const (
	maxBodyLogLength = 500 // Maximum characters to log for body
	maxStoredBody    = 10000

	stampPath      = "/stamp"
	stampOperation = "stamper.stamp"

	defaultElementWidth  = 180.0
	defaultElementHeight = 60.0
)

var base64Pattern = regexp.MustCompile(`"([A-Za-z0-9+/=]{100,})"`)

// DocumentStamper produces the final document with one visible mark per signature
type DocumentStamper interface {
	Stamp(ctx context.Context, job *entity.StampJob) ([]byte, error)
}

// APILogSaver interface for saving API logs
type APILogSaver interface {
	Save(ctx context.Context, log *entity.APILog) error
}

// StatusError is returned for non-2xx stamping responses
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("stamper error: status=%d, body=%s", e.StatusCode, truncateString(e.Body, maxBodyLogLength))
}

type httpStamper struct {
	client        *http.Client
	baseURL       string
	hmacSignature *HMACSignature
	executor      *resilience.Executor
	apiLogSaver   APILogSaver
	countPages    func([]byte) (int, error)
	logger        *zap.Logger
}

func NewDocumentStamper(cfg *config.Config, executor *resilience.Executor, apiLogSaver APILogSaver, logger *zap.Logger) DocumentStamper {
	s := &httpStamper{
		client: &http.Client{
			Timeout: cfg.Stamper.Timeout,
		},
		baseURL:       strings.TrimRight(cfg.Stamper.BaseURL, "/"),
		hmacSignature: NewHMACSignature(cfg.Stamper.ClientID, cfg.Stamper.ClientSecret),
		executor:      executor,
		apiLogSaver:   apiLogSaver,
		countPages:    countPDFPages,
		logger:        logger,
	}

	logger.Info("Document stamper initialized with HMAC authentication",
		zap.String("base_url", s.baseURL),
		zap.String("client_id", cfg.Stamper.ClientID),
	)

	return s
}

func (s *httpStamper) Stamp(ctx context.Context, job *entity.StampJob) ([]byte, error) {
	if job == nil || len(job.Content) == 0 {
		return nil, fmt.Errorf("%w: empty document", entity.ErrUnsupportedDocument)
	}
	if len(job.Stamps) == 0 {
		return nil, fmt.Errorf("no stamps to apply")
	}

	pages, err := s.countPages(job.Content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUnsupportedDocument, err)
	}

	req := &entity.StampRequest{
		Doc:      base64.StdEncoding.EncodeToString(job.Content),
		Filename: job.Filename,
		Page:     pages,
		Stamps:   job.Stamps,
		Canvas: &entity.StampCanvas{
			Width:         entity.DefaultCanvasWidth,
			Height:        entity.DefaultCanvasHeight,
			ElementWidth:  defaultElementWidth,
			ElementHeight: defaultElementHeight,
		},
	}

	s.logger.Info("Stamping document",
		zap.String("request_id", job.RequestID),
		zap.String("filename", job.Filename),
		zap.Int("page", pages),
		zap.Int("stamps", len(job.Stamps)),
	)

	var response entity.StampResponse
	err = s.executor.Execute(ctx, stampOperation, func(ctx context.Context) error {
		response = entity.StampResponse{}
		return s.post(ctx, job.RequestID, stampPath, req, &response)
	}, classifyStampError)
	if err != nil {
		return nil, fmt.Errorf("failed to stamp document: %w", err)
	}

	if response.Data == nil || response.Data.Doc == "" {
		return nil, fmt.Errorf("stamper returned no document: %s", response.Message)
	}

	stamped, err := base64.StdEncoding.DecodeString(response.Data.Doc)
	if err != nil {
		return nil, fmt.Errorf("failed to decode stamped document: %w", err)
	}

	s.logger.Info("Document stamped successfully",
		zap.String("request_id", job.RequestID),
		zap.Int("size_bytes", len(stamped)),
	)

	return stamped, nil
}

func (s *httpStamper) post(ctx context.Context, requestID, path string, body interface{}, result interface{}) error {
	fullURL := s.baseURL + path

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(jsonBody))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if err := s.hmacSignature.SignRequest(req); err != nil {
		return err
	}

	s.logRequest(http.MethodPost, fullURL, req.Header, jsonBody)

	startTime := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	duration := time.Since(startTime)

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	s.logResponse(resp.StatusCode, resp.Status, duration, respBody)
	s.saveAPILog(http.MethodPost, fullURL, jsonBody, respBody, resp.StatusCode, duration, requestID)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

func classifyStampError(err error) resilience.ErrorClassification {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= 500:
			return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
		default:
			return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
		}
	}
	return resilience.ClassifyTransport(err)
}

// truncateString truncates a string if it exceeds maxLength
func truncateString(s string, maxLength int) string {
	if len(s) <= maxLength {
		return s
	}
	return s[:maxLength] + fmt.Sprintf("... [truncated, total %d chars]", len(s))
}

// truncateBase64InJSON truncates base64-like values in JSON string
func truncateBase64InJSON(jsonStr string, maxLength int) string {
	return base64Pattern.ReplaceAllStringFunc(jsonStr, func(match string) string {
		content := match[1 : len(match)-1]
		if len(content) > maxLength {
			return fmt.Sprintf(`"%s... [base64 truncated, total %d chars]"`, content[:maxLength], len(content))
		}
		return match
	})
}

func (s *httpStamper) logRequest(method, url string, headers http.Header, body []byte) {
	s.logger.Debug("Stamper request",
		zap.String("method", method),
		zap.String("url", url),
		zap.String("date", headers.Get("Date")),
		zap.String("body", truncateString(truncateBase64InJSON(string(body), 100), maxBodyLogLength)),
	)
}

func (s *httpStamper) logResponse(statusCode int, statusText string, duration time.Duration, body []byte) {
	s.logger.Debug("Stamper response",
		zap.Int("status_code", statusCode),
		zap.String("status", statusText),
		zap.Duration("duration", duration),
		zap.String("body", truncateString(truncateBase64InJSON(string(body), 100), maxBodyLogLength)),
	)
}

// saveAPILog stores the call asynchronously so the stamping path never waits on it
func (s *httpStamper) saveAPILog(method, endpoint string, requestBody, responseBody []byte, statusCode int, duration time.Duration, requestID string) {
	if s.apiLogSaver == nil {
		return
	}

	reqBodyStr := ""
	if len(requestBody) > 0 {
		reqBodyStr = truncateBase64InJSON(string(requestBody), 100)
		if len(reqBodyStr) > maxStoredBody {
			reqBodyStr = reqBodyStr[:maxStoredBody] + "... [truncated]"
		}
	}

	respBodyStr := truncateBase64InJSON(string(responseBody), 100)
	if len(respBodyStr) > maxStoredBody {
		respBodyStr = respBodyStr[:maxStoredBody] + "... [truncated]"
	}

	apiLog := &entity.APILog{
		Endpoint:     endpoint,
		Method:       method,
		RequestBody:  reqBodyStr,
		ResponseBody: respBodyStr,
		StatusCode:   statusCode,
		Duration:     duration.Milliseconds(),
		RequestID:    requestID,
		CreatedAt:    time.Now(),
	}

	go func() {
		if err := s.apiLogSaver.Save(context.Background(), apiLog); err != nil {
			s.logger.Warn("Failed to save API log to database",
				zap.String("endpoint", endpoint),
				zap.Error(err),
			)
		}
	}()
}
