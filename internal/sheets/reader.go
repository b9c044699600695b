package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/Veraticus/kanso/internal/common"
	"github.com/Veraticus/kanso/internal/service"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Reader implements the SheetSource interface for Google Sheets.
type Reader struct {
	service *sheets.Service
	logger  *slog.Logger
	config  Config
}

var _ service.SheetSource = (*Reader)(nil)

// NewReader creates a new Google Sheets reader.
func NewReader(ctx context.Context, config Config, logger *slog.Logger) (*Reader, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	svc, err := createSheetsService(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Reader{
		config:  config,
		service: svc,
		logger:  logger,
	}, nil
}

// FetchValues reads the raw cell grid of one worksheet, headers included.
func (r *Reader) FetchValues(ctx context.Context, sheet string) ([][]any, error) {
	r.logger.Debug("fetching worksheet", "sheet", sheet)

	retryOpts := service.RetryOptions{
		MaxAttempts:  r.config.RetryAttempts,
		InitialDelay: r.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var resp *sheets.ValueRange
	err := common.WithRetry(ctx, func() error {
		var getErr error
		resp, getErr = r.service.Spreadsheets.Values.
			Get(r.config.SpreadsheetID, sheet).
			ValueRenderOption("UNFORMATTED_VALUE").
			Context(ctx).
			Do()
		return classifyAPIError(getErr)
	}, retryOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch worksheet %q: %w", sheet, err)
	}

	return resp.Values, nil
}

// classifyAPIError maps Google API failures onto the error sentinels so
// retry and display logic can distinguish them.
func classifyAPIError(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusTooManyRequests:
			return fmt.Errorf("%w: %v", common.ErrSheetsRateLimit, err)
		case http.StatusNotFound, http.StatusBadRequest:
			// The Sheets API reports an unknown worksheet range as a 400.
			// Not worth retrying.
			return &common.RetryableError{
				Err:       fmt.Errorf("%w: %v", common.ErrSheetNotFound, err),
				Retryable: false,
			}
		}
		if apiErr.Code >= 500 {
			return fmt.Errorf("%w: %v", common.ErrSheetsConnection, err)
		}
		return err
	}

	return fmt.Errorf("%w: %v", common.ErrSheetsConnection, err)
}

// createSheetsService creates a Google Sheets API service.
func createSheetsService(ctx context.Context, config Config) (*sheets.Service, error) {
	var client *oauth2.Config
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		// Use service account authentication
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsReadonlyScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}

		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		// Use OAuth2 authentication
		client = &oauth2.Config{
			ClientID:     config.ClientID,
			ClientSecret: config.ClientSecret,
			Endpoint:     google.Endpoint,
			Scopes:       []string{sheets.SpreadsheetsReadonlyScope},
		}

		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}

		tokenSource = client.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}

	return srv, nil
}
