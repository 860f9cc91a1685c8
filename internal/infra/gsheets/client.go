package gsheets

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/TabbyLane/genai-usecase-chatbot/internal/domain"
)

// Client appends finalized use cases to a Google Sheet, one row per session.
// Authorization uses a service-account credential blob; its absence is a
// recoverable condition reported at submission time, never a crash.
type Client struct {
	credentialsJSON []byte
	spreadsheetID   string
	worksheet       string
	endpoint        string
}

func NewClient(credentialsJSON []byte, spreadsheetID, worksheet string) *Client {
	return &Client{
		credentialsJSON: credentialsJSON,
		spreadsheetID:   spreadsheetID,
		worksheet:       worksheet,
	}
}

// NewClientWithEndpoint targets an alternate API endpoint without
// authentication. Test use only.
func NewClientWithEndpoint(credentialsJSON []byte, spreadsheetID, worksheet, endpoint string) *Client {
	c := NewClient(credentialsJSON, spreadsheetID, worksheet)
	c.endpoint = endpoint
	return c
}

// Export appends the record's row to the configured worksheet using
// spreadsheet-native value interpretation, matching what a user typing the
// values would get.
func (c *Client) Export(ctx context.Context, record *domain.UseCaseRecord) error {
	if len(bytes.TrimSpace(c.credentialsJSON)) == 0 || c.spreadsheetID == "" {
		return domain.ErrMissingCredentials
	}

	var opts []option.ClientOption
	if c.endpoint != "" {
		opts = append(opts, option.WithEndpoint(c.endpoint), option.WithoutAuthentication())
	} else {
		creds, err := google.CredentialsFromJSON(ctx, c.credentialsJSON, sheets.SpreadsheetsScope)
		if err != nil {
			return fmt.Errorf("%w: %v", domain.ErrMissingCredentials, err)
		}
		opts = append(opts, option.WithCredentials(creds))
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return fmt.Errorf("creating sheets service: %w", err)
	}

	row := record.Row()
	values := make([]interface{}, len(row))
	for i, col := range row {
		values[i] = col
	}

	_, err = svc.Spreadsheets.Values.
		Append(c.spreadsheetID, c.worksheet, &sheets.ValueRange{Values: [][]interface{}{values}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("appending row: %w", err)
	}

	return nil
}
