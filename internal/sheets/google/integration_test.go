//go:build integration

package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"pocket/internal/core"
)

// Integration tests require real Google Sheets credentials
// Run with: go test -tags=integration ./internal/sheets/google

func TestIntegration_MirrorFlow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	spreadsheetID := os.Getenv("GOOGLE_SPREADSHEET_ID")
	if spreadsheetID == "" {
		t.Skip("GOOGLE_SPREADSHEET_ID not set, skipping integration test")
	}
	if os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON") == "" && os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE") == "" &&
		os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
		t.Skip("service account credentials not configured, skipping integration test")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := New(ctx, Options{
		SpreadsheetID:   spreadsheetID,
		SheetName:       os.Getenv("GOOGLE_SHEET_NAME"),
		CredentialsJSON: os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"),
		CredentialsFile: os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"),
	}, nil)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	tx := core.Transaction{
		ID:          "it-" + uuid.NewString(),
		Amount:      core.Money{Cents: 1234},
		Description: "Integration test row",
		Category:    "other",
		Type:        core.Expense,
		Date:        time.Now(),
	}

	if err := client.Upsert(ctx, tx); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	tx.Description = "Integration test row (updated)"
	if err := client.Upsert(ctx, tx); err != nil {
		t.Fatalf("Upsert existing: %v", err)
	}

	ids, err := client.readIDs(ctx)
	if err != nil {
		t.Fatalf("readIDs: %v", err)
	}
	if findRow(ids, tx.ID) == 0 {
		t.Fatal("row not found after upsert")
	}

	if err := client.Remove(ctx, tx.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	ids, err = client.readIDs(ctx)
	if err != nil {
		t.Fatalf("readIDs: %v", err)
	}
	if findRow(ids, tx.ID) != 0 {
		t.Error("row still present after remove")
	}
}
