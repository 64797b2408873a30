package lineitems

import (
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/conviteapp/convite-backend/pkg/db/models"
	pkgerrors "github.com/conviteapp/convite-backend/pkg/errors"
)

// validateItems checks every row before persistence. All offending rows are
// reported together, identified by 1-based position and name, so a save with
// three bad rows surfaces three messages rather than one per attempt.
func validateItems(items []models.LineItem) error {
	var combined error
	for idx, item := range items {
		row := idx + 1
		label := strings.TrimSpace(item.Name)
		if label == "" {
			label = "(unnamed)"
		}
		if strings.TrimSpace(item.Name) == "" {
			combined = multierr.Append(combined, fmt.Errorf("row %d %s: name is required", row, label))
		}
		if item.Quantity < 0 {
			combined = multierr.Append(combined, fmt.Errorf("row %d %s: quantity cannot be negative", row, label))
		}
		if item.UnitPrice < 0 {
			combined = multierr.Append(combined, fmt.Errorf("row %d %s: unit price cannot be negative", row, label))
		}
	}
	if combined == nil {
		return nil
	}
	messages := make([]string, 0, len(multierr.Errors(combined)))
	for _, err := range multierr.Errors(combined) {
		messages = append(messages, err.Error())
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "invalid line items").WithDetails(messages)
}
