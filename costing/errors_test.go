package costing_test

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/obralink/cost-engine/costing"
	"github.com/obralink/cost-engine/registry"
	"github.com/obralink/cost-engine/workcal"
)

func TestIsClientError(t *testing.T) {
	// GIVEN: The errors a caller can cause with bad input
	// WHEN: Classifying them, wrapped or not
	// THEN: All map to client errors; system failures do not

	clientErrs := []error{
		&costing.InvalidRangeError{EmployeeID: "emp-1", ProjectID: "prj-1"},
		&registry.NotFoundError{Kind: "project", ID: "ghost"},
		&workcal.DayNotFoundError{EmployeeID: "emp-1", Year: 2025, Month: time.June},
		workcal.ErrInvalidAbsenceKind,
		fmt.Errorf("patch day: %w", workcal.ErrInvalidAbsenceKind),
	}
	for _, err := range clientErrs {
		assert.True(t, costing.IsClientError(err), "expected client error: %v", err)
	}

	assert.False(t, costing.IsClientError(errors.New("disk full")))
	assert.False(t, costing.IsClientError(nil))
}
