package validation

import (
	"fmt"
	"os"

	"github.com/gilchrisn/nhc-service/pkg/models"
	"github.com/gilchrisn/nhc-service/pkg/parser"
)

// LoadAndValidateCohort loads a case gene list and validates its structure
func LoadAndValidateCohort(filePath string) (*models.Cohort, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("case gene list does not exist: %s", filePath)
	}

	cohort, err := parser.LoadCases(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse case gene list: %w", err)
	}

	if err := ValidateCohort(cohort); err != nil {
		return nil, fmt.Errorf("case gene list validation failed: %w", err)
	}

	return cohort, nil
}

// LoadAndValidatePathways loads a pathway reference and validates its structure
func LoadAndValidatePathways(filePath string) (*models.PathwayReference, error) {
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		return nil, fmt.Errorf("pathway file does not exist: %s", filePath)
	}

	reference, err := parser.LoadPathways(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pathway file: %w", err)
	}

	if err := ValidatePathways(reference); err != nil {
		return nil, fmt.Errorf("pathway validation failed: %w", err)
	}

	return reference, nil
}

// ValidateCohort checks that case IDs are unique and every case carries genes.
// An empty cohort is valid and simply produces no clusters.
func ValidateCohort(cohort *models.Cohort) error {
	var errors models.ValidationErrors

	seen := make(map[string]bool, cohort.Size())
	for _, c := range cohort.Cases {
		if seen[c.ID] {
			errors = append(errors, models.ValidationError{
				Field:   "case.id",
				Message: "duplicate case ID",
				Value:   c.ID,
			})
		}
		seen[c.ID] = true

		if c.Genes.Len() == 0 {
			errors = append(errors, models.ValidationError{
				Field:   "case.genes",
				Message: "case has no genes",
				Value:   c.ID,
			})
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidatePathways checks that pathway IDs are unique and non-empty
func ValidatePathways(reference *models.PathwayReference) error {
	var errors models.ValidationErrors

	seen := make(map[string]bool, reference.Size())
	for _, p := range reference.Pathways {
		if seen[p.ID] {
			errors = append(errors, models.ValidationError{
				Field:   "pathway.id",
				Message: "duplicate pathway ID",
				Value:   p.ID,
			})
		}
		seen[p.ID] = true

		if p.Genes.Len() == 0 {
			errors = append(errors, models.ValidationError{
				Field:   "pathway.genes",
				Message: "pathway has no genes",
				Value:   p.ID,
			})
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}

// ValidateConnectivity rejects negative connectivity counts
func ValidateConnectivity(connectivity models.Connectivity) error {
	var errors models.ValidationErrors
	for gene, count := range connectivity {
		if count < 0 {
			errors = append(errors, models.ValidationError{
				Field:   "connectivity",
				Message: fmt.Sprintf("negative connectivity %d", count),
				Value:   gene,
			})
		}
	}

	if len(errors) > 0 {
		return errors
	}
	return nil
}
