package photosort

import (
	"fmt"

	"photosort/internal/model"
)

// GetHistory returns the most recent operations, ordered newest first.
func (s *PhotosortService) GetHistory(limit int) ([]*model.Operation, error) {
	ops, err := s.database.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}
