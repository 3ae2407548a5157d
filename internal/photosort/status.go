package photosort

import (
	"fmt"

	"photosort/internal/model"
)

// SessionStatus is the state of one scan session and the passes run on it.
type SessionStatus struct {
	Session *model.ScanSession
	Stats   *model.SessionStats
	Plan    []*model.PlanCount
}

// GetStatus returns every scan session with its counters, oldest first.
func (s *PhotosortService) GetStatus() ([]*SessionStatus, error) {
	s.logger.Debug("computing status")

	sessions, err := s.database.ListScanSessions()
	if err != nil {
		return nil, err
	}

	statuses := make([]*SessionStatus, 0, len(sessions))
	for _, session := range sessions {
		stats, err := s.database.SessionStats(session.ID)
		if err != nil {
			return nil, fmt.Errorf("computing stats for session %d: %w", session.ID, err)
		}
		plan, err := s.database.SummarizePlan(session.ID)
		if err != nil {
			return nil, fmt.Errorf("summarizing plan for session %d: %w", session.ID, err)
		}
		statuses = append(statuses, &SessionStatus{Session: session, Stats: stats, Plan: plan})
	}
	return statuses, nil
}

// FolderPlanDetail is a folder plan with the plans of its files.
type FolderPlanDetail struct {
	Folder *model.FolderPlan
	Files  []*model.FilePlan
}

// GetPlan returns the stored plan of a session (0 for the latest completed
// one). At most limit folders are returned when limit is positive.
func (s *PhotosortService) GetPlan(sessionID int64, limit int) (*model.ScanSession, []*FolderPlanDetail, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, nil, err
	}

	folders, err := s.database.ListFolderPlans(session.ID)
	if err != nil {
		return nil, nil, err
	}
	if limit > 0 && len(folders) > limit {
		folders = folders[:limit]
	}

	details := make([]*FolderPlanDetail, 0, len(folders))
	for _, f := range folders {
		files, err := s.database.ListFilePlans(f.ID)
		if err != nil {
			return nil, nil, err
		}
		details = append(details, &FolderPlanDetail{Folder: f, Files: files})
	}
	return session, details, nil
}
