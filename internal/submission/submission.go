package submission

import "time"

// Submission is one unit of submitter content on its way to the publish
// queue: the photo set, the caption describing brand and price, and the
// submitter context needed to reply and to publish.
type Submission struct {
	SubmitterID int64
	ChatID      int64
	// MessageID is the submitter-side message the submission came from. For
	// multi-part batches it is the id of the last part received.
	MessageID int
	// GroupID ties parts of one multi-part batch together. Empty for
	// single-photo submissions.
	GroupID string
	FileIDs []string
	Caption string
	// CorrectionTargetID, when non-zero, marks this submission as a
	// correction of the post that carries this message id.
	CorrectionTargetID int
	ReceivedAt         time.Time
}

// Merge folds another part of the same batch into the submission. File ids
// are unioned preserving first-seen order, a non-empty caption from the new
// part wins, and the latest message id is kept.
func (s *Submission) Merge(part Submission) {
	seen := make(map[string]struct{}, len(s.FileIDs))
	for _, id := range s.FileIDs {
		seen[id] = struct{}{}
	}
	for _, id := range part.FileIDs {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			s.FileIDs = append(s.FileIDs, id)
		}
	}
	if part.Caption != "" {
		s.Caption = part.Caption
	}
	if part.MessageID > s.MessageID {
		s.MessageID = part.MessageID
	}
	if part.CorrectionTargetID != 0 {
		s.CorrectionTargetID = part.CorrectionTargetID
	}
}
