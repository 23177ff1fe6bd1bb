package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"sageset/web/internal/domain"
	"sageset/web/internal/logger"
	"sageset/web/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Feedback list filters as offered by the triage view.
const (
	TypeAll       = "all"
	StatusOpen    = "open"
	StatusAll     = "all"
	DefaultStatus = StatusOpen
)

// FeedbackFilter narrows the triage list. Type is all, bug or feature. Status
// is open, all, addressed or closed; open means neither addressed nor closed.
type FeedbackFilter struct {
	Type   string
	Status string
}

// FeedbackStats are counted over all feedback regardless of the filter.
type FeedbackStats struct {
	Total    int `json:"total"`
	Bugs     int `json:"bugs"`
	Features int `json:"features"`
	Open     int `json:"open"`
}

// FeedbackSnapshot is what the live triage view renders.
type FeedbackSnapshot struct {
	Items []domain.FeedbackItem `json:"items"`
	Stats FeedbackStats         `json:"stats"`
}

// --- Service Interface ---
type FeedbackService interface {
	List(ctx context.Context, filter FeedbackFilter) (*FeedbackSnapshot, error)
	UpdateStatus(ctx context.Context, id string, status domain.FeedbackStatus) error
	UpdatePriority(ctx context.Context, id string, priority domain.FeedbackPriority) error
	AddNote(ctx context.Context, id, text, author string) (*domain.FeedbackNote, error)
	Snapshot(ctx context.Context) (FeedbackSnapshot, error)
}

// --- Service Implementation ---

type feedbackService struct {
	repo repository.FeedbackRepository
	log  *logger.Logger
	now  func() time.Time
}

func NewFeedbackService(repo repository.FeedbackRepository, log *logger.Logger) FeedbackService {
	return &feedbackService{
		repo: repo,
		log:  log.With("service", "Feedback"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// List returns the filtered items, newest first, with stats over every item.
func (s *feedbackService) List(ctx context.Context, filter FeedbackFilter) (*FeedbackSnapshot, error) {
	if err := ValidateFilter(filter); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	return &FeedbackSnapshot{
		Items: FilterFeedback(items, filter),
		Stats: Stats(items),
	}, nil
}

func (s *feedbackService) Snapshot(ctx context.Context) (FeedbackSnapshot, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return FeedbackSnapshot{}, storeUnavailable(err)
	}
	return FeedbackSnapshot{Items: items, Stats: Stats(items)}, nil
}

func (s *feedbackService) UpdateStatus(ctx context.Context, id string, status domain.FeedbackStatus) error {
	if !status.Valid() {
		return validationFailed("unknown status %q", status)
	}
	return s.setFields(ctx, id, map[string]any{"status": status})
}

func (s *feedbackService) UpdatePriority(ctx context.Context, id string, priority domain.FeedbackPriority) error {
	if !priority.Valid() {
		return validationFailed("unknown priority %q", priority)
	}
	return s.setFields(ctx, id, map[string]any{"priority": priority})
}

// AddNote appends a triage note signed by author.
func (s *feedbackService) AddNote(ctx context.Context, id, text, author string) (*domain.FeedbackNote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, validationFailed("note text is required")
	}
	oid, err := parseFeedbackID(id)
	if err != nil {
		return nil, err
	}

	note := domain.FeedbackNote{Text: text, AddedBy: author, AddedAt: s.now()}
	if err := s.repo.AppendNote(ctx, oid, note); err != nil {
		return nil, s.mapErr(err, id)
	}
	return &note, nil
}

func (s *feedbackService) setFields(ctx context.Context, id string, fields map[string]any) error {
	oid, err := parseFeedbackID(id)
	if err != nil {
		return err
	}
	if err := s.repo.SetFields(ctx, oid, fields); err != nil {
		return s.mapErr(err, id)
	}
	s.log.Debug("Feedback updated", "id", id, "fields", fields)
	return nil
}

func (s *feedbackService) mapErr(err error, id string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrFeedbackNotFound, id)
	}
	return storeUnavailable(err)
}

func parseFeedbackID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %s", ErrFeedbackNotFound, id)
	}
	return oid, nil
}

// ValidateFilter rejects unknown type and status filter values.
func ValidateFilter(f FeedbackFilter) error {
	switch domain.FeedbackType(f.Type) {
	case "", TypeAll, domain.FeedbackBug, domain.FeedbackFeature:
	default:
		return validationFailed("unknown type filter %q", f.Type)
	}
	switch f.Status {
	case "", StatusOpen, StatusAll, string(domain.StatusAddressed), string(domain.StatusClosed):
	default:
		return validationFailed("unknown status filter %q", f.Status)
	}
	return nil
}

// FilterFeedback keeps the items matching f. An empty Status means open.
func FilterFeedback(items []domain.FeedbackItem, f FeedbackFilter) []domain.FeedbackItem {
	status := f.Status
	if status == "" {
		status = DefaultStatus
	}
	out := []domain.FeedbackItem{}
	for _, it := range items {
		if f.Type != "" && f.Type != TypeAll && string(it.Type) != f.Type {
			continue
		}
		switch status {
		case StatusOpen:
			if !it.Status.Open() {
				continue
			}
		case StatusAll:
		default:
			if string(it.Status) != status {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

func Stats(items []domain.FeedbackItem) FeedbackStats {
	st := FeedbackStats{Total: len(items)}
	for _, it := range items {
		switch it.Type {
		case domain.FeedbackBug:
			st.Bugs++
		case domain.FeedbackFeature:
			st.Features++
		}
		if it.Status.Open() {
			st.Open++
		}
	}
	return st
}
