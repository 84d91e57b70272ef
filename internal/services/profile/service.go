package profile

import (
	"context"
	"errors"
	"time"

	"github.com/benvon/profile-sync/internal/database"
	"github.com/benvon/profile-sync/internal/events"
	"github.com/benvon/profile-sync/internal/logger"
	"github.com/benvon/profile-sync/internal/models"
	"github.com/benvon/profile-sync/internal/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const tracerName = "github.com/benvon/profile-sync/internal/services/profile"

// Service reads the current profile, reconciles it against an incoming event
// and persists the result in a single store write.
type Service struct {
	store     database.ProfileStore
	publisher events.Publisher
	logger    *zap.Logger
	tracer    trace.Tracer
	now       func() time.Time
}

// NewService creates a new profile service
func NewService(store database.ProfileStore, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:  store,
		logger: log,
		tracer: otel.Tracer(tracerName),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// WithPublisher sets where profile change events are sent. A nil publisher
// disables events.
func (s *Service) WithPublisher(p events.Publisher) *Service {
	s.publisher = p
	return s
}

// GetProfile returns the stored profile for a user
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, invalid("userId", "User ID is required")
	}

	ctx, span := s.tracer.Start(ctx, "profile.get", trace.WithAttributes(attribute.String("user.id", userID)))
	defer span.End()

	current, err := s.load(ctx, userID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	if current == nil {
		return nil, ErrNotFound
	}
	return current, nil
}

// SyncIdentity applies an identity-provider event, creating the profile on
// first contact. Sticky fields already set are never overwritten.
func (s *Service) SyncIdentity(ctx context.Context, event models.IdentityEvent) (*models.Profile, error) {
	if event.UserID == "" || event.Email == "" {
		return nil, invalid("", "User ID and email are required")
	}
	if err := validation.Validate.Struct(event); err != nil {
		return nil, invalid("", validation.Describe(err))
	}

	ctx, span := s.tracer.Start(ctx, "profile.sync_identity", trace.WithAttributes(attribute.String("user.id", event.UserID)))
	defer span.End()

	current, err := s.load(ctx, event.UserID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	payload, err := ReconcileIdentitySync(event, current, s.now())
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	result, err := s.write(ctx, payload)
	if errors.Is(err, database.ErrProfileExists) {
		// Lost a create race to a concurrent sign-in; reconcile against the winner
		s.logger.Debug("profile_create_conflict",
			zap.String("user_id", logger.SanitizeUserID(event.UserID)),
		)
		current, err = s.load(ctx, event.UserID)
		if err == nil && current == nil {
			err = ErrNotFound
		}
		if err == nil {
			payload, err = ReconcileIdentitySync(event, current, s.now())
		}
		if err == nil {
			result, err = s.write(ctx, payload)
		}
	}
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	span.SetAttributes(attribute.String("profile.write", payload.Kind.String()))
	s.logger.Info("profile_synced",
		zap.String("user_id", logger.SanitizeUserID(event.UserID)),
		zap.String("write", payload.Kind.String()),
		zap.Strings("fields", fieldNames(payload.Fields.Changed())),
	)

	eventType := events.TypeProfileSynced
	if payload.Kind == models.WriteCreate {
		eventType = events.TypeProfileCreated
	}
	s.publish(ctx, eventType, payload)
	return result, nil
}

// ApplyEdit applies an explicit user edit. Present fields are written as given.
func (s *Service) ApplyEdit(ctx context.Context, edit models.UserEdit) (*models.Profile, error) {
	if edit.UserID == "" {
		return nil, invalid("", "User ID is required")
	}
	if err := validateEdit(edit); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "profile.apply_edit", trace.WithAttributes(attribute.String("user.id", edit.UserID)))
	defer span.End()

	current, err := s.load(ctx, edit.UserID)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	payload, err := ReconcileUserEdit(edit, current, s.now())
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	result, err := s.write(ctx, payload)
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	s.logger.Info("profile_edited",
		zap.String("user_id", logger.SanitizeUserID(edit.UserID)),
		zap.Strings("fields", fieldNames(payload.Fields.Changed())),
	)
	s.publish(ctx, events.TypeProfileEdited, payload)
	return result, nil
}

// load reads the current profile; a missing row is reported as nil
func (s *Service) load(ctx context.Context, userID string) (*models.Profile, error) {
	current, err := s.store.GetByID(ctx, userID)
	if errors.Is(err, database.ErrProfileNotFound) {
		return nil, nil
	}
	if err != nil {
		s.logger.Error("profile_store_read_failed",
			zap.String("user_id", logger.SanitizeUserID(userID)),
			zap.String("error", logger.SanitizeError(err)),
		)
		return nil, unavailable("get profile", err)
	}
	return current, nil
}

func (s *Service) write(ctx context.Context, payload models.WritePayload) (*models.Profile, error) {
	var (
		result *models.Profile
		err    error
	)
	switch payload.Kind {
	case models.WriteCreate:
		result, err = s.store.Create(ctx, payload)
	default:
		result, err = s.store.Update(ctx, payload)
	}

	switch {
	case err == nil:
		return result, nil
	case errors.Is(err, database.ErrProfileExists):
		return nil, err
	case errors.Is(err, database.ErrProfileNotFound):
		return nil, ErrNotFound
	default:
		s.logger.Error("profile_store_write_failed",
			zap.String("user_id", logger.SanitizeUserID(payload.UserID)),
			zap.String("write", payload.Kind.String()),
			zap.String("error", logger.SanitizeError(err)),
		)
		return nil, unavailable(payload.Kind.String()+" profile", err)
	}
}

// publish announces a committed write. The write already succeeded, so a
// broker failure is logged and not returned.
func (s *Service) publish(ctx context.Context, eventType events.Type, payload models.WritePayload) {
	if s.publisher == nil {
		return
	}
	fields := fieldNames(payload.Fields.Changed())
	if payload.Kind != models.WriteCreate && len(fields) == 0 {
		return
	}

	event := events.NewEvent(eventType, payload.UserID, fields, payload.UpdatedAt)
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("profile_event_publish_failed",
			zap.String("user_id", logger.SanitizeUserID(payload.UserID)),
			zap.String("event_type", string(eventType)),
			zap.String("error", logger.SanitizeError(err)),
		)
	}
}

func validateEdit(edit models.UserEdit) error {
	if edit.FullName.Valid && len(edit.FullName.Value) > validation.MaxNameLength {
		return invalid("fullName", "fullName is too long")
	}
	if edit.ProfilePicture.Valid && edit.ProfilePicture.Value != "" {
		if err := validation.ValidateProfilePicture(edit.ProfilePicture.Value); err != nil {
			return invalid("profilePicture", err.Error())
		}
	}
	return nil
}

func fieldNames(fields []models.Field) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return names
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
