package clerkwebhook

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/inkwellhq/inkwell-backend/internal/users"
	pkgerrors "github.com/inkwellhq/inkwell-backend/pkg/errors"
	"github.com/inkwellhq/inkwell-backend/pkg/logger"
)

type ServiceParams struct {
	Users users.Service
	Log   *logger.Logger
}

// Service turns verified Clerk identity events into account mutations.
type Service struct {
	users users.Service
	log   *logger.Logger
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "users service required")
	}
	if params.Log == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{users: params.Users, log: params.Log}, nil
}

// HandleEvent dispatches a verified event. A nil return acknowledges the
// delivery; Clerk retries anything else.
func (s *Service) HandleEvent(ctx context.Context, event *Event) error {
	if event == nil || len(event.Data) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "event data required")
	}

	switch event.Type {
	case EventUserCreated:
		return s.handleUserCreated(ctx, event.Data)
	case EventUserUpdated:
		return s.handleUserUpdated(ctx, event.Data)
	case EventUserDeleted:
		return s.handleUserDeleted(ctx, event.Data)
	default:
		s.log.Info(s.log.WithField(ctx, "event_type", event.Type), "ignoring unhandled clerk event")
		return nil
	}
}

func (s *Service) handleUserCreated(ctx context.Context, data json.RawMessage) error {
	var payload UserPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode user.created payload")
	}
	if payload.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "clerk user id missing")
	}

	email, ok := payload.PrimaryEmail()
	if !ok {
		// Nothing to store without an address. Acknowledge so Clerk does
		// not redeliver an event we can never satisfy.
		s.log.Warn(s.log.WithField(ctx, "clerk_user_id", payload.ID),
			"user.created without resolvable email, acknowledging")
		return nil
	}

	username := payload.Username
	if username == nil || *username == "" {
		local := emailLocalPart(email)
		username = &local
	}

	_, err := s.users.Create(ctx, users.CreateUserInput{
		Email:       email,
		ClerkUserID: payload.ID,
		Username:    username,
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
			s.log.Info(s.log.WithField(ctx, "clerk_user_id", payload.ID),
				"user already registered, acknowledging redelivery")
			return nil
		}
		return err
	}
	return nil
}

func (s *Service) handleUserUpdated(ctx context.Context, data json.RawMessage) error {
	var payload UserPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode user.updated payload")
	}
	if payload.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "clerk user id missing")
	}

	user, err := s.users.GetByClerkID(ctx, payload.ID)
	if err != nil {
		return err
	}

	input := users.UpdateUserInput{}
	if email, ok := payload.PrimaryEmail(); ok && !strings.EqualFold(email, user.Email) {
		input.Email = &email
	}
	if payload.Username != nil && *payload.Username != "" {
		input.Username = payload.Username
	}
	if input.IsEmpty() {
		return nil
	}

	_, err = s.users.Update(ctx, user.ID, input)
	return err
}

func (s *Service) handleUserDeleted(ctx context.Context, data json.RawMessage) error {
	var payload DeletedPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "decode user.deleted payload")
	}
	if payload.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "clerk user id missing")
	}

	if err := s.users.DeleteByClerkID(ctx, payload.ID); err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNotFound {
			s.log.Info(s.log.WithField(ctx, "clerk_user_id", payload.ID),
				"user.deleted for unknown user, acknowledging")
			return nil
		}
		return err
	}
	return nil
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
