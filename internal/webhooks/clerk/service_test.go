package clerkwebhook

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/inkwellhq/inkwell-backend/internal/quota"
	"github.com/inkwellhq/inkwell-backend/internal/users"
	"github.com/inkwellhq/inkwell-backend/pkg/db/models"
	pkgerrors "github.com/inkwellhq/inkwell-backend/pkg/errors"
	"github.com/inkwellhq/inkwell-backend/pkg/logger"
	"github.com/inkwellhq/inkwell-backend/pkg/pagination"
)

type stubUserService struct {
	created    []users.CreateUserInput
	updated    []users.UpdateUserInput
	deleted    []string
	byClerkID  map[string]*models.User
	createErr  error
	missingAll bool
}

func (s *stubUserService) Create(ctx context.Context, input users.CreateUserInput) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, input)
	return &models.User{ID: uuid.New(), Email: input.Email, ClerkUserID: input.ClerkUserID}, nil
}

func (s *stubUserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (s *stubUserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (s *stubUserService) GetByClerkID(ctx context.Context, clerkUserID string) (*models.User, error) {
	if s.missingAll {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	if user, ok := s.byClerkID[clerkUserID]; ok {
		return user, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
}

func (s *stubUserService) List(ctx context.Context, q users.ListQuery) (*pagination.Page[models.User], error) {
	return &pagination.Page[models.User]{}, nil
}

func (s *stubUserService) Update(ctx context.Context, id uuid.UUID, input users.UpdateUserInput) (*models.User, error) {
	s.updated = append(s.updated, input)
	return &models.User{ID: id}, nil
}

func (s *stubUserService) OverrideSubscription(ctx context.Context, id uuid.UUID, input users.OverrideInput) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (s *stubUserService) ConsumeQuota(ctx context.Context, id uuid.UUID, kind quota.ResourceKind, amount int64) (*models.User, error) {
	return &models.User{ID: id}, nil
}

func (s *stubUserService) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (s *stubUserService) DeleteByClerkID(ctx context.Context, clerkUserID string) error {
	if s.missingAll {
		return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
	}
	s.deleted = append(s.deleted, clerkUserID)
	return nil
}

func (s *stubUserService) Stats(ctx context.Context, id uuid.UUID) (*users.StatsDTO, error) {
	return &users.StatsDTO{UserID: id}, nil
}

func newTestClerkService(t *testing.T, stub *stubUserService) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Users: stub,
		Log:   logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel}),
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return svc
}

func userCreatedEvent(t *testing.T, payload UserPayload) *Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return &Event{Type: EventUserCreated, Data: raw}
}

func TestHandleEvent_UserCreated(t *testing.T) {
	stub := &stubUserService{}
	svc := newTestClerkService(t, stub)

	event := userCreatedEvent(t, UserPayload{
		ID:                    "user_2abc",
		PrimaryEmailAddressID: "idn_1",
		EmailAddresses: []EmailAddress{
			{ID: "idn_0", EmailAddress: "alt@example.com"},
			{ID: "idn_1", EmailAddress: "writer@example.com"},
		},
	})

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(stub.created) != 1 {
		t.Fatalf("expected one create, got %d", len(stub.created))
	}
	input := stub.created[0]
	if input.Email != "writer@example.com" {
		t.Fatalf("expected primary email, got %q", input.Email)
	}
	if input.ClerkUserID != "user_2abc" {
		t.Fatalf("unexpected clerk id %q", input.ClerkUserID)
	}
	if input.Username == nil || *input.Username != "writer" {
		t.Fatalf("expected username from email local part, got %v", input.Username)
	}
}

func TestHandleEvent_UserCreatedKeepsProvidedUsername(t *testing.T) {
	stub := &stubUserService{}
	svc := newTestClerkService(t, stub)

	name := "quillbert"
	event := userCreatedEvent(t, UserPayload{
		ID:                    "user_2abc",
		Username:              &name,
		PrimaryEmailAddressID: "idn_1",
		EmailAddresses:        []EmailAddress{{ID: "idn_1", EmailAddress: "writer@example.com"}},
	})

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if *stub.created[0].Username != "quillbert" {
		t.Fatalf("expected provided username, got %q", *stub.created[0].Username)
	}
}

func TestHandleEvent_UserCreatedWithoutEmailAcknowledged(t *testing.T) {
	stub := &stubUserService{}
	svc := newTestClerkService(t, stub)

	event := userCreatedEvent(t, UserPayload{ID: "user_2abc"})

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected ack, got %v", err)
	}
	if len(stub.created) != 0 {
		t.Fatalf("expected no create")
	}
}

func TestHandleEvent_UserCreatedConflictAcknowledged(t *testing.T) {
	stub := &stubUserService{createErr: pkgerrors.New(pkgerrors.CodeConflict, "already registered")}
	svc := newTestClerkService(t, stub)

	event := userCreatedEvent(t, UserPayload{
		ID:                    "user_2abc",
		PrimaryEmailAddressID: "idn_1",
		EmailAddresses:        []EmailAddress{{ID: "idn_1", EmailAddress: "writer@example.com"}},
	})

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected redelivery ack, got %v", err)
	}
}

func TestHandleEvent_UserUpdated(t *testing.T) {
	existing := &models.User{ID: uuid.New(), ClerkUserID: "user_2abc", Email: "old@example.com"}
	stub := &stubUserService{byClerkID: map[string]*models.User{"user_2abc": existing}}
	svc := newTestClerkService(t, stub)

	raw, _ := json.Marshal(UserPayload{
		ID:                    "user_2abc",
		PrimaryEmailAddressID: "idn_1",
		EmailAddresses:        []EmailAddress{{ID: "idn_1", EmailAddress: "new@example.com"}},
	})

	if err := svc.HandleEvent(context.Background(), &Event{Type: EventUserUpdated, Data: raw}); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(stub.updated) != 1 {
		t.Fatalf("expected one update, got %d", len(stub.updated))
	}
	if stub.updated[0].Email == nil || *stub.updated[0].Email != "new@example.com" {
		t.Fatalf("expected email change, got %v", stub.updated[0].Email)
	}
}

func TestHandleEvent_UserUpdatedNoChangesIsNoop(t *testing.T) {
	existing := &models.User{ID: uuid.New(), ClerkUserID: "user_2abc", Email: "same@example.com"}
	stub := &stubUserService{byClerkID: map[string]*models.User{"user_2abc": existing}}
	svc := newTestClerkService(t, stub)

	raw, _ := json.Marshal(UserPayload{
		ID:                    "user_2abc",
		PrimaryEmailAddressID: "idn_1",
		EmailAddresses:        []EmailAddress{{ID: "idn_1", EmailAddress: "same@example.com"}},
	})

	if err := svc.HandleEvent(context.Background(), &Event{Type: EventUserUpdated, Data: raw}); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(stub.updated) != 0 {
		t.Fatalf("expected no update call")
	}
}

func TestHandleEvent_UserUpdatedMissingUserFails(t *testing.T) {
	stub := &stubUserService{missingAll: true}
	svc := newTestClerkService(t, stub)

	raw, _ := json.Marshal(UserPayload{
		ID:                    "user_ghost",
		PrimaryEmailAddressID: "idn_1",
		EmailAddresses:        []EmailAddress{{ID: "idn_1", EmailAddress: "g@example.com"}},
	})

	err := svc.HandleEvent(context.Background(), &Event{Type: EventUserUpdated, Data: raw})
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestHandleEvent_UserDeleted(t *testing.T) {
	stub := &stubUserService{}
	svc := newTestClerkService(t, stub)

	raw, _ := json.Marshal(DeletedPayload{ID: "user_2abc", Deleted: true})

	if err := svc.HandleEvent(context.Background(), &Event{Type: EventUserDeleted, Data: raw}); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if len(stub.deleted) != 1 || stub.deleted[0] != "user_2abc" {
		t.Fatalf("expected delete by clerk id, got %v", stub.deleted)
	}
}

func TestHandleEvent_UserDeletedMissingUserAcknowledged(t *testing.T) {
	stub := &stubUserService{missingAll: true}
	svc := newTestClerkService(t, stub)

	raw, _ := json.Marshal(DeletedPayload{ID: "user_ghost", Deleted: true})

	if err := svc.HandleEvent(context.Background(), &Event{Type: EventUserDeleted, Data: raw}); err != nil {
		t.Fatalf("expected ack, got %v", err)
	}
}

func TestHandleEvent_UnknownTypeAcknowledged(t *testing.T) {
	stub := &stubUserService{}
	svc := newTestClerkService(t, stub)

	event := &Event{Type: "session.created", Data: json.RawMessage(`{"id":"sess_1"}`)}
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("expected ack, got %v", err)
	}
}
