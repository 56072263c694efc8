package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"bloodlagbe_backend/internal/model"
	"bloodlagbe_backend/internal/repository"
)

// mockProfileRepository lets each test control repository behavior without a
// database. Function fields override behavior; call slices allow assertions.
type mockProfileRepository struct {
	insertFn       func(ctx context.Context, p *model.Profile) (bool, error)
	getByEmailFn   func(ctx context.Context, email string) (*model.Profile, error)
	getByClerkIDFn func(ctx context.Context, clerkID string) (*model.Profile, error)
	updateFieldsFn func(ctx context.Context, email string, fields []repository.Field) error
	listFn         func(ctx context.Context, bloodGroup string) ([]model.ProfileSummary, error)

	insertCalls []*model.Profile
	updateCalls []updateCall
	listCalls   []string
}

type updateCall struct {
	Email  string
	Fields []repository.Field
}

func (m *mockProfileRepository) Insert(ctx context.Context, p *model.Profile) (bool, error) {
	m.insertCalls = append(m.insertCalls, p)
	if m.insertFn != nil {
		return m.insertFn(ctx, p)
	}
	return true, nil
}

func (m *mockProfileRepository) GetByEmail(ctx context.Context, email string) (*model.Profile, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) GetByClerkID(ctx context.Context, clerkID string) (*model.Profile, error) {
	if m.getByClerkIDFn != nil {
		return m.getByClerkIDFn(ctx, clerkID)
	}
	return nil, model.ErrProfileNotFound
}

func (m *mockProfileRepository) UpdateFields(ctx context.Context, email string, fields []repository.Field) error {
	m.updateCalls = append(m.updateCalls, updateCall{Email: email, Fields: fields})
	if m.updateFieldsFn != nil {
		return m.updateFieldsFn(ctx, email, fields)
	}
	return nil
}

func (m *mockProfileRepository) List(ctx context.Context, bloodGroup string) ([]model.ProfileSummary, error) {
	m.listCalls = append(m.listCalls, bloodGroup)
	if m.listFn != nil {
		return m.listFn(ctx, bloodGroup)
	}
	return []model.ProfileSummary{}, nil
}

func rawPayload(t *testing.T, body string) map[string]json.RawMessage {
	t.Helper()
	var payload map[string]json.RawMessage
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("invalid test payload: %v", err)
	}
	return payload
}

func fieldValue(fields []repository.Field, column string) (interface{}, bool) {
	for _, f := range fields {
		if f.Column == column {
			return f.Value, true
		}
	}
	return nil, false
}

// =============================================================================
// CREATE-IF-ABSENT TESTS
// =============================================================================

func TestProfileService_CreateIfAbsent_CreatesWithDefaults(t *testing.T) {
	mockRepo := &mockProfileRepository{}
	svc := NewProfileService(mockRepo)

	evt := model.IdentityEvent{
		ClerkID:   "u1",
		FirstName: "A",
		LastName:  "B",
		Email:     "a@b.com",
	}

	created, err := svc.CreateIfAbsent(context.Background(), evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected created = true")
	}

	if len(mockRepo.insertCalls) != 1 {
		t.Fatalf("Insert called %d times, want 1", len(mockRepo.insertCalls))
	}

	p := mockRepo.insertCalls[0]
	if p.ClerkID != "u1" || p.Email != "a@b.com" || p.FirstName != "A" || p.LastName != "B" {
		t.Errorf("identity fields not copied from event: %+v", p)
	}
	if p.BloodGroup != "" {
		t.Errorf("blood_group = %q, want empty", p.BloodGroup)
	}
	if p.TotalDonation != 0 {
		t.Errorf("total_donation = %d, want 0", p.TotalDonation)
	}
	if p.LastDonation != nil {
		t.Errorf("last_donation = %v, want nil", p.LastDonation)
	}
	if p.SocialLinks != (model.SocialLinks{}) {
		t.Errorf("social_links = %+v, want all empty", p.SocialLinks)
	}
	if p.CreatedAt.IsZero() {
		t.Error("createdAt should be set at creation")
	}
}

func TestProfileService_CreateIfAbsent_Idempotent(t *testing.T) {
	var stored *model.Profile
	mockRepo := &mockProfileRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.Profile, error) {
			if stored != nil && stored.Email == email {
				return stored, nil
			}
			return nil, model.ErrProfileNotFound
		},
		insertFn: func(ctx context.Context, p *model.Profile) (bool, error) {
			stored = p
			return true, nil
		},
	}
	svc := NewProfileService(mockRepo)

	evt := model.IdentityEvent{ClerkID: "u1", FirstName: "A", LastName: "B", Email: "a@b.com"}

	created, err := svc.CreateIfAbsent(context.Background(), evt)
	if err != nil || !created {
		t.Fatalf("first delivery: created=%v err=%v, want true,nil", created, err)
	}

	// At-least-once delivery: the same signal arrives again.
	created, err = svc.CreateIfAbsent(context.Background(), evt)
	if err != nil {
		t.Fatalf("second delivery: unexpected error: %v", err)
	}
	if created {
		t.Error("second delivery should be a no-op")
	}

	if len(mockRepo.insertCalls) != 1 {
		t.Errorf("Insert called %d times across two deliveries, want 1", len(mockRepo.insertCalls))
	}
	if stored.BloodGroup != "" || stored.TotalDonation != 0 {
		t.Errorf("stored defaults changed by redelivery: %+v", stored)
	}
}

func TestProfileService_CreateIfAbsent_LookupError(t *testing.T) {
	dbError := errors.New("connection refused")
	mockRepo := &mockProfileRepository{
		getByEmailFn: func(ctx context.Context, email string) (*model.Profile, error) {
			return nil, dbError
		},
	}
	svc := NewProfileService(mockRepo)

	_, err := svc.CreateIfAbsent(context.Background(), model.IdentityEvent{Email: "a@b.com"})
	if !errors.Is(err, dbError) {
		t.Errorf("error should wrap the lookup error, got %v", err)
	}
	if len(mockRepo.insertCalls) != 0 {
		t.Error("Insert should not be called when the lookup fails")
	}
}

// =============================================================================
// PARTIAL UPDATE TESTS - Table-Driven
// =============================================================================

func TestProfileService_ApplyPartialUpdate(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr error
		check   func(t *testing.T, fields []repository.Field)
	}{
		{
			name:    "whitelist strips email",
			payload: `{"email": "x@y.com", "first_name": "A"}`,
			check: func(t *testing.T, fields []repository.Field) {
				if len(fields) != 1 {
					t.Fatalf("got %d fields, want 1: %+v", len(fields), fields)
				}
				if v, _ := fieldValue(fields, "first_name"); v != "A" {
					t.Errorf("first_name = %v, want A", v)
				}
				if _, ok := fieldValue(fields, "email"); ok {
					t.Error("email must never be writable")
				}
			},
		},
		{
			name:    "clerkId and createdAt are not writable",
			payload: `{"clerkId": "evil", "createdAt": "2020-01-01T00:00:00Z", "bio": "hi"}`,
			check: func(t *testing.T, fields []repository.Field) {
				if len(fields) != 1 {
					t.Fatalf("got %d fields, want 1: %+v", len(fields), fields)
				}
				if v, _ := fieldValue(fields, "bio"); v != "hi" {
					t.Errorf("bio = %v, want hi", v)
				}
			},
		},
		{
			name:    "absent keys leave stored values unchanged",
			payload: `{"phone_number": "0123"}`,
			check: func(t *testing.T, fields []repository.Field) {
				if _, ok := fieldValue(fields, "blood_group"); ok {
					t.Error("blood_group was not in the payload and must not be set")
				}
				if v, _ := fieldValue(fields, "phone_number"); v != "0123" {
					t.Errorf("phone_number = %v, want 0123", v)
				}
			},
		},
		{
			name:    "social_links fully replaces the stored object",
			payload: `{"social_links": {"facebook": "f"}}`,
			check: func(t *testing.T, fields []repository.Field) {
				if v, _ := fieldValue(fields, "social_facebook"); v != "f" {
					t.Errorf("social_facebook = %v, want f", v)
				}
				if v, ok := fieldValue(fields, "social_telegram"); !ok || v != "" {
					t.Errorf("social_telegram = %v, want reset to empty", v)
				}
				if v, ok := fieldValue(fields, "social_whatsapp"); !ok || v != "" {
					t.Errorf("social_whatsapp = %v, want reset to empty", v)
				}
			},
		},
		{
			name:    "blood group is normalized to uppercase",
			payload: `{"blood_group": "a+"}`,
			check: func(t *testing.T, fields []repository.Field) {
				if v, _ := fieldValue(fields, "blood_group"); v != "A+" {
					t.Errorf("blood_group = %v, want A+", v)
				}
			},
		},
		{
			name:    "unknown blood group rejected",
			payload: `{"blood_group": "C+"}`,
			wantErr: model.ErrInvalidBloodGroup,
		},
		{
			name:    "negative total_donation rejected",
			payload: `{"total_donation": -1}`,
			wantErr: model.ErrInvalidDonationCount,
		},
		{
			name:    "non-numeric total_donation rejected",
			payload: `{"total_donation": "three"}`,
			wantErr: model.ErrInvalidDonationCount,
		},
		{
			name:    "last_donation accepts RFC3339",
			payload: `{"last_donation": "2024-05-01T10:00:00Z"}`,
			check: func(t *testing.T, fields []repository.Field) {
				v, ok := fieldValue(fields, "last_donation")
				if !ok {
					t.Fatal("last_donation not set")
				}
				want := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
				if got, ok := v.(time.Time); !ok || !got.Equal(want) {
					t.Errorf("last_donation = %v, want %v", v, want)
				}
			},
		},
		{
			name:    "last_donation accepts bare date",
			payload: `{"last_donation": "2024-05-01"}`,
			check: func(t *testing.T, fields []repository.Field) {
				if _, ok := fieldValue(fields, "last_donation"); !ok {
					t.Fatal("last_donation not set")
				}
			},
		},
		{
			name:    "unparsable last_donation rejected",
			payload: `{"last_donation": "yesterday-ish"}`,
			wantErr: model.ErrInvalidDonationDate,
		},
		{
			name:    "null last_donation clears the stored date",
			payload: `{"last_donation": null}`,
			check: func(t *testing.T, fields []repository.Field) {
				v, ok := fieldValue(fields, "last_donation")
				if !ok {
					t.Fatal("last_donation not set")
				}
				if v != (*time.Time)(nil) {
					t.Errorf("last_donation = %v, want nil", v)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := &mockProfileRepository{}
			svc := NewProfileService(mockRepo)

			err := svc.ApplyPartialUpdate(context.Background(), "a@b.com", rawPayload(t, tt.payload))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				if len(mockRepo.updateCalls) != 0 {
					t.Error("UpdateFields must not be called on a validation error")
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(mockRepo.updateCalls) != 1 {
				t.Fatalf("UpdateFields called %d times, want 1", len(mockRepo.updateCalls))
			}
			call := mockRepo.updateCalls[0]
			if call.Email != "a@b.com" {
				t.Errorf("update keyed by %q, want a@b.com", call.Email)
			}
			if tt.check != nil {
				tt.check(t, call.Fields)
			}
		})
	}
}

func TestProfileService_ApplyPartialUpdate_NotFound(t *testing.T) {
	mockRepo := &mockProfileRepository{
		updateFieldsFn: func(ctx context.Context, email string, fields []repository.Field) error {
			return model.ErrProfileNotFound
		},
	}
	svc := NewProfileService(mockRepo)

	err := svc.ApplyPartialUpdate(context.Background(), "nobody@x.com", rawPayload(t, `{"bio": "hi"}`))
	if !errors.Is(err, model.ErrProfileNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrProfileNotFound)
	}
	// The reconciler only ever updates; a missing profile is never created here.
	if len(mockRepo.insertCalls) != 0 {
		t.Error("Insert must not be called by a partial update")
	}
}
