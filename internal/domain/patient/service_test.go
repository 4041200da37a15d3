package patient

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

type mockRepo struct {
	patients map[uuid.UUID]*Patient
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	p.ID = uuid.New()
	m.patients[p.ID] = p
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := m.patients[id]
	return ok, nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*Patient, int, error) {
	var items []*Patient
	for _, p := range m.patients {
		items = append(items, p)
	}
	return items, len(items), nil
}

func TestCreateValidation(t *testing.T) {
	svc := NewService(&mockRepo{patients: map[uuid.UUID]*Patient{}})

	if err := svc.Create(context.Background(), &Patient{Email: "a@b.test"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing name: err = %v, want ErrInvalidInput", err)
	}
	if err := svc.Create(context.Background(), &Patient{Name: "Ama"}); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("missing email: err = %v, want ErrInvalidInput", err)
	}

	p := &Patient{Name: "Ama", Email: "ama@b.test"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Error("expected assigned id")
	}
}

func TestDirectoryExists(t *testing.T) {
	repo := &mockRepo{patients: map[uuid.UUID]*Patient{}}
	svc := NewService(repo)
	p := &Patient{Name: "Kofi", Email: "kofi@b.test"}
	if err := svc.Create(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	dir := NewDirectory(svc)
	ok, err := dir.PatientExists(context.Background(), p.ID)
	if err != nil || !ok {
		t.Errorf("PatientExists(known) = %v, %v; want true", ok, err)
	}
	ok, err = dir.PatientExists(context.Background(), uuid.New())
	if err != nil || ok {
		t.Errorf("PatientExists(unknown) = %v, %v; want false", ok, err)
	}
}
