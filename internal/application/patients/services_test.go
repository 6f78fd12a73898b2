package patients

import (
	"context"
	"errors"
	"testing"

	domain "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/patients"
	scans "github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/domain/scans"
	"github.com/ayelefransi/Advanced-Brain-Tumor-Detection-System-Using-Deep-Learning-Method/internal/infra/db/memory"
)

func TestRegister(t *testing.T) {
	svc := &Service{Repo: memory.NewPatientRepository()}
	ctx := context.Background()

	p, err := svc.Register(ctx, RegisterCommand{FirstName: "Abebe", LastName: "Bikila", Age: 42})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if p.ID == "" {
		t.Fatal("ID not assigned")
	}
	if p.Status != domain.StatusActive {
		t.Fatalf("Status = %s, want default active", p.Status)
	}
	if p.ScanCount != 0 {
		t.Fatalf("ScanCount = %d, want 0", p.ScanCount)
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.FirstName != "Abebe" {
		t.Fatalf("FirstName = %q", got.FirstName)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := &Service{Repo: memory.NewPatientRepository()}
	ctx := context.Background()

	cases := []struct {
		name string
		cmd  RegisterCommand
	}{
		{"missing first name", RegisterCommand{LastName: "B", Age: 30}},
		{"missing last name", RegisterCommand{FirstName: "A", Age: 30}},
		{"negative age", RegisterCommand{FirstName: "A", LastName: "B", Age: -1}},
		{"age too high", RegisterCommand{FirstName: "A", LastName: "B", Age: 151}},
		{"unknown status", RegisterCommand{FirstName: "A", LastName: "B", Age: 30, Status: "zombie"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Register(ctx, tc.cmd); !errors.Is(err, scans.ErrInvalidInput) {
				t.Fatalf("err = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestRegisterStatuses(t *testing.T) {
	svc := &Service{Repo: memory.NewPatientRepository()}
	ctx := context.Background()

	for _, status := range []string{"active", "monitoring", "discharged"} {
		p, err := svc.Register(ctx, RegisterCommand{FirstName: "A", LastName: "B", Age: 30, Status: status})
		if err != nil {
			t.Fatalf("Register(%s): %v", status, err)
		}
		if string(p.Status) != status {
			t.Fatalf("Status = %s, want %s", p.Status, status)
		}
	}

	list, err := svc.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("got %d patients, want 3", len(list))
	}
}
