package keyring

import (
	"errors"
	"testing"

	gokeyring "github.com/zalando/go-keyring"
)

func TestSetAndGetConnectionString(t *testing.T) {
	gokeyring.MockInit()

	testConnStr := "postgres://testuser@localhost:5432/testdb?sslmode=disable"

	if err := SetConnectionString(testConnStr); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}

	retrieved, err := GetConnectionString()
	if err != nil {
		t.Fatalf("GetConnectionString() failed: %v", err)
	}
	if retrieved != testConnStr {
		t.Errorf("GetConnectionString() = %q, want %q", retrieved, testConnStr)
	}
}

func TestSetConnectionStringEmpty(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("  "); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("SetConnectionString(blank) error = %v, want %v", err, ErrEmptySecret)
	}
}

func TestGetConnectionStringNotFound(t *testing.T) {
	gokeyring.MockInit()
	_ = DeleteConnectionString()

	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestDeleteConnectionString(t *testing.T) {
	gokeyring.MockInit()

	if err := SetConnectionString("postgres://testuser@localhost:5432/testdb"); err != nil {
		t.Fatalf("SetConnectionString() failed: %v", err)
	}
	if err := DeleteConnectionString(); err != nil {
		t.Fatalf("DeleteConnectionString() failed: %v", err)
	}
	if _, err := GetConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("After DeleteConnectionString(), GetConnectionString() error = %v, want %v", err, ErrNotFound)
	}
	if err := DeleteConnectionString(); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteConnectionString() error = %v, want %v", err, ErrNotFound)
	}
}

func TestEntriesAreIndependent(t *testing.T) {
	gokeyring.MockInit()

	other := Entry{Service: "tally", User: "other"}
	if err := other.Set("secret"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if _, err := ConnectionEntry.Get(); !errors.Is(err, ErrNotFound) {
		t.Errorf("ConnectionEntry.Get() error = %v, want %v", err, ErrNotFound)
	}
}

func TestIsAvailable(t *testing.T) {
	gokeyring.MockInit()
	if !IsAvailable() {
		t.Error("IsAvailable() = false with mock keyring")
	}
}

func TestMask(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"postgres://bob@db.example.com:5432/tally?sslmode=disable", "postgres://***@db.example.com:5432/***"},
		{"host=localhost user=bob", "host********"},
		{"abc", "****"},
	}
	for _, tt := range tests {
		if got := Mask(tt.in); got != tt.want {
			t.Errorf("Mask(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
