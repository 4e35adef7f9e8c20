package profile

import (
	"strings"
	"testing"
)

func TestValidateHandle(t *testing.T) {
	tests := []struct {
		name    string
		handle  string
		wantErr bool
	}{
		{name: "valid", handle: "ectoBiologist", wantErr: false},
		{name: "valid with digits", handle: "turntech9Godhead", wantErr: false},
		{name: "no capital", handle: "nocaps", wantErr: true},
		{name: "two capitals", handle: "twoCapsHere", wantErr: true},
		{name: "starts upper", handle: "Ectobiologist", wantErr: true},
		{name: "punctuation", handle: "ecto_Biologist", wantErr: true},
		{name: "starts with digit", handle: "4ectoBiologist", wantErr: true},
		{name: "empty", handle: "", wantErr: true},
		{name: "too long", handle: "a" + strings.Repeat("b", MaxHandleLength) + "C", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateHandle(tt.handle)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateHandle(%q) error = %v, wantErr %v", tt.handle, err, tt.wantErr)
			}
		})
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		handle string
		want   string
	}{
		{"ectoBiologist", "EB"},
		{"gardenGnostic", "GG"},
		{"nocaps", "N"},
		{"", "XX"},
	}

	for _, tt := range tests {
		if got := Initials(tt.handle); got != tt.want {
			t.Errorf("Initials(%q) = %q, want %q", tt.handle, got, tt.want)
		}
	}
}

func TestParseMood(t *testing.T) {
	m, err := ParseMood("2")
	if err != nil || m != Offline {
		t.Errorf("ParseMood(\"2\") = %v, %v; want offline", m, err)
	}
	if _, err := ParseMood("99"); err == nil {
		t.Error("expected error for out of range mood")
	}
	if _, err := ParseMood("x"); err == nil {
		t.Error("expected error for non-numeric mood")
	}

	byName, err := MoodByName("Bemused")
	if err != nil {
		t.Fatalf("MoodByName: %v", err)
	}
	if byName.Value() != "22" {
		t.Errorf("bemused value = %s, want 22", byName.Value())
	}
}

func TestColor(t *testing.T) {
	c, err := ParseHex("#ff8000")
	if err != nil {
		t.Fatalf("ParseHex: %v", err)
	}
	if c.Cmd() != "255,128,0" {
		t.Errorf("Cmd() = %s, want 255,128,0", c.Cmd())
	}

	rgb, err := ParseRGB("255, 128,0")
	if err != nil {
		t.Fatalf("ParseRGB: %v", err)
	}
	if rgb.Hex() != "#ff8000" {
		t.Errorf("Hex() = %s, want #ff8000", rgb.Hex())
	}

	if _, err := ParseRGB("1,2"); err == nil {
		t.Error("expected error for short rgb")
	}
	if _, err := ParseRGB("256,0,0"); err == nil {
		t.Error("expected error for out of range component")
	}
	if _, err := ParseHex("#zzzzzz"); err == nil {
		t.Error("expected error for bad hex")
	}
}

func TestIsService(t *testing.T) {
	if !IsService("NickServ") || !IsService("chanserv") {
		t.Error("expected services to be recognised case-insensitively")
	}
	if IsService("ectoBiologist") {
		t.Error("regular handle reported as service")
	}
}

func TestContacts(t *testing.T) {
	c := NewContacts("gardenGnostic", "ectoBiologist")
	c.Add("tentacleTherapist")
	c.Remove("gardenGnostic")

	if c.IsContact("gardenGnostic") {
		t.Error("removed handle still present")
	}
	got := c.Handles()
	want := []string{"ectoBiologist", "tentacleTherapist"}
	if len(got) != len(want) || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("Handles() = %v, want %v", got, want)
	}
}
