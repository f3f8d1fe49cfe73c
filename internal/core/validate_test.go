package core

import "testing"

func TestValidUsername(t *testing.T) {
	cases := map[string]bool{
		"":                   false,
		"alice":              true,
		"Alice123":           true,
		"has space":          false,
		"has-dash":           false,
		"1234567890123456":   true,  // exactly 16
		"12345678901234567":  false, // 17, too long
	}
	for in, want := range cases {
		if got := ValidUsername(in); got != want {
			t.Errorf("ValidUsername(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidRoomName(t *testing.T) {
	ok32 := "12345678901234567890123456789012"
	bad33 := ok32 + "3"

	if !ValidRoomName(ok32) {
		t.Errorf("expected 32-char room name to be valid")
	}
	if ValidRoomName(bad33) {
		t.Errorf("expected 33-char room name to be invalid")
	}
	if ValidRoomName("") {
		t.Errorf("expected empty room name to be invalid")
	}
}
