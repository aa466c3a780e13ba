package hints

import "testing"

func TestSetGetAndCallback(t *testing.T) {
	defer Reset("test_hint")

	var calls []string
	AddCallback("test_hint", func(name, old, value string) {
		calls = append(calls, old+"->"+value)
	})
	if len(calls) != 1 || calls[0] != "->" {
		t.Fatalf("initial callback = %v, want [\"->\"]", calls)
	}

	Set("test_hint", "1")
	Set("test_hint", "1") // unchanged value must not re-notify
	Set("test_hint", "0")

	want := []string{"->", "->1", "1->0"}
	if len(calls) != len(want) {
		t.Fatalf("calls = %v, want %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Errorf("calls[%d] = %q, want %q", i, calls[i], want[i])
		}
	}
}

func TestRemoveCallback(t *testing.T) {
	defer Reset("test_hint_remove")

	var calls int
	token := AddCallback("test_hint_remove", func(name, old, value string) {
		calls++
	})
	if calls != 1 {
		t.Fatalf("initial invocations = %d, want 1", calls)
	}

	RemoveCallback("test_hint_remove", token)
	Set("test_hint_remove", "1")
	if calls != 1 {
		t.Errorf("removed callback still invoked, calls = %d", calls)
	}
}

func TestParseBoolean(t *testing.T) {
	tests := []struct {
		value string
		def   bool
		want  bool
	}{
		{"", true, true},
		{"", false, false},
		{"1", false, true},
		{"true", false, true},
		{"ON", false, true},
		{"0", true, false},
		{"no", true, false},
		{"garbage", true, true},
	}
	for _, tt := range tests {
		if got := ParseBoolean(tt.value, tt.def); got != tt.want {
			t.Errorf("ParseBoolean(%q, %v) = %v, want %v", tt.value, tt.def, got, tt.want)
		}
	}
}

func TestParseInteger(t *testing.T) {
	if got := ParseInteger("", -1); got != -1 {
		t.Errorf("ParseInteger(\"\") = %d, want -1", got)
	}
	if got := ParseInteger("2", -1); got != 2 {
		t.Errorf("ParseInteger(\"2\") = %d, want 2", got)
	}
	if got := ParseInteger("x", -1); got != -1 {
		t.Errorf("ParseInteger(\"x\") = %d, want -1", got)
	}
}

func TestParseVIDPIDList(t *testing.T) {
	list := ParseVIDPIDList("0x045e/0x028e,0x054c/0x0ce6 0x057e/0x2009")
	if len(list) != 3 {
		t.Fatalf("len(list) = %d, want 3", len(list))
	}
	if !VIDPIDInList(0x045e, 0x028e, list) {
		t.Error("expected 045e/028e in list")
	}
	if !VIDPIDInList(0x057e, 0x2009, list) {
		t.Error("expected 057e/2009 in list")
	}
	if VIDPIDInList(0x1234, 0x5678, list) {
		t.Error("did not expect 1234/5678 in list")
	}

	// trailing vendor with no product is dropped
	list = ParseVIDPIDList("0x045e/0x028e,0x054c")
	if len(list) != 1 {
		t.Errorf("len(list) = %d, want 1", len(list))
	}
}
