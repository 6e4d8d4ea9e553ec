package mpris

import "testing"

func TestBusName(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"wavesconnect", "wavesconnect"},
		{"Kitchen Speaker", "Kitchen_Speaker"},
		{"  living-room.2 ", "living_room_2"},
		{"7th floor", "_7th_floor"},
		{"", "wavesconnect"},
		{"   ", "wavesconnect"},
		{"café", "caf_"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := BusName(tt.in); got != tt.want {
				t.Errorf("BusName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
