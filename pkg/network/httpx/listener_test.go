package httpx

import (
	"testing"
)

func TestNewListener(t *testing.T) {
	tests := []struct {
		address string
		fail    bool
	}{
		{address: ":0"},
		{address: "127.0.0.1:0"},
		{address: ""},
		{address: "localhost:abc1", fail: true},
		{address: "https://garbage.com:99a9a", fail: true},
	}
	for _, tt := range tests {
		t.Run(tt.address, func(t *testing.T) {
			ls, err := NewListener(tt.address, false)
			if tt.fail {
				if err == nil {
					_ = ls.Close()
					t.Fatal("no error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			defer func() { _ = ls.Close() }()
			if ls.GetPort() <= 0 {
				t.Errorf("port %v", ls.GetPort())
			}
		})
	}
}

func TestListenerBusyPort(t *testing.T) {
	busy, err := NewListener("127.0.0.1:0", false)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = busy.Close() }()

	if ls, err := NewListener(busy.Addr().String(), false); err == nil {
		_ = ls.Close()
		t.Fatal("listened on a busy port")
	}

	rolled, err := NewListener(busy.Addr().String(), true)
	if err != nil {
		t.Fatalf("roll: %v", err)
	}
	defer func() { _ = rolled.Close() }()
	if rolled.GetPort() <= busy.GetPort() || rolled.GetPort() > busy.GetPort()+portRollRange {
		t.Errorf("rolled to %v from %v", rolled.GetPort(), busy.GetPort())
	}
}
