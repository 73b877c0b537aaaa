package cache

import (
	"context"
	"testing"
)

func TestOpen_Unreachable(t *testing.T) {
	// Port 1 is reserved and never serves Redis.
	_, err := Open(context.Background(), Options{Addr: "127.0.0.1:1"}, nil)
	if err == nil {
		t.Fatal("Expected error connecting to an unreachable Redis")
	}
}

func TestClose_Nil(t *testing.T) {
	if err := Close(nil); err != nil {
		t.Errorf("Close(nil) = %v", err)
	}
}
