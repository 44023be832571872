package shutdown

import (
	"context"
	"testing"
)

func TestParentCancel(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	ctx, stop := Context(parent)
	defer stop()

	cancel()
	<-ctx.Done()
	if ctx.Err() == nil {
		t.Fatal("context not cancelled with parent")
	}
}
