package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/yucabot/yucabot/internal/log"
)

// stubProvider is a scriptable Provider for chain tests.
type stubProvider struct {
	name   string
	vector []float32
	err    error
	calls  int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Embed(_ context.Context, input string) ([]float32, error) {
	s.calls++
	if input == "" {
		return nil, ErrEmptyInput
	}
	if s.err != nil {
		return nil, s.err
	}
	return s.vector, nil
}

func TestNewFallbackRequiresProviders(t *testing.T) {
	if _, err := NewFallback(log.NewNop()); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestFallbackUsesFirstSuccess(t *testing.T) {
	primary := &stubProvider{name: "primary", vector: []float32{1, 2}}
	secondary := &stubProvider{name: "secondary", vector: []float32{9, 9}}

	f, err := NewFallback(log.NewNop(), primary, secondary)
	if err != nil {
		t.Fatalf("NewFallback: %v", err)
	}

	got, err := f.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got[0] != 1 {
		t.Errorf("got = %v, want primary's vector", got)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called %d times, want 0", secondary.calls)
	}
}

func TestFallbackAdvancesOnFailure(t *testing.T) {
	primary := &stubProvider{name: "primary", err: &ProviderError{Provider: "primary", StatusCode: 503}}
	secondary := &stubProvider{name: "secondary", vector: []float32{3, 4}}

	f, _ := NewFallback(log.NewNop(), primary, secondary)
	got, err := f.Embed(context.Background(), "text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if got[0] != 3 {
		t.Errorf("got = %v, want secondary's vector", got)
	}
}

func TestFallbackAllFail(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("down")}
	secondary := &stubProvider{name: "secondary", err: errors.New("also down")}

	f, _ := NewFallback(log.NewNop(), primary, secondary)
	if _, err := f.Embed(context.Background(), "text"); err == nil {
		t.Fatal("expected error when every provider fails")
	}
}

func TestFallbackEmptyInputNotRetriedAcrossProviders(t *testing.T) {
	primary := &stubProvider{name: "primary"}
	secondary := &stubProvider{name: "secondary"}

	f, _ := NewFallback(log.NewNop(), primary, secondary)
	if _, err := f.Embed(context.Background(), ""); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err = %v, want ErrEmptyInput", err)
	}
	if secondary.calls != 0 {
		t.Errorf("secondary called for empty input")
	}
}
