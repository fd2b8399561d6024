package service

import (
	"context"
	"errors"
	"strings"
	"testing"
)

type fake struct {
	name  string
	fail  error
	trace *[]string
}

func (f *fake) Run()           { *f.trace = append(*f.trace, "run "+f.name) }
func (f *fake) String() string { return f.name }
func (f *fake) Shutdown(context.Context) error {
	*f.trace = append(*f.trace, "stop "+f.name)
	return f.fail
}

func TestGroupOrder(t *testing.T) {
	var trace []string
	g := Group{}
	g.Add(&fake{name: "a", trace: &trace}, &fake{name: "b", trace: &trace})

	g.Start()
	if err := g.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := "run a,run b,stop a,stop b"
	if got := strings.Join(trace, ","); got != want {
		t.Errorf("trace %v, want %v", got, want)
	}
}

func TestGroupShutdownErrors(t *testing.T) {
	var trace []string
	boom := errors.New("boom")
	g := Group{}
	g.Add(
		&fake{name: "a", fail: boom, trace: &trace},
		&fake{name: "b", fail: context.Canceled, trace: &trace},
		&fake{name: "c", trace: &trace},
	)

	err := g.Shutdown(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v in %v", boom, err)
	}
	if len(trace) != 3 {
		t.Errorf("all services should be stopped, got %v", trace)
	}
}
