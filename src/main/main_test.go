package main

import (
	"context"
	"errors"
	"testing"

	"screen-snap/src/singleinstance"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"screen-snap-resident", "-run-once", "-dir", "/tmp/shots"},
			out:  []string{"screen-snap-resident", "--run-once", "--dir", "/tmp/shots"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"screen-snap-resident", "-run-once=true", "-dir=/tmp/shots"},
			out:  []string{"screen-snap-resident", "--run-once=true", "--dir=/tmp/shots"},
		},
		{
			name: "Leaves other flags unchanged",
			in:   []string{"screen-snap-resident", "--run-once", "--other"},
			out:  []string{"screen-snap-resident", "--run-once", "--other"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestNewRootCmdParsesFlags(t *testing.T) {
	opts := &mainOptions{}
	cmd := newRootCmd(opts)
	if err := cmd.ParseFlags([]string{"--run-once", "--dir", "/tmp/shots"}); err != nil {
		t.Fatalf("ParseFlags failed: %v", err)
	}
	if !opts.runOnce {
		t.Fatal("Expected runOnce=true")
	}
	if opts.dir != "/tmp/shots" {
		t.Fatalf("Expected dir=/tmp/shots, got %q", opts.dir)
	}
}

type fakeClient struct {
	delegated bool
	err       error
	called    bool
	req       singleinstance.Request
}

func (f *fakeClient) TryCapture(ctx context.Context, req singleinstance.Request) (bool, string, error) {
	f.called = true
	f.req = req
	return f.delegated, "/tmp/shots/screenshot.png", f.err
}

func TestHandleRunOnceWithDelegation(t *testing.T) {
	tests := []struct {
		name         string
		client       *fakeClient
		wantFallback bool
	}{
		{"Delegated", &fakeClient{delegated: true}, false},
		{"NoResidentFallback", &fakeClient{}, true},
		{"DelegationErrorFallback", &fakeClient{err: errors.New("busy")}, true},
		{"CancelledInResident", &fakeClient{delegated: true, err: singleinstance.ErrCancelled}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fallbackCalled := false
			req := singleinstance.Request{Dir: "/tmp/shots", SaveToFile: true}
			handleRunOnceWithDelegation(req, tt.client, func() {
				fallbackCalled = true
			})

			if !tt.client.called {
				t.Fatal("Expected client.TryCapture to be called")
			}
			if tt.client.req != req {
				t.Fatalf("request = %+v", tt.client.req)
			}
			if fallbackCalled != tt.wantFallback {
				t.Fatalf("fallbackCalled = %v, want %v", fallbackCalled, tt.wantFallback)
			}
		})
	}
}
