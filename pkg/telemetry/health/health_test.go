package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"default timeout", 0, DefaultTimeout},
		{"custom timeout", 10 * time.Second, 10 * time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := New(tt.timeout).timeout; got != tt.want {
				t.Errorf("timeout = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]CheckFunc
		wantStatus string
		want       map[string]string
	}{
		{
			name:       "no checks",
			checks:     nil,
			wantStatus: StatusReady,
			want:       map[string]string{},
		},
		{
			name: "all healthy",
			checks: map[string]CheckFunc{
				"database": func(context.Context) error { return nil },
			},
			wantStatus: StatusReady,
			want:       map[string]string{"database": StatusOK},
		},
		{
			name: "disabled does not degrade",
			checks: map[string]CheckFunc{
				"database": func(context.Context) error { return nil },
				"factory":  func(context.Context) error { return ErrDisabled },
			},
			wantStatus: StatusReady,
			want:       map[string]string{"database": StatusOK, "factory": StatusDisabled},
		},
		{
			name: "failure degrades",
			checks: map[string]CheckFunc{
				"database":  func(context.Context) error { return errors.New("database is locked") },
				"collector": func(context.Context) error { return ErrDisabled },
			},
			wantStatus: StatusDegraded,
			want:       map[string]string{"database": StatusUnhealthy, "collector": StatusDisabled},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			for name, check := range tt.checks {
				c.RegisterCheck(name, check)
			}
			report := c.Check(context.Background())
			if report.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", report.Status, tt.wantStatus)
			}
			got := make(map[string]string, len(report.Checks))
			for name, r := range report.Checks {
				got[name] = r.Status
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("checks = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheck_Timeout(t *testing.T) {
	c := New(20 * time.Millisecond)
	c.RegisterCheck("slow", func(ctx context.Context) error {
		<-ctx.Done()
		time.Sleep(50 * time.Millisecond)
		return nil
	})

	report := c.Check(context.Background())
	r := report.Checks["slow"]
	if r.Status != StatusUnhealthy || r.Message != ErrCheckTimeout.Error() {
		t.Errorf("slow check = %+v, want a timeout", r)
	}
}

func TestNames(t *testing.T) {
	c := New(0)
	c.RegisterCheck("factory", func(context.Context) error { return nil })
	c.RegisterCheck("database", func(context.Context) error { return nil })
	c.RegisterCheck("database", func(context.Context) error { return nil })

	if got, want := c.Names(), []string{"database", "factory"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestHandler(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"ready", nil, http.StatusOK},
		{"degraded", errors.New("no route to host"), http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(time.Second)
			c.RegisterCheck("database", func(context.Context) error { return tt.err })

			rec := httptest.NewRecorder()
			c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))
			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var report Report
			if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if _, ok := report.Checks["database"]; !ok {
				t.Errorf("report = %+v", report)
			}
		})
	}
}
