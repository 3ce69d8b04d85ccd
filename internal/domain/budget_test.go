package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestWeekStartIsAlwaysMonday(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "monday maps to itself",
			in:   time.Date(2026, 8, 24, 15, 30, 0, 0, time.UTC),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "wednesday maps back to monday",
			in:   time.Date(2026, 8, 26, 1, 0, 0, 0, time.UTC),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "sunday belongs to the week started six days earlier",
			in:   time.Date(2026, 8, 30, 23, 59, 59, 0, time.UTC),
			want: time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WeekStart(tt.in); !got.Equal(tt.want) {
				t.Errorf("WeekStart(%s) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestDateOfTruncatesToUTCDate(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2026, 8, 31, 2, 0, 0, 0, loc) // 2026-08-30 21:00 UTC

	got := DateOf(in)
	want := time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Errorf("DateOf = %s, want %s", got, want)
	}
}

func TestUtilizationPercent(t *testing.T) {
	tests := []struct {
		name  string
		spent string
		limit string
		want  int
	}{
		{"half used", "50.00", "100.00", 50},
		{"zero limit yields zero", "50.00", "0.00", 0},
		{"negative limit yields zero", "50.00", "-1.00", 0},
		{"rounds to nearest integer", "1.00", "3.00", 33},
		{"over budget goes past hundred", "150.00", "100.00", 150},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := UtilizationPercent(decimal.RequireFromString(tt.spent), decimal.RequireFromString(tt.limit))
			if got != tt.want {
				t.Errorf("UtilizationPercent(%s, %s) = %d, want %d", tt.spent, tt.limit, got, tt.want)
			}
		})
	}
}

func TestEffectiveLimit(t *testing.T) {
	policy := DefaultPolicyConfig("u1")

	var none *TrustEntry
	if got := none.EffectiveLimit(policy); !got.Equal(policy.AutoApproveLimit) {
		t.Errorf("nil entry: EffectiveLimit = %s, want policy limit %s", got, policy.AutoApproveLimit)
	}

	plain := &TrustEntry{UserID: "u1", CounterpartyID: "cp1"}
	if got := plain.EffectiveLimit(policy); !got.Equal(policy.AutoApproveLimit) {
		t.Errorf("no override: EffectiveLimit = %s, want policy limit %s", got, policy.AutoApproveLimit)
	}

	override := decimal.RequireFromString("42.00")
	withOverride := &TrustEntry{UserID: "u1", CounterpartyID: "cp1", AutoApproveLimitOverride: &override}
	if got := withOverride.EffectiveLimit(policy); !got.Equal(override) {
		t.Errorf("override: EffectiveLimit = %s, want %s", got, override)
	}
}

func TestPolicyUpdateValidate(t *testing.T) {
	neg := decimal.RequireFromString("-1.00")
	ok := decimal.RequireFromString("10.00")
	badPct := 101
	goodPct := 15

	if err := (PolicyUpdate{DailySpendingLimit: &neg}).Validate(); err == nil {
		t.Error("negative limit must be rejected")
	}
	if err := (PolicyUpdate{AutoSavePercentage: &badPct}).Validate(); err == nil {
		t.Error("percentage above 100 must be rejected")
	}
	if err := (PolicyUpdate{AutoApproveLimit: &ok, AutoSavePercentage: &goodPct}).Validate(); err != nil {
		t.Errorf("valid update rejected: %v", err)
	}
	if err := (PolicyUpdate{}).Validate(); err != nil {
		t.Errorf("empty update rejected: %v", err)
	}
}
