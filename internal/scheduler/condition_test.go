package scheduler

import (
	"testing"

	"github.com/hearthd/hearth-core/internal/device"
	"github.com/hearthd/hearth-core/internal/schedule"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name  string
		cond  schedule.Condition
		state device.State
		want  bool
	}{
		{
			name:  "bool equal matches",
			cond:  schedule.Condition{Field: "motion_detected", Op: schedule.OpEqual, Value: true},
			state: device.State{"motion_detected": true},
			want:  true,
		},
		{
			name:  "bool equal mismatch",
			cond:  schedule.Condition{Field: "motion_detected", Op: schedule.OpEqual, Value: true},
			state: device.State{"motion_detected": false},
			want:  false,
		},
		{
			name:  "missing field never matches",
			cond:  schedule.Condition{Field: "motion_detected", Op: schedule.OpEqual, Value: true},
			state: device.State{"on": true},
			want:  false,
		},
		{
			name:  "numeric less than",
			cond:  schedule.Condition{Field: "current_temperature", Op: schedule.OpLess, Value: 16.0},
			state: device.State{"current_temperature": 14.5},
			want:  true,
		},
		{
			name:  "numeric less than boundary",
			cond:  schedule.Condition{Field: "current_temperature", Op: schedule.OpLess, Value: 16.0},
			state: device.State{"current_temperature": 16.0},
			want:  false,
		},
		{
			name:  "less or equal boundary",
			cond:  schedule.Condition{Field: "current_temperature", Op: schedule.OpLessEqual, Value: 16.0},
			state: device.State{"current_temperature": 16.0},
			want:  true,
		},
		{
			name:  "greater than",
			cond:  schedule.Condition{Field: "brightness", Op: schedule.OpGreater, Value: 50},
			state: device.State{"brightness": 80.0},
			want:  true,
		},
		{
			name:  "int and float compare equal across types",
			cond:  schedule.Condition{Field: "brightness", Op: schedule.OpEqual, Value: 80},
			state: device.State{"brightness": 80.0},
			want:  true,
		},
		{
			name:  "ordering op on non numeric never matches",
			cond:  schedule.Condition{Field: "name", Op: schedule.OpGreater, Value: "abc"},
			state: device.State{"name": "xyz"},
			want:  false,
		},
		{
			name:  "string not equal",
			cond:  schedule.Condition{Field: "mode", Op: schedule.OpNotEqual, Value: "eco"},
			state: device.State{"mode": "boost"},
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := evaluate(&tt.cond, tt.state); got != tt.want {
				t.Errorf("evaluate() = %v, want %v", got, tt.want)
			}
		})
	}
}
