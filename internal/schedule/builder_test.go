package schedule

import (
	"errors"
	"testing"

	"github.com/hearthd/hearth-core/internal/device"
)

func TestBuilder_Build(t *testing.T) {
	sched, err := NewBuilder("Good Night").
		At("0 23 * * *").
		AddAction("light-1", device.CmdTurnOff, nil).
		AddAction("lock-1", device.CmdLock, nil).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if sched.ID == "" {
		t.Error("Build() should assign an ID")
	}
	if sched.Name != "Good Night" {
		t.Errorf("Name = %q, want %q", sched.Name, "Good Night")
	}
	if sched.Enabled {
		t.Error("schedules must be created disabled")
	}
	if sched.Trigger.Kind != TriggerTime || sched.Trigger.Cron != "0 23 * * *" {
		t.Errorf("Trigger = %+v, want time trigger", sched.Trigger)
	}
	if len(sched.Actions) != 2 {
		t.Fatalf("len(Actions) = %d, want 2", len(sched.Actions))
	}
	if sched.Actions[0].DeviceID != "light-1" || sched.Actions[1].DeviceID != "lock-1" {
		t.Error("actions must preserve insertion order")
	}
}

func TestBuilder_Incomplete(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Schedule, error)
	}{
		{
			"no trigger",
			func() (*Schedule, error) {
				return NewBuilder("x").AddAction("d", device.CmdTurnOn, nil).Build()
			},
		},
		{
			"no actions",
			func() (*Schedule, error) {
				return NewBuilder("x").At("0 7 * * *").Build()
			},
		},
		{
			"empty",
			func() (*Schedule, error) {
				return NewBuilder("x").Build()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if !errors.Is(err, ErrIncomplete) {
				t.Errorf("Build() error = %v, want ErrIncomplete", err)
			}
		})
	}
}

func TestBuilder_InvalidCron(t *testing.T) {
	_, err := NewBuilder("x").
		At("not a cron").
		AddAction("d", device.CmdTurnOn, nil).
		Build()
	if !errors.Is(err, ErrInvalidCron) {
		t.Errorf("Build() error = %v, want ErrInvalidCron", err)
	}
}

func TestBuilder_ConditionTrigger(t *testing.T) {
	sched, err := NewBuilder("Motion Lights").
		When("cam-1", "motion_detected", OpEqual, true).
		AddAction("light-1", device.CmdTurnOn, nil).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	cond := sched.Trigger.Condition
	if cond == nil {
		t.Fatal("condition trigger missing")
	}
	if cond.DeviceID != "cam-1" || cond.Field != "motion_detected" || cond.Op != OpEqual {
		t.Errorf("Condition = %+v", cond)
	}
}

func TestBuilder_InvalidCondition(t *testing.T) {
	tests := []struct {
		name  string
		build func() (*Schedule, error)
	}{
		{
			"empty device",
			func() (*Schedule, error) {
				return NewBuilder("x").When("", "f", OpEqual, 1).
					AddAction("d", device.CmdTurnOn, nil).Build()
			},
		},
		{
			"empty field",
			func() (*Schedule, error) {
				return NewBuilder("x").When("d", "", OpEqual, 1).
					AddAction("d", device.CmdTurnOn, nil).Build()
			},
		},
		{
			"bad operator",
			func() (*Schedule, error) {
				return NewBuilder("x").When("d", "f", Op("~="), 1).
					AddAction("d", device.CmdTurnOn, nil).Build()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.build()
			if !errors.Is(err, ErrInvalidCondition) {
				t.Errorf("Build() error = %v, want ErrInvalidCondition", err)
			}
		})
	}
}

func TestBuilder_NoDeviceValidation(t *testing.T) {
	// The builder must accept device IDs that don't exist anywhere.
	// Resolution happens when the schedule fires.
	_, err := NewBuilder("Future Devices").
		At("0 7 * * *").
		AddAction("device-installed-next-week", device.CmdTurnOn, nil).
		Build()
	if err != nil {
		t.Errorf("Build() error = %v, want nil for unknown device IDs", err)
	}
}

func TestBuilder_ReusableAndIsolated(t *testing.T) {
	b := NewBuilder("Routine").
		At("0 7 * * *").
		AddAction("light-1", device.CmdTurnOn, nil)

	first, err := b.Build()
	if err != nil {
		t.Fatalf("first Build() error = %v", err)
	}

	// Extending the builder must not touch the already built schedule.
	b.AddAction("light-2", device.CmdTurnOn, nil)

	second, err := b.Build()
	if err != nil {
		t.Fatalf("second Build() error = %v", err)
	}

	if len(first.Actions) != 1 {
		t.Errorf("first schedule has %d actions, want 1", len(first.Actions))
	}
	if len(second.Actions) != 2 {
		t.Errorf("second schedule has %d actions, want 2", len(second.Actions))
	}
	if first.ID == second.ID {
		t.Error("each Build() must assign a fresh ID")
	}
}

func TestBuilder_ArgsAreCopied(t *testing.T) {
	args := device.Args{"brightness": 50}
	sched, err := NewBuilder("x").
		At("0 7 * * *").
		AddAction("light-1", device.CmdSetBrightness, args).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	args["brightness"] = 999
	if sched.Actions[0].Args["brightness"] != 50 {
		t.Error("mutating caller args must not affect the built schedule")
	}
}

func TestSchedule_DeepCopy(t *testing.T) {
	sched, err := NewBuilder("x").
		When("cam-1", "motion_detected", OpEqual, true).
		AddAction("light-1", device.CmdSetBrightness, device.Args{"brightness": 50}).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	cpy := sched.DeepCopy()
	cpy.Actions[0].Args["brightness"] = 999
	cpy.Trigger.Condition.Field = "tampered"

	if sched.Actions[0].Args["brightness"] != 50 {
		t.Error("copy shares action args with original")
	}
	if sched.Trigger.Condition.Field != "motion_detected" {
		t.Error("copy shares condition with original")
	}
}

func TestDirectors(t *testing.T) {
	devices := RoutineDevices{
		Lights:      []string{"light-1", "light-2"},
		Thermostats: []string{"therm-1"},
		Cameras:     []string{"cam-1"},
		Locks:       []string{"lock-1"},
	}

	tests := []struct {
		name     string
		director func(RoutineDevices) (*Schedule, error)
		wantCron string
	}{
		{"morning", MorningRoutine, "0 7 * * *"},
		{"evening", EveningRoutine, "0 18 * * *"},
		{"night", NightRoutine, "0 23 * * *"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sched, err := tt.director(devices)
			if err != nil {
				t.Fatalf("director error = %v", err)
			}
			if sched.Trigger.Cron != tt.wantCron {
				t.Errorf("Cron = %q, want %q", sched.Trigger.Cron, tt.wantCron)
			}
			if len(sched.Actions) == 0 {
				t.Error("director produced no actions")
			}
		})
	}
}
