package main

import (
	"context"
	"fmt"

	"github.com/hearthd/hearth-core/internal/controller"
	"github.com/hearthd/hearth-core/internal/device"
	"github.com/hearthd/hearth-core/internal/schedule"
)

// seedDeviceConfigs is the demonstration device set created on first run.
var seedDeviceConfigs = []device.Config{
	{ID: "light-living", Name: "Living Room Light", Room: "living-room", Type: device.TypeLight},
	{ID: "light-kitchen", Name: "Kitchen Light", Room: "kitchen", Type: device.TypeLight},
	{ID: "light-bedroom", Name: "Bedroom Light", Room: "bedroom", Type: device.TypeLight},
	{ID: "thermostat-main", Name: "Main Thermostat", Room: "hallway", Type: device.TypeThermostat},
	{ID: "camera-front", Name: "Front Door Camera", Room: "entrance", Type: device.TypeCamera},
	{ID: "lock-front", Name: "Front Door Lock", Room: "entrance", Type: device.TypeLock},
}

// seed registers the demonstration devices and installs the three
// built-in routines (morning, evening, night), enabled.
func seed(ctx context.Context, ctrl *controller.Controller) error {
	for _, cfg := range seedDeviceConfigs {
		if _, err := ctrl.RegisterDevice(ctx, cfg); err != nil {
			return fmt.Errorf("registering %s: %w", cfg.ID, err)
		}
	}

	routineDevices := schedule.RoutineDevices{
		Lights:      []string{"light-living", "light-kitchen", "light-bedroom"},
		Thermostats: []string{"thermostat-main"},
		Cameras:     []string{"camera-front"},
		Locks:       []string{"lock-front"},
	}

	routines := []func(schedule.RoutineDevices) (*schedule.Schedule, error){
		schedule.MorningRoutine,
		schedule.EveningRoutine,
		schedule.NightRoutine,
	}

	for _, build := range routines {
		sched, err := build(routineDevices)
		if err != nil {
			return fmt.Errorf("building routine: %w", err)
		}
		if err := ctrl.AddSchedule(ctx, sched); err != nil {
			return fmt.Errorf("adding routine %s: %w", sched.Name, err)
		}
		if err := ctrl.EnableSchedule(ctx, sched.ID); err != nil {
			return fmt.Errorf("enabling routine %s: %w", sched.Name, err)
		}
	}

	return nil
}
