package controller

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hearthd/hearth-core/internal/device"
	"github.com/hearthd/hearth-core/internal/driver"
	"github.com/hearthd/hearth-core/internal/schedule"
)

// mockDeviceRepo is an in-memory device.Repository.
type mockDeviceRepo struct {
	mu      sync.Mutex
	records map[string]*device.Record
	failing bool
}

func newMockDeviceRepo() *mockDeviceRepo {
	return &mockDeviceRepo{records: make(map[string]*device.Record)}
}

func (m *mockDeviceRepo) GetByID(_ context.Context, id string) (*device.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, device.ErrNotFound
	}
	cpy := *rec
	return &cpy, nil
}

func (m *mockDeviceRepo) List(_ context.Context) ([]device.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []device.Record
	for _, rec := range m.records {
		out = append(out, *rec)
	}
	return out, nil
}

func (m *mockDeviceRepo) Create(_ context.Context, rec *device.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("repository unavailable")
	}
	if _, exists := m.records[rec.ID]; exists {
		return device.ErrDuplicateID
	}
	cpy := *rec
	m.records[rec.ID] = &cpy
	return nil
}

func (m *mockDeviceRepo) UpdateState(_ context.Context, id string, state device.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return device.ErrNotFound
	}
	rec.State = state.DeepCopy()
	return nil
}

func (m *mockDeviceRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.records[id]; !ok {
		return device.ErrNotFound
	}
	delete(m.records, id)
	return nil
}

// mockScheduleRepo is an in-memory schedule.Repository.
type mockScheduleRepo struct {
	mu        sync.Mutex
	schedules map[string]*schedule.Schedule
	runs      []schedule.RunResult
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[string]*schedule.Schedule)}
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*schedule.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sched, ok := m.schedules[id]
	if !ok {
		return nil, schedule.ErrNotFound
	}
	return sched.DeepCopy(), nil
}

func (m *mockScheduleRepo) List(_ context.Context) ([]schedule.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []schedule.Schedule
	for _, sched := range m.schedules {
		out = append(out, *sched.DeepCopy())
	}
	return out, nil
}

func (m *mockScheduleRepo) Create(_ context.Context, sched *schedule.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.schedules[sched.ID]; exists {
		return schedule.ErrDuplicateID
	}
	m.schedules[sched.ID] = sched.DeepCopy()
	return nil
}

func (m *mockScheduleRepo) Update(_ context.Context, sched *schedule.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[sched.ID]; !ok {
		return schedule.ErrNotFound
	}
	m.schedules[sched.ID] = sched.DeepCopy()
	return nil
}

func (m *mockScheduleRepo) SetEnabled(_ context.Context, id string, enabled bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	sched, ok := m.schedules[id]
	if !ok {
		return schedule.ErrNotFound
	}
	sched.Enabled = enabled
	return nil
}

func (m *mockScheduleRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.schedules[id]; !ok {
		return schedule.ErrNotFound
	}
	delete(m.schedules, id)
	return nil
}

func (m *mockScheduleRepo) SaveRun(_ context.Context, run *schedule.RunResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs = append(m.runs, *run)
	return nil
}

func (m *mockScheduleRepo) ListRuns(_ context.Context, scheduleID string, _ int) ([]schedule.RunResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []schedule.RunResult
	for _, run := range m.runs {
		if run.ScheduleID == scheduleID {
			out = append(out, run)
		}
	}
	return out, nil
}

// recordingObserver captures schedule lifecycle notifications.
type recordingObserver struct {
	mu      sync.Mutex
	added   []string
	updated []string
	removed []string
}

func (o *recordingObserver) ScheduleAdded(s *schedule.Schedule) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.added = append(o.added, s.ID)
}

func (o *recordingObserver) ScheduleUpdated(s *schedule.Schedule) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.updated = append(o.updated, s.ID)
}

func (o *recordingObserver) ScheduleRemoved(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.removed = append(o.removed, id)
}

func newTestController() (*Controller, *driver.MemoryDriver, *mockDeviceRepo, *mockScheduleRepo) {
	drv := driver.NewMemoryDriver()
	deviceRepo := newMockDeviceRepo()
	schedRepo := newMockScheduleRepo()
	ctrl := New(device.NewFactory(), drv, deviceRepo, schedRepo)
	return ctrl, drv, deviceRepo, schedRepo
}

func registerLight(t *testing.T, ctrl *Controller, id string) device.Device {
	t.Helper()
	dev, err := ctrl.RegisterDevice(context.Background(), device.Config{
		ID:   id,
		Name: "Light " + id,
		Room: "living_room",
		Type: device.TypeLight,
	})
	if err != nil {
		t.Fatalf("RegisterDevice(%s) error = %v", id, err)
	}
	return dev
}

func TestController_RegisterAndGet(t *testing.T) {
	ctrl, _, repo, _ := newTestController()

	dev := registerLight(t, ctrl, "light-1")

	got, err := ctrl.GetDevice("light-1")
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if got.ID() != dev.ID() {
		t.Errorf("GetDevice() returned %q, want %q", got.ID(), dev.ID())
	}

	// Persisted too.
	if _, err := repo.GetByID(context.Background(), "light-1"); err != nil {
		t.Errorf("device not persisted: %v", err)
	}
}

func TestController_DuplicateID(t *testing.T) {
	ctrl, _, _, _ := newTestController()

	registerLight(t, ctrl, "light-1")

	_, err := ctrl.RegisterDevice(context.Background(), device.Config{
		ID:   "light-1",
		Name: "Impostor",
		Type: device.TypeLight,
	})
	if !errors.Is(err, device.ErrDuplicateID) {
		t.Errorf("RegisterDevice() error = %v, want ErrDuplicateID", err)
	}
}

func TestController_RegisterRollsBackOnPersistFailure(t *testing.T) {
	ctrl, _, repo, _ := newTestController()
	repo.failing = true

	_, err := ctrl.RegisterDevice(context.Background(), device.Config{
		ID:   "light-1",
		Name: "Lamp",
		Type: device.TypeLight,
	})
	if err == nil {
		t.Fatal("RegisterDevice() should fail when persistence fails")
	}

	if _, err := ctrl.GetDevice("light-1"); !errors.Is(err, device.ErrNotFound) {
		t.Error("failed registration must not leave the device in the registry")
	}
}

func TestController_Unregister(t *testing.T) {
	ctrl, _, _, _ := newTestController()

	registerLight(t, ctrl, "light-1")

	if err := ctrl.UnregisterDevice(context.Background(), "light-1"); err != nil {
		t.Fatalf("UnregisterDevice() error = %v", err)
	}

	if _, err := ctrl.GetDevice("light-1"); !errors.Is(err, device.ErrNotFound) {
		t.Error("device should be gone after unregister")
	}

	err := ctrl.UnregisterDevice(context.Background(), "light-1")
	if !errors.Is(err, device.ErrNotFound) {
		t.Errorf("second UnregisterDevice() error = %v, want ErrNotFound", err)
	}
}

func TestController_Dispatch(t *testing.T) {
	ctrl, drv, repo, _ := newTestController()

	registerLight(t, ctrl, "light-1")

	state, err := ctrl.Dispatch(context.Background(), "light-1", device.CmdTurnOn, nil)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if on, _ := state["on"].(bool); !on {
		t.Error("returned state should show the light on")
	}

	if got := len(drv.SentTo("light-1")); got != 1 {
		t.Errorf("driver received %d commands, want 1", got)
	}

	// State persisted.
	rec, err := repo.GetByID(context.Background(), "light-1")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if on, _ := rec.State["on"].(bool); !on {
		t.Error("persisted state should show the light on")
	}
}

func TestController_DispatchUnknownDevice(t *testing.T) {
	ctrl, _, _, _ := newTestController()

	_, err := ctrl.Dispatch(context.Background(), "ghost", device.CmdTurnOn, nil)
	if !errors.Is(err, device.ErrNotFound) {
		t.Errorf("Dispatch() error = %v, want ErrNotFound", err)
	}
}

func TestController_DispatchNotifiesListeners(t *testing.T) {
	ctrl, _, _, _ := newTestController()
	registerLight(t, ctrl, "light-1")

	var mu sync.Mutex
	var notified []string
	ctrl.SubscribeState(func(deviceID string, state device.State) {
		mu.Lock()
		defer mu.Unlock()
		notified = append(notified, deviceID)
	})

	if _, err := ctrl.Dispatch(context.Background(), "light-1", device.CmdTurnOn, nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(notified) != 1 || notified[0] != "light-1" {
		t.Errorf("notified = %v, want [light-1]", notified)
	}
}

func TestController_ApplyReport(t *testing.T) {
	ctrl, _, _, _ := newTestController()

	_, err := ctrl.RegisterDevice(context.Background(), device.Config{
		ID:   "therm-1",
		Name: "Hall Thermostat",
		Type: device.TypeThermostat,
	})
	if err != nil {
		t.Fatalf("RegisterDevice() error = %v", err)
	}

	if err := ctrl.ApplyReport(context.Background(), "therm-1", device.State{"current_temperature": 17.3}); err != nil {
		t.Fatalf("ApplyReport() error = %v", err)
	}

	dev, _ := ctrl.GetDevice("therm-1")
	if got := dev.State()["current_temperature"]; got != 17.3 {
		t.Errorf("current_temperature = %v, want 17.3", got)
	}

	if err := ctrl.ApplyReport(context.Background(), "ghost", device.State{}); !errors.Is(err, device.ErrNotFound) {
		t.Errorf("ApplyReport(ghost) error = %v, want ErrNotFound", err)
	}
}

func TestController_Hydrate(t *testing.T) {
	ctrl, _, deviceRepo, schedRepo := newTestController()
	ctx := context.Background()

	registerLight(t, ctrl, "light-1")
	if _, err := ctrl.Dispatch(ctx, "light-1", device.CmdTurnOn, nil); err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}

	sched, err := schedule.NewBuilder("Routine").
		At("0 7 * * *").
		AddAction("light-1", device.CmdTurnOff, nil).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if err := ctrl.AddSchedule(ctx, sched); err != nil {
		t.Fatalf("AddSchedule() error = %v", err)
	}

	// Fresh controller over the same repositories.
	fresh := New(device.NewFactory(), driver.NewMemoryDriver(), deviceRepo, schedRepo)
	if err := fresh.Hydrate(ctx); err != nil {
		t.Fatalf("Hydrate() error = %v", err)
	}

	dev, err := fresh.GetDevice("light-1")
	if err != nil {
		t.Fatalf("GetDevice() after hydrate: error = %v", err)
	}
	if on, _ := dev.State()["on"].(bool); !on {
		t.Error("hydrated device should carry persisted state")
	}

	if _, err := fresh.GetSchedule(sched.ID); err != nil {
		t.Errorf("GetSchedule() after hydrate: error = %v", err)
	}
}

func TestController_ScheduleLifecycle(t *testing.T) {
	ctrl, _, _, schedRepo := newTestController()
	ctx := context.Background()

	obs := &recordingObserver{}
	ctrl.AddScheduleObserver(obs)

	sched, err := schedule.NewBuilder("Routine").
		At("0 7 * * *").
		AddAction("light-1", device.CmdTurnOn, nil).
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if err := ctrl.AddSchedule(ctx, sched); err != nil {
		t.Fatalf("AddSchedule() error = %v", err)
	}
	if err := ctrl.AddSchedule(ctx, sched); !errors.Is(err, schedule.ErrDuplicateID) {
		t.Errorf("duplicate AddSchedule() error = %v, want ErrDuplicateID", err)
	}

	if err := ctrl.EnableSchedule(ctx, sched.ID); err != nil {
		t.Fatalf("EnableSchedule() error = %v", err)
	}
	got, err := ctrl.GetSchedule(sched.ID)
	if err != nil {
		t.Fatalf("GetSchedule() error = %v", err)
	}
	if !got.Enabled {
		t.Error("schedule should be enabled")
	}

	// Persisted flag too.
	persisted, _ := schedRepo.GetByID(ctx, sched.ID)
	if !persisted.Enabled {
		t.Error("enabled flag not persisted")
	}

	if err := ctrl.DisableSchedule(ctx, sched.ID); err != nil {
		t.Fatalf("DisableSchedule() error = %v", err)
	}

	if err := ctrl.RemoveSchedule(ctx, sched.ID); err != nil {
		t.Fatalf("RemoveSchedule() error = %v", err)
	}
	if _, err := ctrl.GetSchedule(sched.ID); !errors.Is(err, schedule.ErrNotFound) {
		t.Errorf("GetSchedule() after remove: error = %v, want ErrNotFound", err)
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if len(obs.added) != 1 || len(obs.updated) != 2 || len(obs.removed) != 1 {
		t.Errorf("observer counts: added=%d updated=%d removed=%d, want 1/2/1",
			len(obs.added), len(obs.updated), len(obs.removed))
	}
}

func TestController_EnableUnknownSchedule(t *testing.T) {
	ctrl, _, _, _ := newTestController()

	err := ctrl.EnableSchedule(context.Background(), "ghost")
	if !errors.Is(err, schedule.ErrNotFound) {
		t.Errorf("EnableSchedule() error = %v, want ErrNotFound", err)
	}
}

func TestController_ListDevicesSnapshotIsolation(t *testing.T) {
	ctrl, _, _, _ := newTestController()
	registerLight(t, ctrl, "light-1")

	summaries := ctrl.ListDevices()
	if len(summaries) != 1 {
		t.Fatalf("ListDevices() returned %d, want 1", len(summaries))
	}

	summaries[0].State["on"] = true

	dev, _ := ctrl.GetDevice("light-1")
	if on, _ := dev.State()["on"].(bool); on {
		t.Error("mutating a summary must not affect the live device")
	}
}
