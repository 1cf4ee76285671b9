package device

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestFactory_CreateAllTypes(t *testing.T) {
	factory := NewFactory()
	drv := &mockDriver{}

	tests := []struct {
		typ      Type
		wantCaps []Command
	}{
		{TypeLight, []Command{CmdTurnOn, CmdTurnOff, CmdSetBrightness}},
		{TypeThermostat, []Command{CmdTurnOn, CmdTurnOff, CmdSetTemperature}},
		{TypeCamera, []Command{CmdTurnOn, CmdTurnOff, CmdStartRecord, CmdStopRecord}},
		{TypeLock, []Command{CmdLock, CmdUnlock}},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ), func(t *testing.T) {
			dev, err := factory.Create(Config{Name: "Test", Type: tt.typ}, drv)
			if err != nil {
				t.Fatalf("Create(%s) error = %v", tt.typ, err)
			}

			if dev.Type() != tt.typ {
				t.Errorf("Type() = %v, want %v", dev.Type(), tt.typ)
			}

			caps := dev.Capabilities()
			if len(caps) != len(tt.wantCaps) {
				t.Fatalf("Capabilities() = %v, want %v", caps, tt.wantCaps)
			}
			for i, c := range tt.wantCaps {
				if caps[i] != c {
					t.Errorf("Capabilities()[%d] = %v, want %v", i, caps[i], c)
				}
			}

			for _, c := range tt.wantCaps {
				if !dev.Supports(c) {
					t.Errorf("Supports(%s) = false, want true", c)
				}
			}
		})
	}
}

func TestFactory_UnknownType(t *testing.T) {
	factory := NewFactory()

	_, err := factory.Create(Config{Name: "Mystery", Type: Type("toaster")}, &mockDriver{})
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("Create(toaster) error = %v, want ErrUnknownType", err)
	}
}

func TestFactory_GeneratesID(t *testing.T) {
	factory := NewFactory()

	dev, err := factory.Create(Config{Name: "Lamp", Type: TypeLight}, &mockDriver{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !strings.HasPrefix(dev.ID(), "light-") {
		t.Errorf("generated ID %q should have prefix %q", dev.ID(), "light-")
	}

	other, err := factory.Create(Config{Name: "Lamp 2", Type: TypeLight}, &mockDriver{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if other.ID() == dev.ID() {
		t.Error("generated IDs should be unique")
	}
}

func TestFactory_RequiresName(t *testing.T) {
	factory := NewFactory()

	_, err := factory.Create(Config{Type: TypeLight}, &mockDriver{})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Create() without name: error = %v, want ErrInvalidConfig", err)
	}
}

func TestFactory_RejectsTopicCharactersInID(t *testing.T) {
	factory := NewFactory()

	for _, id := range []string{"light/1", "light+1", "light#1"} {
		_, err := factory.Create(Config{ID: id, Name: "Lamp", Type: TypeLight}, &mockDriver{})
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Create(id=%q) error = %v, want ErrInvalidConfig", id, err)
		}
	}
}

func TestFactory_RegisterCustomType(t *testing.T) {
	factory := NewFactory()

	// A registered constructor replaces the built-in one.
	called := false
	factory.Register(TypeLight, func(cfg Config, drv Driver) (Device, error) {
		called = true
		return NewLight(cfg, drv)
	})

	dev, err := factory.Create(Config{Name: "Lamp", Type: TypeLight}, &mockDriver{})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if !called {
		t.Error("custom constructor was not invoked")
	}

	if err := dev.Apply(context.Background(), CmdTurnOn, nil); err != nil {
		t.Errorf("device from custom constructor: Apply() error = %v", err)
	}
}
