package config

import "testing"

type mapSource map[string]interface{}

func (m mapSource) GetValue(name string) interface{} { return m[name] }
func (m mapSource) Name() string                     { return "map" }

func TestLoadPriority(t *testing.T) {
	m := NewManager()
	opt := m.RegisterOption("test.key", "", "default")

	m.Load()
	if opt.GetString() != "default" {
		t.Error("expected default, got ", opt.GetString())
	}

	m.AddSource(mapSource{"test.key": "first"})
	m.AddSource(mapSource{"test.key": "second"})
	m.Load()

	// later sources take priority
	if opt.GetString() != "second" {
		t.Error("expected second, got ", opt.GetString())
	}
}

func TestTypedCoercion(t *testing.T) {
	m := NewManager()
	optInt := m.RegisterOption("test.int", "", 10)
	optBool := m.RegisterOption("test.bool", "", false)

	m.AddSource(mapSource{"test.int": "42", "test.bool": "yes"})
	m.Load()

	if optInt.GetInt() != 42 {
		t.Error("expected 42, got ", optInt.GetInt())
	}
	if !optBool.GetBool() {
		t.Error("expected true")
	}
}

func TestEnvSourceKeyMapping(t *testing.T) {
	t.Setenv("TEST_SOME_OPTION", "hello")

	src := EnvSource{}
	if v := src.GetValue("test.some-option"); v != "hello" {
		t.Error("expected hello, got ", v)
	}
	if v := src.GetValue("test.missing"); v != nil {
		t.Error("expected nil for unset variables, got ", v)
	}
}
