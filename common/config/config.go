// Package config resolves startup options from layered sources, the last
// added source wins. Options register at package init time and resolve once
// when Load runs.
package config

import (
	"strconv"
	"strings"
)

// Source provides raw values for option names, nil meaning not set.
type Source interface {
	GetValue(name string) interface{}
	Name() string
}

// Option is a single registered config entry. LoadedValue is only valid
// after Load has run.
type Option struct {
	Name         string
	Description  string
	DefaultValue interface{}
	LoadedValue  interface{}

	// the source the loaded value came from, nil when defaulted
	fromSource Source
}

func (opt *Option) GetString() string { return asString(opt.LoadedValue) }
func (opt *Option) GetInt() int       { return asInt(opt.LoadedValue) }
func (opt *Option) GetBool() bool     { return asBool(opt.LoadedValue) }

type Manager struct {
	sources []Source
	options map[string]*Option
}

func NewManager() *Manager {
	return &Manager{options: make(map[string]*Option)}
}

func (m *Manager) AddSource(source Source) {
	m.sources = append(m.sources, source)
}

func (m *Manager) RegisterOption(name, desc string, defaultValue interface{}) *Option {
	opt := &Option{
		Name:         name,
		Description:  desc,
		DefaultValue: defaultValue,
	}
	m.options[name] = opt
	return opt
}

// Load resolves every registered option against the sources.
func (m *Manager) Load() {
	for _, opt := range m.options {
		m.resolve(opt)
	}
}

func (m *Manager) resolve(opt *Option) {
	value := opt.DefaultValue
	opt.fromSource = nil

	for i := len(m.sources) - 1; i >= 0; i-- {
		if v := m.sources[i].GetValue(opt.Name); v != nil {
			value = v
			opt.fromSource = m.sources[i]
			break
		}
	}

	// coerce to the default's type up front so the typed getters are cheap
	switch opt.DefaultValue.(type) {
	case int:
		value = asInt(value)
	case bool:
		value = asBool(value)
	}

	opt.LoadedValue = value
}

func asString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case int:
		return strconv.Itoa(t)
	default:
		return ""
	}
}

func asInt(v interface{}) int {
	switch t := v.(type) {
	case int:
		return t
	case string:
		n, _ := strconv.Atoi(t)
		return n
	default:
		return 0
	}
}

func asBool(v interface{}) bool {
	switch t := v.(type) {
	case bool:
		return t
	case int:
		return t > 0
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "yes", "on", "enabled", "1":
			return true
		}
	}
	return false
}

// std is the process-wide manager everything registers against.
var std = NewManager()

func AddSource(source Source) { std.AddSource(source) }

func RegisterOption(name, desc string, defaultValue interface{}) *Option {
	return std.RegisterOption(name, desc, defaultValue)
}

func Load() { std.Load() }
