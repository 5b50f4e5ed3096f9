package config

import "gopkg.in/yaml.v3"

// Resolve returns module IDs in load order. The backend loads first so
// the services it registers are in place before anything looks them up;
// the scheduler loads after the providers because it consumes services
// from them. The gateway only loads when the config carries a gateway
// section.
func Resolve(cfg *Config) []string {
	order := []string{
		cfg.Backend.ModuleID(),
		cfg.Oracle.ModuleID(),
		"cron",
	}
	if !cfg.Gateway.IsZero() {
		order = append(order, "gateway")
	}
	return order
}

// ModuleConfigs assembles the per-module raw config map keyed by module
// ID, the shape AppContext.WithModuleConfigs consumes. Sections left
// out of the file produce no entry, so the module runs on its defaults.
func ModuleConfigs(cfg *Config) map[string]yaml.Node {
	nodes := make(map[string]yaml.Node, 4)
	if !cfg.Oracle.Config.IsZero() {
		nodes[cfg.Oracle.ModuleID()] = cfg.Oracle.Config
	}
	if !cfg.Backend.Config.IsZero() {
		nodes[cfg.Backend.ModuleID()] = cfg.Backend.Config
	}
	if !cfg.Cron.IsZero() {
		nodes["cron"] = cfg.Cron
	}
	if !cfg.Gateway.IsZero() {
		nodes["gateway"] = cfg.Gateway
	}
	return nodes
}
