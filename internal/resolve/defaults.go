package resolve

// DefaultParams maps operation name to per-parameter default values. These
// are consulted only when the caller explicitly answers "default" during
// solicitation; schema-level defaults are applied by the backend when a
// parameter is omitted entirely.
type DefaultParams map[string]map[string]any

// BuiltinDefaults returns the shipped default map. Config entries merge
// over these per parameter.
func BuiltinDefaults() DefaultParams {
	return DefaultParams{
		"create_server": {
			"network_name": "private-net",
			"volume_size":  10,
			"flavor_name":  "m1.small",
			"image_name":   "Ubuntu-20.04",
		},
		"create_volume": {
			"name":    "default-volume",
			"size_gb": 10,
		},
		"create_network_with_subnet": {
			"subnet_cidr": "192.168.100.0/24",
			"subnet_name": "default-subnet",
		},
		"resize_server": {
			"flavor_name": "m1.medium",
		},
	}
}

// Merge overlays other onto d parameter by parameter and returns d.
func (d DefaultParams) Merge(other DefaultParams) DefaultParams {
	for op, params := range other {
		if d[op] == nil {
			d[op] = make(map[string]any, len(params))
		}
		for name, value := range params {
			d[op][name] = value
		}
	}
	return d
}

// Lookup returns the configured default for an operation's parameter.
func (d DefaultParams) Lookup(operation, param string) (any, bool) {
	params, ok := d[operation]
	if !ok {
		return nil, false
	}
	value, ok := params[param]
	return value, ok
}
