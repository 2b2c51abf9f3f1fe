package integration

import "context"

// ConfiguratorOption is one value of a configurator group, e.g. "XL"
type ConfiguratorOption struct {
	ID       int64
	Name     string
	Position int
}

// ConfiguratorGroup is a shop variant dimension, e.g. "Size". It becomes
// an item attribute in the ERP.
type ConfiguratorGroup struct {
	ID          int64
	Name        string
	Description string
	Position    int
	Options     []ConfiguratorOption
}

// ConfiguratorGroupReader loads configurator groups with their options
type ConfiguratorGroupReader interface {
	FindAll(ctx context.Context) ([]ConfiguratorGroup, error)
}
