package app

import (
	"fmt"
	"os"

	"github.com/chymrt/chym/config"
	"github.com/chymrt/chym/core"
	"github.com/chymrt/chym/interpreters"
)

func loadConfig(path string) (*config.Registry, []*core.ReactionDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return config.Load(data, interpreters.Standard())
}
