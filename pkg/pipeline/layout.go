package pipeline

import (
	"fmt"

	"github.com/diagramtool/diagramtool/pkg/diagram"
	"github.com/diagramtool/diagramtool/pkg/model"
)

// GenerateLayout analyzes and places every class and enum of m and exports
// the placed diagram. m is not modified.
func GenerateLayout(m *model.Model, opts Options) (*diagram.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	engine, err := opts.Engine()
	if err != nil {
		return nil, err
	}
	d, err := diagram.Build(m, engine, opts.Logger)
	if err != nil {
		return nil, fmt.Errorf("build diagram: %w", err)
	}
	return d.Export(), nil
}
